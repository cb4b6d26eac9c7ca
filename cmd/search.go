package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/releases"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]...",
	Short: "Search the worker's catalog for albums",
	Long:  `Run an album search on the worker. Either give a free-form term or use --artist/--album for a structured query.`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		artist, _ := cmd.Flags().GetString("artist")
		album, _ := cmd.Flags().GetString("album")

		term := strings.Join(args, " ")
		if artist != "" || album != "" {
			term = releases.Criteria{Artist: artist, Album: album}.Term()
		}
		if term == "" {
			_ = cmd.Help()
			return
		}

		client, _, err := dialWorker(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()

		result, err := client.Search(term)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if len(result.Albums) == 0 {
			fmt.Println("No results.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ALBUM\tARTIST\tTRACKS\tRELEASED\tLINK")
		for _, a := range result.Albums {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", a.Title, a.Artist, a.TrackCount, a.ReleaseDate, a.Link)
		}
		w.Flush()
		fmt.Printf("\n%d of %d results shown.\n", len(result.Albums), result.Total)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("artist", "", "Restrict the search to an artist name")
	searchCmd.Flags().String("album", "", "Restrict the search to an album title")
}
