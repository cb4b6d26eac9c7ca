package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/releases"
	"github.com/riptide-dl/riptide/internal/utils"
)

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List the worker's recent releases feed",
	Long:  `Fetch the worker's recent releases and expand each album into its downloadable format tiers with estimated sizes.`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		client, _, err := dialWorker(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()

		result, err := client.RecentReleases()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		items := releases.Map(result)
		if len(items) == 0 {
			fmt.Println("No recent releases.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TITLE\tFORMAT\tEST. SIZE\tRELEASED")
		for _, r := range items {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
				r.Title,
				r.Codec,
				r.Container,
				utils.FormatSize(r.SizeBytes),
				r.ReleaseDate,
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(releasesCmd)
}
