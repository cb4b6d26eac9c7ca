package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/history"
	"github.com/riptide-dl/riptide/internal/utils"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently completed downloads",
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()
		defer history.CloseDB()

		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := history.Recent(limit)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Println("No completed downloads recorded.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSIZE\tLOCATION\tCOMPLETED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				shortID(e.ID),
				e.Title,
				utils.FormatSize(e.SizeBytes),
				e.Location,
				e.CompletedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")
}
