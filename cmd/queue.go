package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/proxy"
	"github.com/riptide-dl/riptide/internal/utils"
)

var queueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"ls", "list"},
	Short:   "Print a snapshot of the worker's download queue",
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		client, _, err := dialWorker(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()

		items, err := client.Queue()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if len(items) == 0 {
			fmt.Println("Queue is empty.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSIZE\tREMAINING\tETA")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				shortID(item.ID),
				item.Title,
				item.Status.String(),
				utils.FormatSize(item.TotalSize),
				utils.FormatSize(item.RemainingSize),
				queueETA(item),
			)
		}
		w.Flush()
	},
}

func queueETA(item proxy.QueueItem) string {
	if item.Status != proxy.StatusDownloading || !item.ETAKnown {
		return "--"
	}
	return utils.FormatETA(int64(item.ETA.Seconds()))
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
