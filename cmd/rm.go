package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm [id]...",
	Aliases: []string{"remove"},
	Short:   "Ask the worker to drop queue items",
	Long:    `Request removal of queue items by remote id. A unique id prefix is accepted. Removal is asynchronous; the item disappears once the worker confirms.`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		client, _, err := dialWorker(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()

		for _, arg := range args {
			id, err := resolveItemID(client, arg)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := client.Remove(id); err != nil {
				fmt.Printf("Error removing %s: %v\n", arg, err)
				continue
			}
			fmt.Printf("Removal requested: %s\n", shortID(id))
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
