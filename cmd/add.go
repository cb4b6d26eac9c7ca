package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/clipboard"
)

var addCmd = &cobra.Command{
	Use:     "add [url]...",
	Aliases: []string{"get"},
	Short:   "Submit album or track URLs to the worker's queue",
	Long:    `Submit one or more URLs to the download worker. With no arguments the system clipboard is checked for a link.`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		batchFile, _ := cmd.Flags().GetString("batch")
		bitrate, _ := cmd.Flags().GetInt("bitrate")

		var urls []string
		urls = append(urls, args...)

		if batchFile != "" {
			fileUrls, err := readURLsFromFile(batchFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading batch file: %v\n", err)
				os.Exit(1)
			}
			urls = append(urls, fileUrls...)
		}

		if len(urls) == 0 {
			if url := clipboard.ReadURL(); url != "" {
				urls = append(urls, url)
			}
		}

		if len(urls) == 0 {
			_ = cmd.Help()
			return
		}

		client, settings, err := dialWorker(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()

		if bitrate == 0 {
			bitrate = settings.Worker.DefaultBitrate
		}

		count := 0
		for _, url := range urls {
			id, err := client.Download(url, bitrate)
			if err != nil {
				fmt.Printf("Error adding %s: %v\n", url, err)
				continue
			}
			fmt.Printf("Queued: %s [%s]\n", url, shortID(id))
			count++
		}

		if count > 0 {
			fmt.Printf("Successfully added %d downloads.\n", count)
		}
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("batch", "b", "", "File containing URLs to download (one per line)")
	addCmd.Flags().Int("bitrate", 0, "Bitrate tier (1 = MP3 128, 3 = MP3 320, 9 = FLAC)")
}
