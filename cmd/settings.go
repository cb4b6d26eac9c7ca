package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the current configuration",
	Long:  `Show riptide's local settings. With --worker, fetch and print the remote worker's settings snapshot instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if remote, _ := cmd.Flags().GetBool("worker"); remote {
			printWorkerConfig(cmd)
			return
		}

		settings, err := config.LoadSettings()
		if err != nil {
			fmt.Printf("Error loading settings: %v\n", err)
			os.Exit(1)
		}

		meta := config.GetSettingsMetadata()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, category := range config.CategoryOrder() {
			fmt.Fprintf(w, "%s\t\t\n", category)
			for _, m := range meta[category] {
				fmt.Fprintf(w, "  %s\t%v\t%s\n", m.Key, settingValue(settings, m.Key), m.Description)
			}
		}
		w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and save it",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.LoadSettings()
		if err != nil {
			fmt.Printf("Error loading settings: %v\n", err)
			os.Exit(1)
		}

		if err := applySetting(settings, args[0], args[1]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := config.SaveSettings(settings); err != nil {
			fmt.Printf("Error saving settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
	},
}

// printWorkerConfig dials the worker and dumps its settings snapshot.
func printWorkerConfig(cmd *cobra.Command) {
	initializeGlobalState()

	client, _, err := dialWorker(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	raw, err := client.Config()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		os.Stdout.Write(raw)
		fmt.Println()
		return
	}
	fmt.Println(buf.String())
}

func settingValue(s *config.Settings, key string) any {
	switch key {
	case "theme":
		return s.General.Theme
	case "log_retention_count":
		return s.General.LogRetentionCount
	case "history_enabled":
		return s.General.HistoryEnabled
	case "address":
		return s.Worker.Address
	case "request_timeout":
		return s.Worker.RequestTimeout
	case "search_page_size":
		return s.Worker.SearchPageSize
	case "default_bitrate":
		return s.Worker.DefaultBitrate
	default:
		return ""
	}
}

func applySetting(s *config.Settings, key, value string) error {
	switch key {
	case "theme":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("theme must be an integer: %w", err)
		}
		s.General.Theme = n
	case "log_retention_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("log_retention_count must be an integer: %w", err)
		}
		s.General.LogRetentionCount = n
	case "history_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("history_enabled must be true or false: %w", err)
		}
		s.General.HistoryEnabled = b
	case "address":
		s.Worker.Address = value
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("request_timeout must be a duration like 60s: %w", err)
		}
		s.Worker.RequestTimeout = d
	case "search_page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("search_page_size must be an integer: %w", err)
		}
		s.Worker.SearchPageSize = n
	case "default_bitrate":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("default_bitrate must be 1, 3 or 9: %w", err)
		}
		if n != 1 && n != 3 && n != 9 {
			return fmt.Errorf("default_bitrate must be 1, 3 or 9")
		}
		s.Worker.DefaultBitrate = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.Flags().Bool("worker", false, "Show the remote worker's settings snapshot")
}
