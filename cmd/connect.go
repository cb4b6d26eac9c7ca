package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/history"
	"github.com/riptide-dl/riptide/internal/proxy"
	"github.com/riptide-dl/riptide/internal/tui"
	"github.com/riptide-dl/riptide/internal/utils"
	"github.com/riptide-dl/riptide/internal/version"
)

var connectCmd = &cobra.Command{
	Use:   "connect [host:port]",
	Short: "Open the interactive queue view for the worker",
	Long:  `Connect to the download worker, mirror its queue and drive it interactively.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			_ = cmd.Flags().Set("addr", args[0])
		}

		initializeGlobalState()

		isMaster, err := AcquireLock()
		if err != nil {
			fmt.Printf("Error acquiring lock: %v\n", err)
			os.Exit(1)
		}
		if !isMaster {
			fmt.Fprintln(os.Stderr, "Error: Riptide is already running.")
			os.Exit(1)
		}
		defer func() {
			if err := ReleaseLock(); err != nil {
				utils.Debug("Error releasing lock: %v", err)
			}
		}()

		startTUI(cmd)
	},
}

// startTUI connects to the worker and runs the interactive session, pumping
// worker notifications into the bubbletea program and recording completions
// in the history database.
func startTUI(cmd *cobra.Command) {
	client, settings, err := dialWorker(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	m := tui.InitialModel(client, client.Addr(), version.Version, settings.Worker.DefaultBitrate)
	p := tea.NewProgram(m, tea.WithAltScreen())

	notifications, cleanup := client.Notifications()
	defer cleanup()

	go func() {
		for msg := range notifications {
			if done, ok := msg.(proxy.ItemCompletedMsg); ok && settings.General.HistoryEnabled {
				recordCompletion(done.Item)
			}
			p.Send(msg)
		}
	}()

	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	if model, ok := final.(tui.Model); ok && model.Err() != nil {
		if errors.Is(model.Err(), proxy.ErrAuthRequired) {
			fmt.Fprintln(os.Stderr, "Error: the worker requires a login; authenticate it and reconnect.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", model.Err())
		}
		os.Exit(1)
	}
}

func recordCompletion(item proxy.QueueItem) {
	entry := history.Entry{
		ID:        item.ID,
		Title:     item.Title,
		Location:  item.OutputDir,
		SizeBytes: item.TotalSize,
	}
	if err := history.Record(entry); err != nil {
		utils.Debug("Error recording completion %s: %v", item.ID, err)
	}
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
