package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/config"
	"github.com/riptide-dl/riptide/internal/history"
	"github.com/riptide-dl/riptide/internal/proxy"
	"github.com/riptide-dl/riptide/internal/utils"
	"github.com/riptide-dl/riptide/internal/version"
)

// GlobalRegistry caches one proxy client per worker address for the lifetime
// of the process.
var GlobalRegistry *proxy.Registry

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "riptide",
	Short:   "A terminal companion for a remote music-download worker",
	Long:    `Riptide connects to a remote download worker over its event channel, mirrors the worker's queue locally and drives it from a TUI or one-shot commands.`,
	Version: version.Version,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		isMaster, err := AcquireLock()
		if err != nil {
			fmt.Printf("Error acquiring lock: %v\n", err)
			os.Exit(1)
		}
		if !isMaster {
			fmt.Fprintln(os.Stderr, "Error: Riptide is already running.")
			fmt.Fprintln(os.Stderr, "Use 'riptide add <url>' to queue a download from another shell.")
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

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("addr", "", "Worker address (host:port), overrides settings")
	rootCmd.SetVersionTemplate("Riptide version {{.Version}}\n")
}

// initializeGlobalState sets up the config directories, the history database
// and logging.
func initializeGlobalState() {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
	}

	stateDir := config.GetStateDir()
	logsDir := config.GetLogsDir()

	history.Configure(filepath.Join(stateDir, "riptide.db"))
	utils.ConfigureDebug(logsDir)

	settings, err := config.LoadSettings()
	var retention int
	if err == nil {
		retention = settings.General.LogRetentionCount
	} else {
		retention = config.DefaultSettings().General.LogRetentionCount
	}
	utils.CleanupLogs(retention)

	GlobalRegistry = proxy.NewRegistry(loadedTimeout(settings, err))
}
