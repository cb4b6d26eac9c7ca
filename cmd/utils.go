package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/riptide-dl/riptide/internal/config"
	"github.com/riptide-dl/riptide/internal/proxy"
)

var instanceLock *flock.Flock

// AcquireLock takes the single-instance lock for the interactive session.
// Returns false when another riptide TUI already holds it.
func AcquireLock() (bool, error) {
	lockPath := filepath.Join(config.GetRiptideDir(), "riptide.lock")
	instanceLock = flock.New(lockPath)

	ok, err := instanceLock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock releases the single-instance lock.
func ReleaseLock() error {
	if instanceLock == nil {
		return nil
	}
	return instanceLock.Unlock()
}

func loadedTimeout(settings *config.Settings, loadErr error) time.Duration {
	if loadErr != nil || settings == nil || settings.Worker.RequestTimeout <= 0 {
		return proxy.DefaultTimeout
	}
	return settings.Worker.RequestTimeout
}

// workerAddr resolves the worker address from the --addr flag, falling back
// to settings.
func workerAddr(cmd *cobra.Command, settings *config.Settings) string {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		return addr
	}
	return settings.Worker.Address
}

// dialWorker connects a registry client to the worker, applying the
// configured search page size. One-shot commands call this, use the client
// and exit; the registry keeps the client cached for the process lifetime.
func dialWorker(cmd *cobra.Command) (*proxy.Client, *config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		settings = config.DefaultSettings()
	}

	client := GlobalRegistry.Get(workerAddr(cmd, settings))
	if settings.Worker.SearchPageSize > 0 {
		client.SearchPageSize = settings.Worker.SearchPageSize
	}

	if err := client.Connect(); err != nil {
		return nil, nil, fmt.Errorf("cannot reach worker at %s: %w", client.Addr(), err)
	}
	return client, settings, nil
}

// readURLsFromFile reads URLs from a file, one per line
func readURLsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// resolveItemID resolves a partial remote id (prefix) against the mirrored
// queue. Returns the input unchanged when nothing matches so the worker can
// report its own "not found".
func resolveItemID(client *proxy.Client, partial string) (string, error) {
	items, err := client.Queue()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, item := range items {
		if strings.HasPrefix(item.ID, partial) {
			matches = append(matches, item.ID)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous id prefix '%s' matches %d queue items", partial, len(matches))
	}
	return partial, nil
}
