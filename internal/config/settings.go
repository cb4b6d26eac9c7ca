package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General GeneralSettings `json:"general"`
	Worker  WorkerSettings  `json:"worker"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	Theme             int  `json:"theme"`
	LogRetentionCount int  `json:"log_retention_count"`
	HistoryEnabled    bool `json:"history_enabled"`
}

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// WorkerSettings contains parameters for the remote download worker connection.
type WorkerSettings struct {
	// Address is the host:port of the worker's event socket.
	Address string `json:"address"`
	// RequestTimeout bounds every request/response operation (add, search,
	// recent releases) as well as the initial settings-snapshot wait.
	RequestTimeout time.Duration `json:"request_timeout"`
	// SearchPageSize is the number of results requested per album search.
	SearchPageSize int `json:"search_page_size"`
	// DefaultBitrate is the bitrate tier submitted with addToQueue when no
	// explicit --bitrate flag is given (1 = MP3 128, 3 = MP3 320, 9 = FLAC).
	DefaultBitrate int `json:"default_bitrate"`
}

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text
	Type        string // "string", "int", "bool", "duration"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "theme", Label: "App Theme", Description: "UI Theme (System, Light, Dark).", Type: "int"},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int"},
			{Key: "history_enabled", Label: "Download History", Description: "Record completed downloads in the local history database.", Type: "bool"},
		},
		"Worker": {
			{Key: "address", Label: "Worker Address", Description: "host:port of the download worker's event socket.", Type: "string"},
			{Key: "request_timeout", Label: "Request Timeout", Description: "Deadline for add/search requests (e.g. 60s).", Type: "duration"},
			{Key: "search_page_size", Label: "Search Page Size", Description: "Number of albums requested per search (1-200).", Type: "int"},
			{Key: "default_bitrate", Label: "Default Bitrate", Description: "Bitrate tier for new downloads (1, 3 or 9).", Type: "int"},
		},
	}
}

// CategoryOrder returns the order of categories for UI tabs.
func CategoryOrder() []string {
	return []string{"General", "Worker"}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			Theme:             ThemeAdaptive,
			LogRetentionCount: 5,
			HistoryEnabled:    true,
		},
		Worker: WorkerSettings{
			Address:        "127.0.0.1:6595",
			RequestTimeout: 60 * time.Second,
			SearchPageSize: 100,
			DefaultBitrate: 3,
		},
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetRiptideDir(), "settings.json")
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
