package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Worker.RequestTimeout != 60*time.Second {
		t.Errorf("expected 60s default request timeout, got %v", s.Worker.RequestTimeout)
	}
	if s.Worker.SearchPageSize != 100 {
		t.Errorf("expected default search page size 100, got %d", s.Worker.SearchPageSize)
	}
	if s.Worker.DefaultBitrate != 3 {
		t.Errorf("expected default bitrate tier 3, got %d", s.Worker.DefaultBitrate)
	}
	if !s.General.HistoryEnabled {
		t.Error("expected history enabled by default")
	}
}

func TestSettingsRoundTripFillsMissingFields(t *testing.T) {
	// A settings file that only overrides the worker address should keep
	// defaults for everything else.
	partial := []byte(`{"worker": {"address": "10.0.0.5:6595"}}`)

	s := DefaultSettings()
	if err := json.Unmarshal(partial, s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if s.Worker.Address != "10.0.0.5:6595" {
		t.Errorf("address override lost: %q", s.Worker.Address)
	}
	if s.General.LogRetentionCount != 5 {
		t.Errorf("default log retention lost: %d", s.General.LogRetentionCount)
	}
}

func TestSaveSettingsAtomic(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	s := DefaultSettings()
	s.Worker.Address = "example.net:7000"
	if err := SaveSettings(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "riptide", "settings.json")); err != nil {
		t.Fatalf("settings file missing: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Worker.Address != "example.net:7000" {
		t.Errorf("loaded address = %q", loaded.Worker.Address)
	}
}

func TestSettingsMetadataCoversCategories(t *testing.T) {
	meta := GetSettingsMetadata()
	for _, cat := range CategoryOrder() {
		if len(meta[cat]) == 0 {
			t.Errorf("category %q has no settings metadata", cat)
		}
	}
}
