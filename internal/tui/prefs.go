package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Prefs holds review UI preferences that persist across sessions.
type Prefs struct {
	// Language selects the education message language.
	Language string `json:"language"`
	// HideAllowed drops allow decisions from the table.
	HideAllowed bool `json:"hide_allowed"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{Language: "en"}
}

func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".devshield", "tui_prefs.json"), nil
}

// LoadPrefs loads preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	if prefs.Language == "" {
		prefs.Language = "en"
	}
	return prefs
}

// SavePrefs persists preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
