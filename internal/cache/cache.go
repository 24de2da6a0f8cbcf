// Package cache persists scan state between runs: content fingerprints of
// files whose last scan was clean, and the results of the last scan.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DB maps a path relative to the repo root to the xxhash fingerprint of the
// content that last scanned clean.
type DB struct {
	Entries map[string]string `json:"entries"`
}

// stateDir prefers .git so state files are never committed by accident.
func stateDir(root string) (string, bool) {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return gitDir, true
	}
	return root, false
}

func statePath(root, name string) string {
	dir, inGit := stateDir(root)
	if inGit {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, "."+name)
}

// Path returns the cache file location for root.
func Path(root string) string {
	return statePath(root, "devshieldcache.json")
}

// Load reads the cache for root. On failure an empty, usable DB is returned
// along with the error.
func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(Path(root))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes db for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(Path(root), b, 0644)
}
