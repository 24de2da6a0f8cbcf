package cache

import (
	"encoding/json"
	"os"
	"time"

	"github.com/devshield/devshield/internal/types"
)

// ScanResults stores the decisions of the last scan for the review UI.
// Findings only carry redacted values.
type ScanResults struct {
	Results   []types.Result `json:"results"`
	Timestamp time.Time      `json:"timestamp"`
	Root      string         `json:"root"`
	Count     int            `json:"count"`
}

// ResultsPath returns the last-scan file location for root.
func ResultsPath(root string) string {
	return statePath(root, "devshield_last_scan.json")
}

// SaveResults saves scan results for root.
func SaveResults(root string, results []types.Result) error {
	sr := ScanResults{
		Results:   results,
		Timestamp: time.Now(),
		Root:      root,
		Count:     len(results),
	}
	b, err := json.MarshalIndent(sr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ResultsPath(root), b, 0644)
}

// LoadResults loads the last scan results for root.
func LoadResults(root string) (ScanResults, error) {
	var sr ScanResults
	f, err := os.ReadFile(ResultsPath(root))
	if err != nil {
		return sr, err
	}
	if err := json.Unmarshal(f, &sr); err != nil {
		return sr, err
	}
	return sr, nil
}
