// Package audit keeps a local record of scan decisions and hook overrides.
// Records only ever hold redacted values.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devshield/devshield/internal/types"
)

// Record kinds.
const (
	KindScan     = "scan"
	KindOverride = "override"
)

// Record is one line of the audit log.
type Record struct {
	Kind          string         `json:"kind"`
	Timestamp     time.Time      `json:"timestamp"`
	ScanID        string         `json:"scan_id"`
	Root          string         `json:"root"`
	Repo          string         `json:"repo,omitempty"`
	Commit        string         `json:"commit,omitempty"`
	Branch        string         `json:"branch,omitempty"`
	FilesScanned  int            `json:"files_scanned"`
	Duration      string         `json:"duration,omitempty"`
	ActionCounts  map[string]int `json:"action_counts"`
	Justification string         `json:"justification,omitempty"`
	Entries       []Entry        `json:"entries,omitempty"`
}

// Entry summarises one decision.
type Entry struct {
	Path       string       `json:"path"`
	Line       int          `json:"line"`
	SecretType string       `json:"secret_type"`
	Redacted   string       `json:"redacted"`
	RiskScore  int          `json:"risk_score"`
	Action     types.Action `json:"action"`
	Degraded   bool         `json:"degraded,omitempty"`
}

// Log appends records to a JSON lines file.
type Log struct {
	path string
}

// New returns the log for root, stored under .git when present.
func New(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	p := filepath.Join(root, ".devshield_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		p = filepath.Join(gitDir, "devshield_audit.jsonl")
	}
	return &Log{path: p}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append writes one record. ScanID and Timestamp are filled when empty.
func (l *Log) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.ScanID == "" {
		rec.ScanID = fmt.Sprintf("scan_%d", rec.Timestamp.UnixNano())
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// History returns all records, newest first. Undecodable lines are skipped.
func (l *Log) History() ([]Record, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var r Record
		if err := dec.Decode(&r); err != nil {
			break
		}
		records = append(records, r)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// NewScanRecord summarises results. Raw secret values never reach the record.
func NewScanRecord(root string, results []types.Result, filesScanned int, d time.Duration) Record {
	rec := Record{
		Kind:         KindScan,
		Root:         root,
		FilesScanned: filesScanned,
		Duration:     d.String(),
		ActionCounts: map[string]int{},
		Entries:      entries(results),
	}
	for _, r := range results {
		rec.ActionCounts[string(r.Decision.Action)]++
	}
	return rec
}

// NewOverrideRecord records a blocked commit that was let through.
func NewOverrideRecord(root, justification string, results []types.Result) Record {
	rec := NewScanRecord(root, results, 0, 0)
	rec.Kind = KindOverride
	rec.Duration = ""
	rec.Justification = justification
	return rec
}

func entries(results []types.Result) []Entry {
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		out = append(out, Entry{
			Path:       r.Finding.Path,
			Line:       r.Finding.Line,
			SecretType: r.Finding.SecretType,
			Redacted:   r.Finding.Redacted,
			RiskScore:  r.Decision.RiskScore,
			Action:     r.Decision.Action,
			Degraded:   r.Assessment.Degraded,
		})
	}
	return out
}
