package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devshield/devshield/internal/types"
)

// AnalysisLog stores every scored request and its decision in SQLite.
type AnalysisLog struct {
	db *sql.DB
}

// Analysis is one row of the analysis_log table.
type Analysis struct {
	ID        int64
	Timestamp time.Time
	Request   types.Metadata
	Response  types.Decision
}

// OpenAnalysisLog opens or creates the database at path.
func OpenAnalysisLog(path string) (*AnalysisLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS analysis_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		request TEXT NOT NULL,
		response TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_timestamp ON analysis_log(timestamp);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit db: %w", err)
	}
	return &AnalysisLog{db: db}, nil
}

// Record inserts one request and response pair.
func (a *AnalysisLog) Record(ctx context.Context, req types.Metadata, resp types.Decision) error {
	rb, err := json.Marshal(req)
	if err != nil {
		return err
	}
	pb, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO analysis_log (timestamp, request, response) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), string(rb), string(pb))
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// RecordResults inserts one row per result.
func (a *AnalysisLog) RecordResults(ctx context.Context, results []types.Result) error {
	for _, r := range results {
		if err := a.Record(ctx, r.Metadata, r.Decision); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (a *AnalysisLog) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, timestamp, request, response FROM analysis_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis log: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var (
			row      Analysis
			ts       string
			req, rsp string
		)
		if err := rows.Scan(&row.ID, &ts, &req, &rsp); err != nil {
			return nil, err
		}
		row.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if err := json.Unmarshal([]byte(req), &row.Request); err != nil {
			return nil, fmt.Errorf("decode request %d: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(rsp), &row.Response); err != nil {
			return nil, fmt.Errorf("decode response %d: %w", row.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close releases the database.
func (a *AnalysisLog) Close() error {
	return a.db.Close()
}
