package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshield/devshield/internal/types"
)

func sampleResults() []types.Result {
	return []types.Result{
		{
			Finding:  types.Finding{Path: "a.env", Line: 3, SecretType: "Password", Secret: "hunter2hunter2!", Redacted: "hu***********2!"},
			Decision: types.Decision{RiskScore: 95, Action: types.ActionBlock},
		},
		{
			Finding:    types.Finding{Path: "b.py", Line: 1, SecretType: "API Key", Secret: "aK9fT2mZ7qL4xR8p", Redacted: "aK************8p"},
			Assessment: types.RiskAssessment{Degraded: true},
			Decision:   types.Decision{RiskScore: 60, Action: types.ActionWarn},
		},
	}
}

func TestLog_AppendAndHistory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	l := New(dir)
	assert.Equal(t, filepath.Join(dir, ".git", "devshield_audit.jsonl"), l.Path())

	none, err := l.History()
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, l.Append(NewScanRecord(dir, sampleResults(), 2, time.Second)))
	require.NoError(t, l.Append(NewOverrideRecord(dir, "test fixture", sampleResults()[:1])))

	recs, err := l.History()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, KindOverride, recs[0].Kind)
	assert.Equal(t, "test fixture", recs[0].Justification)
	assert.Equal(t, KindScan, recs[1].Kind)
	assert.Equal(t, map[string]int{"block": 1, "warn": 1}, recs[1].ActionCounts)
	assert.True(t, recs[1].Entries[1].Degraded)
	assert.NotEmpty(t, recs[1].ScanID)

	raw, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "hunter2hunter2!"))
	assert.False(t, strings.Contains(string(raw), "aK9fT2mZ7qL4xR8p"))
}

func TestLog_OutsideRepo(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ".devshield_audit.jsonl"), New(dir).Path())
}

func TestAnalysisLog(t *testing.T) {
	ctx := context.Background()
	a, err := OpenAnalysisLog(filepath.Join(t.TempDir(), "nested", "audit.db"))
	require.NoError(t, err)
	defer a.Close()

	req := types.Metadata{PatternType: "Password", VariableName: "DB_PASS", FileType: "env", Entropy: 5.2}
	resp := types.Decision{RiskScore: 100, Action: types.ActionBlock, Explanation: "blocked"}
	require.NoError(t, a.Record(ctx, req, resp))
	require.NoError(t, a.RecordResults(ctx, sampleResults()))

	rows, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, req, rows[2].Request)
	assert.Equal(t, resp, rows[2].Response)
	assert.Equal(t, types.ActionWarn, rows[0].Response.Action)
	assert.False(t, rows[2].Timestamp.IsZero())

	limited, err := a.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
