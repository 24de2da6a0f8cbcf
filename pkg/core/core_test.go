package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline(t *testing.T) {
	line := `PASSWORD = "hunter2hunter2!"`
	fs := ScanLine(line, "app.env", 1)
	require.NotEmpty(t, fs)
	assert.Equal(t, "Password", fs[0].SecretType)
	assert.Equal(t, Redact(fs[0].Secret), fs[0].Redacted)
	assert.InDelta(t, ShannonEntropy(fs[0].Secret), fs[0].Entropy, 1e-9)

	m := Metadata{PatternType: "Password", VariableName: "DB_PASS", FileType: "env", Entropy: 5.2}
	a := ScoreRisk(m)
	assert.Equal(t, 100, a.RiskScore)

	p := CheckPolicy(m.PatternType, PolicyContext{}, DefaultPolicy())
	assert.Equal(t, "block", string(p.Action))

	d := Evaluate(context.Background(), m, DefaultPolicy())
	assert.Equal(t, 100, d.RiskScore)
	assert.Equal(t, "block", string(d.Action))
	assert.True(t, strings.HasPrefix(d.Explanation, GenerateExplanation(m, a.RiskScore, &a)))
}

func TestLoadPolicyConfig_Fallback(t *testing.T) {
	cfg, err := LoadPolicyConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrConfigUnavailable))
	assert.Equal(t, DefaultPolicy(), cfg)
}

func TestScanAndJSON(t *testing.T) {
	dir := t.TempDir()
	secret := "hunter2hunter2!"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.env"), []byte(`PASSWORD = "`+secret+`"`+"\n"), 0o644))

	rs, err := Scan(context.Background(), Config{Root: dir, NoCache: true})
	require.NoError(t, err)
	require.NotEmpty(t, rs)
	assert.Equal(t, "block", string(rs[0].Decision.Action))

	var buf bytes.Buffer
	require.NoError(t, MarshalResults(&buf, rs))
	assert.NotContains(t, buf.String(), secret)

	back, err := UnmarshalResults(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(rs))
	assert.Equal(t, rs[0].Decision, back[0].Decision)
	assert.Empty(t, back[0].Finding.Secret)
}
