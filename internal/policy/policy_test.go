package policy

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshield/devshield/internal/types"
)

func TestCheck_Default(t *testing.T) {
	ctx := Context{VariableName: "DB_PASS"}
	tests := []struct {
		secretType string
		action     types.Action
		reason     string
	}{
		{"Password", types.ActionBlock, "Password must never be committed to code."},
		{"Secret Key", types.ActionBlock, "Secret Key must never be committed to code."},
		{"API Key", types.ActionWarn, "API Key detected. Strongly recommend using environment variables."},
		{"Token", types.ActionWarn, "Token detected. Strongly recommend using environment variables."},
		{"Unknown Type", types.ActionWarn, "All secrets should be stored in environment variables."},
	}
	for _, tt := range tests {
		t.Run(tt.secretType, func(t *testing.T) {
			d := Check(tt.secretType, ctx, Default())
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheck_AllowWithoutEnforceEnv(t *testing.T) {
	cfg := Config{BlockTypes: []string{"Password"}}
	d := Check("JWT", Context{}, cfg)
	assert.Equal(t, types.ActionAllow, d.Action)
	assert.Equal(t, "No policy violation.", d.Reason)
}

func TestCheck_BlockWinsOverlap(t *testing.T) {
	cfg := Config{BlockTypes: []string{"Token"}, WarnTypes: []string{"Token"}}
	assert.Equal(t, types.ActionBlock, Check("Token", Context{}, cfg).Action)

	var oe *OverlapError
	require.True(t, errors.As(Validate(cfg), &oe))
	assert.Equal(t, []string{"Token"}, oe.Types)
	assert.NoError(t, Validate(Default()))
}

func TestCheck_ContextDoesNotChangeAction(t *testing.T) {
	a := Check("API Key", Context{}, Default())
	b := Check("API Key", Context{VariableName: "PASSWORD", Filename: ".env"}, Default())
	assert.Equal(t, a, b)
}

func TestCheck_Idempotent(t *testing.T) {
	cfg := Default()
	assert.Equal(t, Check("Password", Context{}, cfg), Check("Password", Context{}, cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FallsBack(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrConfigUnavailable)
	assert.Equal(t, Default(), cfg)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	cfg, err = Load(bad)
	assert.ErrorIs(t, err, ErrConfigUnavailable)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	assert.ErrorIs(t, err, ErrConfigUnavailable)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	want := Config{BlockTypes: []string{"JWT", "Password"}, WarnTypes: []string{"Slack Token"}, EnforceEnv: false}
	for _, name := range []string{"policy.json", "policy.yaml", "policy.yml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(p, want))
			got, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSave_WholeDocumentOverwrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(p, []byte(`{"block_types":["JWT"],"extra":1}`), 0o644))
	require.NoError(t, Save(p, Config{WarnTypes: []string{"Token"}}))

	var raw map[string]any
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "extra")
	assert.Nil(t, raw["block_types"])
}

func TestReset(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Save(p, Config{}))
	require.NoError(t, Reset(p))
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSchema(t *testing.T) {
	b, err := Schema()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has properties")
	for _, k := range []string{"block_types", "warn_types", "enforce_env"} {
		assert.Contains(t, props, k)
	}
}
