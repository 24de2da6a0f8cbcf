package devshield

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshield/devshield/internal/audit"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/report"
	"github.com/devshield/devshield/internal/types"
)

const rawSecret = "hunter2hunter2!"

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command in-process with an isolated home and
// config directory.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("CI", "1")

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--no-update-check"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func secretDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "config.env", `PASSWORD = "`+rawSecret+`"`+"\n")
	writeFile(t, dir, "README.md", "docs\n")
	return dir
}

func TestCLI_ScanJSON_FailsOnBlock(t *testing.T) {
	dir := secretDir(t)
	out, err := runCLI(t, "", "scan", "-p", dir, "--json")
	assert.Equal(t, exitCode(1), err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.NotEmpty(t, doc.Results)
	r := doc.Results[0]
	assert.Equal(t, "config.env", r.Finding.Path)
	assert.Equal(t, types.ActionBlock, r.Decision.Action)
	assert.Equal(t, 2, doc.FilesScanned)
	assert.NotContains(t, out, rawSecret)

	hist, err := audit.New(dir).History()
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, audit.KindScan, hist[0].Kind)
}

func TestCLI_ScanFailOnNever(t *testing.T) {
	dir := secretDir(t)
	out, err := runCLI(t, "", "scan", "-p", dir, "--format", "text", "--fail-on", "never", "--no-audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Password")
	assert.NotContains(t, out, rawSecret)
}

func TestCLI_ScanRejectsBadFlags(t *testing.T) {
	dir := secretDir(t)
	_, err := runCLI(t, "", "scan", "-p", dir, "--fail-on", "sometimes")
	assert.ErrorIs(t, err, types.ErrInput)
	_, err = runCLI(t, "", "scan", "-p", dir, "--format", "xml")
	assert.ErrorIs(t, err, types.ErrInput)
}

func TestCLI_ScanSARIF(t *testing.T) {
	dir := secretDir(t)
	out, err := runCLI(t, "", "scan", "-p", dir, "--sarif", "--fail-on", "never")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "2.1.0", doc["version"])
}

func TestCLI_ScanHTMLToFile(t *testing.T) {
	dir := secretDir(t)
	dest := filepath.Join(t.TempDir(), "report.html")
	_, err := runCLI(t, "", "scan", "-p", dir, "--format", "html", "-o", dest, "--fail-on", "never")
	require.NoError(t, err)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<html")
	assert.NotContains(t, string(b), rawSecret)
}

func TestCLI_BaselineSuppressesKnownFindings(t *testing.T) {
	dir := secretDir(t)
	out, err := runCLI(t, "", "baseline", "update", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Baseline updated")

	out, err = runCLI(t, "", "scan", "-p", dir, "--json", "--no-cache")
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Results)
}

func TestCLI_StrictPolicy(t *testing.T) {
	dir := secretDir(t)
	_, err := runCLI(t, "", "scan", "-p", dir, "--strict-policy", "--fail-on", "never")
	assert.ErrorIs(t, err, policy.ErrConfigUnavailable)

	writeFile(t, dir, policy.DefaultFile, `{"block_types":[],"warn_types":["Password"],"enforce_env":false}`)
	out, err := runCLI(t, "", "scan", "-p", dir, "--strict-policy", "--json")
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.NotEmpty(t, doc.Results)
	assert.Equal(t, types.ActionWarn, doc.Results[0].Decision.Action)
}

func TestCLI_AssessStdin(t *testing.T) {
	in := `{"pattern_type":"API Key","variable_name":"API_KEY","file_type":"env","entropy":4.8}`
	out, err := runCLI(t, in, "assess", "--stdin", "-p", t.TempDir())
	require.NoError(t, err)
	var d types.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &d), out)
	assert.Equal(t, 100, d.RiskScore)
	assert.Equal(t, types.ActionWarn, d.Action)
	assert.True(t, strings.HasSuffix(d.Explanation, "\nPolicy: API Key detected. Strongly recommend using environment variables."), d.Explanation)
}

func TestCLI_AssessFlagsBypassPolicy(t *testing.T) {
	out, err := runCLI(t, "", "assess", "--type", "API Key", "--variable", "API_KEY", "--file-type", "env", "--entropy", "4.8", "--bypass-policy", "-p", t.TempDir())
	require.NoError(t, err)
	var d types.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, types.ActionBlock, d.Action)
	assert.NotContains(t, d.Explanation, "Policy:")
}

func TestCLI_AssessRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":   `{}`,
		"garbage": `not json`,
		"unknown": `{"pattern_type":"Token","colour":"red"}`,
		"entropy": `{"pattern_type":"Token","entropy":-1}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, in, "assess", "--stdin", "-p", t.TempDir())
			assert.ErrorIs(t, err, types.ErrInput)
		})
	}
}

func TestCLI_AssessRecordsToAuditDB(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "audit.db")
	_, err := runCLI(t, "", "assess", "--type", "Token", "-p", root, "--audit-db", db)
	require.NoError(t, err)

	a, err := audit.OpenAnalysisLog(db)
	require.NoError(t, err)
	defer a.Close()
	recent, err := a.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestCLI_PolicyLifecycle(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "", "policy", "set", "-p", root, "--block", "Token, JWT", "--enforce-env")
	require.NoError(t, err)
	assert.Contains(t, out, policy.DefaultFile)

	cfg, err := policy.LoadFile(filepath.Join(root, policy.DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"Token", "JWT"}, cfg.BlockTypes)
	assert.Equal(t, policy.Default().WarnTypes, cfg.WarnTypes)
	assert.True(t, cfg.EnforceEnv)

	out, err = runCLI(t, "", "policy", "check", "Token", "-p", root)
	require.NoError(t, err)
	var pd types.PolicyDecision
	require.NoError(t, json.Unmarshal([]byte(out), &pd))
	assert.Equal(t, types.ActionBlock, pd.Action)
	assert.Equal(t, "Token must never be committed to code.", pd.Reason)

	out, err = runCLI(t, "", "policy", "check", "Slack Token", "-p", root)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &pd))
	assert.Equal(t, types.ActionWarn, pd.Action)

	_, err = runCLI(t, "", "policy", "reset", "-p", root)
	require.NoError(t, err)
	out, err = runCLI(t, "", "policy", "show", "-p", root)
	require.NoError(t, err)
	var shown policy.Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, policy.Default(), shown)

	_, err = runCLI(t, "", "policy", "set", "-p", root)
	assert.Error(t, err)
}

func TestCLI_PolicySchema(t *testing.T) {
	out, err := runCLI(t, "", "policy", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "block_types")
}

func TestCLI_Explain(t *testing.T) {
	out, err := runCLI(t, "", "explain", "API Key")
	require.NoError(t, err)
	assert.Contains(t, out, "=== DevShield Security Education ===")

	out, err = runCLI(t, "", "explain", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "Languages: en, hi")
}

func TestCLI_Detectors(t *testing.T) {
	out, err := runCLI(t, "", "detectors")
	require.NoError(t, err)
	assert.Contains(t, out, "Database Password")
	assert.Contains(t, out, "High-entropy string")
}

func TestCLI_Detect(t *testing.T) {
	out, err := runCLI(t, `token = "abcdefghijklmnop1234"`+"\n", "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")
	assert.NotContains(t, out, "abcdefghijklmnop1234")
}

func TestCLI_ConfigAndCIInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := runCLI(t, "", "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".devshield.yml"))
	require.NoError(t, err)
	_, err = runCLI(t, "", "config", "init")
	assert.Error(t, err)

	_, err = runCLI(t, "", "ci", "init", "--provider", "github")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".github", "workflows", "devshield.yml"))
	require.NoError(t, err)
	_, err = runCLI(t, "", "ci", "init", "--provider", "jenkins")
	assert.Error(t, err)
}

func TestCLI_Completion(t *testing.T) {
	out, err := runCLI(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "devshield")
	_, err = runCLI(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func newRepo(t *testing.T) (string, *gogit.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	writeFile(t, dir, "README.md", "docs\n")
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("init", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, wt
}

func TestCLI_HookInstall(t *testing.T) {
	dir, _ := newRepo(t)
	_, err := runCLI(t, "", "hook", "install", "-p", dir)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, ".git", "hooks", "pre-commit"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "devshield hook run")

	// reinstalling over our own hook is fine
	_, err = runCLI(t, "", "hook", "install", "-p", dir)
	require.NoError(t, err)

	writeFile(t, dir, ".git/hooks/pre-commit", "#!/bin/sh\necho custom\n")
	_, err = runCLI(t, "", "hook", "install", "-p", dir)
	assert.Error(t, err)
	_, err = runCLI(t, "", "hook", "install", "-p", dir, "--force")
	require.NoError(t, err)
}

func TestCLI_HookRun(t *testing.T) {
	t.Setenv(envAllowSecret, "")
	t.Setenv(envJustification, "")
	dir, wt := newRepo(t)

	out, err := runCLI(t, "", "hook", "run", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No secrets found")

	writeFile(t, dir, "app.env", `PASSWORD = "`+rawSecret+`"`+"\n")
	_, err = wt.Add("app.env")
	require.NoError(t, err)

	out, err = runCLI(t, "", "hook", "run", "-p", dir)
	assert.Equal(t, exitCode(1), err)
	assert.Contains(t, out, "Commit aborted")
	assert.Contains(t, out, "=== DevShield Security Education ===")
	assert.NotContains(t, out, rawSecret)

	out, err = runCLI(t, "", "hook", "run", "-p", dir, "--allow-secret", "--justification", "test fixture")
	require.NoError(t, err)
	assert.Contains(t, out, "Justification: test fixture")

	hist, err := audit.New(dir).History()
	require.NoError(t, err)
	require.NotEmpty(t, hist)
	assert.Equal(t, audit.KindOverride, hist[0].Kind)
	assert.Equal(t, "test fixture", hist[0].Justification)
}

func TestCLI_HookRunEnvOverride(t *testing.T) {
	dir, wt := newRepo(t)
	writeFile(t, dir, "app.env", `PASSWORD = "`+rawSecret+`"`+"\n")
	_, err := wt.Add("app.env")
	require.NoError(t, err)

	t.Setenv(envAllowSecret, "TRUE")
	t.Setenv(envJustification, "")
	out, err := runCLI(t, "", "hook", "run", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No justification provided.")
}

func TestPickHelpers(t *testing.T) {
	l, g := "local", "global"
	assert.Equal(t, "cli", pickString("cli", &l, &g))
	assert.Equal(t, "local", pickString("", &l, &g))
	assert.Equal(t, "global", pickString("", nil, &g))
	assert.Equal(t, "", pickString("", nil, nil))

	one, two := 1, 2
	assert.Equal(t, 2, pickInt(0, nil, &two))
	assert.Equal(t, 1, pickInt(0, &one, &two))

	f := false
	tr := true
	assert.True(t, pickBool(true, &f, &f))
	assert.False(t, pickBool(false, &f, &tr))
	assert.True(t, pickBool(false, nil, &tr))
}
