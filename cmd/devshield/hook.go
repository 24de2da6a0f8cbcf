package devshield

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/audit"
	"github.com/devshield/devshield/internal/education"
	"github.com/devshield/devshield/internal/engine"
	"github.com/devshield/devshield/internal/git"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/report"
	"github.com/devshield/devshield/internal/types"
)

// Environment overrides honoured by the pre-commit hook.
const (
	envAllowSecret   = "DEVSHIELD_ALLOW_SECRET"
	envJustification = "DEVSHIELD_JUSTIFICATION"
)

const hookMarker = "# installed by devshield"

const hookScript = `#!/bin/sh
` + hookMarker + `
exec devshield hook run "$@"
`

var (
	flagHookPath      string
	flagAllowSecret   bool
	flagJustification string
	flagHookForce     bool
)

func init() {
	hook := &cobra.Command{Use: "hook", Short: "Git pre-commit hook"}
	rootCmd.AddCommand(hook)

	run := &cobra.Command{
		Use:   "run",
		Short: "Scan staged changes and block the commit when a secret must not be committed",
		RunE:  runHook,
	}
	run.Flags().StringVarP(&flagHookPath, "path", "p", ".", "path inside the repository")
	run.Flags().BoolVar(&flagAllowSecret, "allow-secret", false, "allow the commit despite blocking findings (also "+envAllowSecret+"=true)")
	run.Flags().StringVar(&flagJustification, "justification", "", "reason recorded for the override (also "+envJustification+")")
	hook.AddCommand(run)

	install := &cobra.Command{
		Use:   "install",
		Short: "Install the pre-commit hook into .git/hooks",
		RunE:  runHookInstall,
	}
	install.Flags().StringVarP(&flagHookPath, "path", "p", ".", "path inside the repository")
	install.Flags().BoolVar(&flagHookForce, "force", false, "overwrite an existing pre-commit hook")
	hook.AddCommand(install)
}

func runHook(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	root, err := git.TopLevel(flagHookPath)
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	fc, err := loadConfigs(root, log)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(root, fc, log)
	if err != nil {
		return err
	}
	cfg := engine.Config{
		Root:            root,
		ScanStaged:      true,
		MaxBytes:        pickInt64(0, fc.local.MaxBytes, fc.global.MaxBytes),
		IncludeGlobs:    pickString("", fc.local.Include, fc.global.Include),
		ExcludeGlobs:    pickString("", fc.local.Exclude, fc.global.Exclude),
		Threads:         pickInt(flagThreads, fc.local.Threads, fc.global.Threads),
		DefaultExcludes: defaultExcludes(cmd, fc),
		NoCache:         true,
		Evaluator:       ev,
		Logger:          log,
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 1 << 20
	}
	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(res.Results) == 0 {
		_, _ = fmt.Fprintln(out, "[DevShield Guard] No secrets found in staged files.")
		return nil
	}

	lang := pickString("", fc.local.Language, fc.global.Language)
	printHookResults(out, res.Results, lang, noColor(out, fc))
	if err := audit.New(root).Append(audit.NewScanRecord(root, res.Results, res.FilesScanned, res.Duration)); err != nil {
		log.WithError(err).Warn("audit log not written")
	}

	var blocked []types.Result
	for _, r := range res.Results {
		if r.Decision.Action == types.ActionBlock {
			blocked = append(blocked, r)
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	if !flagAllowSecret && !strings.EqualFold(os.Getenv(envAllowSecret), "true") {
		_, _ = fmt.Fprintln(out, "\n[DevShield Guard] Commit aborted due to detected secrets. Use --allow-secret with --justification to override.")
		return exitCode(1)
	}

	justification := flagJustification
	if justification == "" {
		justification = os.Getenv(envJustification)
	}
	_, _ = fmt.Fprintln(out, "\n[DevShield Guard] WARNING: Commit override used. Secret(s) detected but commit allowed.")
	if justification != "" {
		_, _ = fmt.Fprintf(out, "Justification: %s\n", justification)
	} else {
		_, _ = fmt.Fprintln(out, "No justification provided.")
	}
	if err := audit.New(root).Append(audit.NewOverrideRecord(root, justification, blocked)); err != nil {
		log.WithError(err).Warn("override not recorded")
	}
	return nil
}

func printHookResults(w io.Writer, results []types.Result, lang string, plain bool) {
	shown := map[string]bool{}
	for _, r := range results {
		f := r.Finding
		_, _ = fmt.Fprintf(w, "%s %s:%d %s (%s) risk %d\n",
			report.ColorAction(r.Decision.Action, plain), f.Path, f.Line, f.SecretType, f.Redacted, r.Decision.RiskScore)
		_, _ = fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(r.Decision.Explanation, "\n", "\n  "))
		if r.Decision.Action == types.ActionAllow || shown[f.SecretType] {
			continue
		}
		shown[f.SecretType] = true
		tip := education.Message(f.SecretType, policy.Context{VariableName: r.Metadata.VariableName, Filename: f.Path}, lang)
		_, _ = fmt.Fprint(w, tip.String())
	}
}

func runHookInstall(cmd *cobra.Command, _ []string) error {
	root, err := git.TopLevel(flagHookPath)
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	dir := filepath.Join(root, ".git", "hooks")
	path := filepath.Join(dir, "pre-commit")
	if b, err := os.ReadFile(path); err == nil && !strings.Contains(string(b), hookMarker) && !flagHookForce {
		return errors.New("a pre-commit hook already exists; use --force to replace it")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(hookScript), 0o755); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Installed", path)
	return nil
}
