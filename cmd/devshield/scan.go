package devshield

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devshield/devshield/internal/audit"
	"github.com/devshield/devshield/internal/cache"
	"github.com/devshield/devshield/internal/engine"
	"github.com/devshield/devshield/internal/report"
	"github.com/devshield/devshield/internal/types"
	"github.com/devshield/devshield/internal/update"
)

var (
	flagPath         string
	flagStaged       bool
	flagHistory      int
	flagBase         string
	flagInclude      string
	flagExclude      string
	flagMaxBytes     int64
	flagFormat       string
	flagJSON         bool
	flagSARIF        bool
	flagOutput       string
	flagFailOn       string
	flagBaseline     string
	flagNoAudit      bool
	flagAuditDB      string
	flagUploadURL    string
	flagUploadToken  string
	flagNoUploadMeta bool
)

const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatSARIF = "sarif"
	formatHTML  = "html"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files for secrets and decide what to do about them",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "repository root to scan")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "scan staged changes")
	cmd.Flags().IntVar(&flagHistory, "history", 0, "scan last N commits (0=off)")
	cmd.Flags().StringVar(&flagBase, "base", "", "scan lines added vs base branch (e.g. main)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (default 1MiB)")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", formatTable, "output format: table|text|json|sarif|html")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "shorthand for --format json")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "shorthand for --format sarif")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "exit 1 when a decision reaches block|warn|never (default block)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", report.BaselineFile, "baseline file; findings listed there are not reported")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not append a record to the audit log")
	cmd.Flags().StringVar(&flagAuditDB, "audit-db", "", "also record decisions in this SQLite database")
	cmd.Flags().StringVar(&flagUploadURL, "upload", "", "POST decisions (JSON) to this URL after scan")
	cmd.Flags().StringVar(&flagUploadToken, "upload-token", "", "Bearer token for upload auth")
	cmd.Flags().BoolVar(&flagNoUploadMeta, "no-upload-metadata", false, "do not include repo/commit/branch in upload envelope")
}

func outputFormat() (string, error) {
	switch {
	case flagSARIF:
		return formatSARIF, nil
	case flagJSON:
		return formatJSON, nil
	}
	switch f := strings.ToLower(flagFormat); f {
	case formatTable, formatText, formatJSON, formatSARIF, formatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", types.ErrInput, flagFormat)
}

func runScan(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	fc, err := loadConfigs(abs, log)
	if err != nil {
		return err
	}
	failOn, err := report.ParseFailOn(pickString(flagFailOn, fc.local.FailOn, fc.global.FailOn))
	if err != nil {
		return err
	}
	ev, err := newEvaluator(abs, fc, log)
	if err != nil {
		return err
	}

	cfg := engine.Config{
		Root:            abs,
		Paths:           args,
		IncludeGlobs:    pickString(flagInclude, fc.local.Include, fc.global.Include),
		ExcludeGlobs:    pickString(flagExclude, fc.local.Exclude, fc.global.Exclude),
		MaxBytes:        pickInt64(flagMaxBytes, fc.local.MaxBytes, fc.global.MaxBytes),
		ScanStaged:      flagStaged,
		BaseBranch:      flagBase,
		HistoryCommits:  flagHistory,
		Threads:         pickInt(flagThreads, fc.local.Threads, fc.global.Threads),
		DefaultExcludes: defaultExcludes(cmd, fc),
		NoCache:         flagNoCache,
		Evaluator:       ev,
		Logger:          log,
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 1 << 20
	}
	if !flagStaged && flagBase == "" && flagHistory == 0 && len(args) == 0 {
		cfg.HistoryCommits = pickInt(0, fc.local.History, fc.global.History)
	}

	human := format == formatTable || format == formatText
	stderr := cmd.ErrOrStderr()
	if human && !flagNoUpdateCheck {
		if latest, newer, _ := update.Check(cmd.Context(), version, false); newer && latest != "" {
			_, _ = fmt.Fprintf(stderr, "(new version available: v%s)  run 'devshield update' to upgrade\n", latest)
		}
	}
	if human && isTerminal(stderr) {
		attachProgress(cmd, &cfg, stderr)
	}

	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if cfg.Progress != nil {
		_, _ = fmt.Fprintln(stderr)
	}

	results, baselined := applyBaseline(abs, res.Results, log)
	recordScan(cmd, abs, fc, results, res, log)

	out := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, format, results, res, baselined, noColor(out, fc)); err != nil {
		return err
	}

	// upload failures never fail the scan
	if flagUploadURL != "" {
		if err := uploadResults(cmd.Context(), abs, flagUploadURL, flagUploadToken, flagNoUploadMeta, results); err != nil {
			_, _ = fmt.Fprintln(stderr, "upload warning:", err)
		}
	}

	if report.ShouldFail(results, failOn) {
		return exitCode(1)
	}
	return nil
}

func defaultExcludes(cmd *cobra.Command, fc fileConfigs) bool {
	if cmd.Flags().Changed("default-excludes") {
		return flagDefaultExcludes
	}
	if fc.local.DefaultExcludes != nil {
		return *fc.local.DefaultExcludes
	}
	if fc.global.DefaultExcludes != nil {
		return *fc.global.DefaultExcludes
	}
	return flagDefaultExcludes
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// attachProgress prints a simple textual bar to w.
func attachProgress(cmd *cobra.Command, cfg *engine.Config, w io.Writer) {
	total, err := engine.CountTargets(cmd.Context(), *cfg)
	if err != nil || total == 0 {
		return
	}
	progressed := 0
	cfg.Progress = func() {
		progressed++
		if progressed%10 == 0 || progressed == total {
			pct := float64(progressed) / float64(total) * 100
			_, _ = fmt.Fprintf(w, "\r[%d/%d] %.0f%%", progressed, total, pct)
		}
	}
}

// applyBaseline drops results accepted in the baseline file and returns the
// remaining results with the number dropped.
func applyBaseline(root string, results []types.Result, log logrus.FieldLogger) ([]types.Result, int) {
	if flagBaseline == "" {
		return results, 0
	}
	path := flagBaseline
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	base, err := report.LoadBaseline(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("ignoring unreadable baseline")
		}
		return results, 0
	}
	kept := report.FilterNew(results, base)
	return kept, len(results) - len(kept)
}

// recordScan saves the last-scan file for review and appends audit records.
// Failures are logged only.
func recordScan(cmd *cobra.Command, root string, fc fileConfigs, results []types.Result, res engine.Result, log logrus.FieldLogger) {
	if err := cache.SaveResults(root, results); err != nil {
		log.WithError(err).Debug("last scan not saved")
	}
	if flagNoAudit {
		return
	}
	if err := audit.New(root).Append(audit.NewScanRecord(root, results, res.FilesScanned, res.Duration)); err != nil {
		log.WithError(err).Warn("audit log not written")
	}
	dbPath := pickString(flagAuditDB, fc.local.AuditDB, fc.global.AuditDB)
	if dbPath == "" {
		return
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	db, err := audit.OpenAnalysisLog(dbPath)
	if err != nil {
		log.WithError(err).Warn("audit database unavailable")
		return
	}
	defer db.Close()
	if err := db.RecordResults(cmd.Context(), results); err != nil {
		log.WithError(err).Warn("audit database not written")
	}
}

func writeReport(w io.Writer, format string, results []types.Result, res engine.Result, baselined int, plain bool) error {
	switch format {
	case formatSARIF:
		stats := map[string]int{"filesScanned": res.FilesScanned, "filesCached": res.FilesCached, "baselined": baselined}
		if err := report.WriteSARIFWithStats(w, results, version, stats); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
		return nil
	case formatJSON:
		return report.WriteJSON(w, results, res.FilesScanned, res.FileErrors)
	case formatHTML:
		return report.WriteHTML(w, results, res.FilesScanned)
	}
	opts := report.PrintOptions{
		NoColor:      plain,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		FileErrors:   len(res.FileErrors),
		Baselined:    baselined,
	}
	if format == formatText {
		report.PrintText(w, results, opts)
		return nil
	}
	return report.PrintTable(w, results, opts)
}
