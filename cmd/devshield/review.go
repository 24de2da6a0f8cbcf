package devshield

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/cache"
	"github.com/devshield/devshield/internal/engine"
	"github.com/devshield/devshield/internal/tui"
	"github.com/devshield/devshield/internal/types"
)

var flagReviewRoot string

func init() {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Browse the decisions of the last scan interactively",
		Args:  cobra.NoArgs,
		RunE:  runReview,
	}
	cmd.Flags().StringVarP(&flagReviewRoot, "path", "p", ".", "repository root")
	rootCmd.AddCommand(cmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(flagReviewRoot)
	if err != nil {
		return err
	}
	fc, err := loadConfigs(abs, log)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(abs, fc, log)
	if err != nil {
		return err
	}
	cfg := engine.Config{
		Root:            abs,
		IncludeGlobs:    pickString("", fc.local.Include, fc.global.Include),
		ExcludeGlobs:    pickString("", fc.local.Exclude, fc.global.Exclude),
		MaxBytes:        pickInt64(0, fc.local.MaxBytes, fc.global.MaxBytes),
		Threads:         pickInt(flagThreads, fc.local.Threads, fc.global.Threads),
		DefaultExcludes: defaultExcludes(cmd, fc),
		NoCache:         true,
		Evaluator:       ev,
		Logger:          log,
	}
	rescan := func() ([]types.Result, error) {
		results, err := engine.Scan(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		if err := cache.SaveResults(abs, results); err != nil {
			log.WithError(err).Debug("last scan not saved")
		}
		return results, nil
	}

	prefs := tui.LoadPrefs()
	if lang := pickString("", fc.local.Language, fc.global.Language); lang != "" {
		prefs.Language = lang
	}
	opts := tui.Options{Root: abs, Rescan: rescan, Prefs: prefs}

	last, err := cache.LoadResults(abs)
	switch {
	case err == nil:
		opts.Cached = true
		opts.Timestamp = last.Timestamp
		return tui.Run(last.Results, opts)
	case errors.Is(err, os.ErrNotExist):
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No previous scan found; scanning now...")
		results, err := rescan()
		if err != nil {
			return err
		}
		return tui.Run(results, opts)
	default:
		return fmt.Errorf("read last scan: %w", err)
	}
}
