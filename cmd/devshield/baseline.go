package devshield

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/engine"
	"github.com/devshield/devshield/internal/report"
)

var flagBaselineRoot string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Accept every current finding into the baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(flagBaselineRoot)
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
				// cached files carry no findings to record
				NoCache:   true,
				Evaluator: ev,
				Logger:    log,
			}
			results, err := engine.Scan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			path := filepath.Join(abs, report.BaselineFile)
			if err := report.SaveBaseline(path, results); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated with %d findings.\n", len(results))
			return nil
		},
	}
	update.Flags().StringVarP(&flagBaselineRoot, "path", "p", ".", "repository root")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
