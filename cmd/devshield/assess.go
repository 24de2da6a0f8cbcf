package devshield

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/audit"
	"github.com/devshield/devshield/internal/report"
	"github.com/devshield/devshield/internal/types"
)

var (
	flagAssessStdin   bool
	flagPatternType   string
	flagVariableName  string
	flagFileType      string
	flagEntropy       float64
	flagFilename      string
	flagLine          int
	flagBypassPolicy  bool
	flagAssessRoot    string
	flagAssessAuditDB string
)

func init() {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one candidate secret and print the final decision",
		Long: `Assess scores the metadata of a single candidate secret, applies the policy
and prints {risk_score, action, explanation} as JSON. Metadata comes from flags,
or from a JSON document on stdin with --stdin:

  {"pattern_type": "API Key", "variable_name": "API_KEY", "file_type": "env", "entropy": 4.8}`,
		Args: cobra.NoArgs,
		RunE: runAssess,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&flagAssessStdin, "stdin", false, "read metadata as JSON from stdin")
	cmd.Flags().StringVar(&flagPatternType, "type", "", "secret type, e.g. \"API Key\"")
	cmd.Flags().StringVar(&flagVariableName, "variable", "", "variable the value is assigned to")
	cmd.Flags().StringVar(&flagFileType, "file-type", "", "file type, e.g. env, py, js")
	cmd.Flags().Float64Var(&flagEntropy, "entropy", 0, "Shannon entropy of the value")
	cmd.Flags().StringVar(&flagFilename, "filename", "", "file the value was found in")
	cmd.Flags().IntVar(&flagLine, "line", 0, "line the value was found on")
	cmd.Flags().BoolVar(&flagBypassPolicy, "bypass-policy", false, "use the score-implied action and skip the policy")
	cmd.Flags().StringVarP(&flagAssessRoot, "path", "p", ".", "repository root used to find config and policy")
	cmd.Flags().StringVar(&flagAssessAuditDB, "audit-db", "", "record the request and decision in this SQLite database")
}

// readMetadata decodes and validates one metadata document.
func readMetadata(r io.Reader) (types.Metadata, error) {
	var m types.Metadata
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("%w: decode metadata: %v", types.ErrInput, err)
	}
	return m, validateMetadata(m)
}

func validateMetadata(m types.Metadata) error {
	if strings.TrimSpace(m.PatternType) == "" {
		return fmt.Errorf("%w: pattern_type is required", types.ErrInput)
	}
	if m.Entropy < 0 || math.IsNaN(m.Entropy) || math.IsInf(m.Entropy, 0) {
		return fmt.Errorf("%w: entropy must be a non-negative number", types.ErrInput)
	}
	if m.Line < 0 {
		return fmt.Errorf("%w: line must not be negative", types.ErrInput)
	}
	return nil
}

func runAssess(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	var m types.Metadata
	if flagAssessStdin {
		if m, err = readMetadata(cmd.InOrStdin()); err != nil {
			return err
		}
	} else {
		m = types.Metadata{
			PatternType:  flagPatternType,
			VariableName: flagVariableName,
			FileType:     flagFileType,
			Entropy:      flagEntropy,
			Filename:     flagFilename,
			Line:         flagLine,
		}
		if err := validateMetadata(m); err != nil {
			return err
		}
	}

	root, err := filepath.Abs(flagAssessRoot)
	if err != nil {
		return err
	}
	fc, err := loadConfigs(root, log)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(root, fc, log)
	if err != nil {
		return err
	}
	ev.BypassPolicy = flagBypassPolicy
	d := ev.Evaluate(cmd.Context(), m)

	if dbPath := pickString(flagAssessAuditDB, fc.local.AuditDB, fc.global.AuditDB); dbPath != "" {
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(root, dbPath)
		}
		db, err := audit.OpenAnalysisLog(dbPath)
		if err != nil {
			log.WithError(err).Warn("audit database unavailable")
		} else {
			if err := db.Record(cmd.Context(), m, d); err != nil {
				log.WithError(err).Warn("audit database not written")
			}
			_ = db.Close()
		}
	}
	return report.WriteDecision(cmd.OutOrStdout(), d)
}
