package devshield

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/education"
	"github.com/devshield/devshield/internal/logging"
	"github.com/devshield/devshield/internal/policy"
)

var (
	flagExplainLang     string
	flagExplainVariable string
	flagExplainFilename string
	flagExplainList     bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "explain [secret type]",
		Short: "Print security guidance for a secret type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if flagExplainList || len(args) == 0 {
				types := education.Types()
				sort.Strings(types)
				_, _ = fmt.Fprintf(out, "Secret types: %s\nLanguages: %s\n", strings.Join(types, ", "), strings.Join(education.Languages(), ", "))
				return nil
			}
			lang := flagExplainLang
			if lang == "" {
				if root, err := filepath.Abs("."); err == nil {
					if fc, err := loadConfigs(root, logging.Discard()); err == nil {
						lang = pickString("", fc.local.Language, fc.global.Language)
					}
				}
			}
			ctx := policy.Context{VariableName: flagExplainVariable, Filename: flagExplainFilename}
			_, err := fmt.Fprint(out, education.Message(args[0], ctx, lang).String())
			return err
		},
	}
	cmd.Flags().StringVar(&flagExplainLang, "lang", "", "message language (en, hi)")
	cmd.Flags().StringVar(&flagExplainVariable, "variable", "", "variable name the secret was assigned to")
	cmd.Flags().StringVar(&flagExplainFilename, "filename", "", "file the secret was found in")
	cmd.Flags().BoolVar(&flagExplainList, "list", false, "list known secret types and languages")
	rootCmd.AddCommand(cmd)
}
