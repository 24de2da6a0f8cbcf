package devshield

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devshield/devshield/internal/config"
)

var (
	cfgOutput string
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .devshield.yml",
		RunE:  runConfigInit,
	}
	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective file configuration (local over global)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			fc, err := loadConfigs(".", log)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(mergeFileConfig(fc))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", cfgOutput)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(cfgOutput, []byte(config.Template), 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

// mergeFileConfig overlays local on global field by field.
func mergeFileConfig(fc fileConfigs) config.FileConfig {
	out := fc.global
	l := fc.local
	if l.Include != nil {
		out.Include = l.Include
	}
	if l.Exclude != nil {
		out.Exclude = l.Exclude
	}
	if l.MaxBytes != nil {
		out.MaxBytes = l.MaxBytes
	}
	if l.Threads != nil {
		out.Threads = l.Threads
	}
	if l.History != nil {
		out.History = l.History
	}
	if l.Policy != nil {
		out.Policy = l.Policy
	}
	if l.FailOn != nil {
		out.FailOn = l.FailOn
	}
	if l.Language != nil {
		out.Language = l.Language
	}
	if l.NoColor != nil {
		out.NoColor = l.NoColor
	}
	if l.DefaultExcludes != nil {
		out.DefaultExcludes = l.DefaultExcludes
	}
	if l.AuditDB != nil {
		out.AuditDB = l.AuditDB
	}
	if l.Scorer != nil {
		out.Scorer = l.Scorer
	}
	return out
}
