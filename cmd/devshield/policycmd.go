package devshield

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/logging"
	"github.com/devshield/devshield/internal/policy"
)

var (
	flagPolicyRoot     string
	flagPolicyBlock    string
	flagPolicyWarn     string
	flagPolicyEnforce  bool
	flagPolicyVariable string
	flagPolicyFilename string
)

func init() {
	pol := &cobra.Command{Use: "policy", Short: "Show and edit the policy document"}
	pol.PersistentFlags().StringVarP(&flagPolicyRoot, "path", "p", ".", "repository root")
	rootCmd.AddCommand(pol)

	pol.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active policy as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolvePolicyPath()
			if err != nil {
				return err
			}
			cfg, err := policy.Load(path)
			if err != nil {
				if flagStrictPolicy {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "(%s unavailable; showing the default policy)\n", path)
			}
			return writeJSONDoc(cmd, cfg)
		},
	})

	set := &cobra.Command{
		Use:   "set",
		Short: "Update the policy document",
		Long:  "Set replaces the lists given on the command line and writes the whole document back.",
		Args:  cobra.NoArgs,
		RunE:  runPolicySet,
	}
	set.Flags().StringVar(&flagPolicyBlock, "block", "", "comma-separated secret types to block")
	set.Flags().StringVar(&flagPolicyWarn, "warn", "", "comma-separated secret types to warn on")
	set.Flags().BoolVar(&flagPolicyEnforce, "enforce-env", false, "warn on every other secret type")
	pol.AddCommand(set)

	pol.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Write the default policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolvePolicyPath()
			if err != nil {
				return err
			}
			if err := policy.Reset(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	})

	check := &cobra.Command{
		Use:   "check <secret type>",
		Short: "Print the policy decision for a secret type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			root, err := filepath.Abs(flagPolicyRoot)
			if err != nil {
				return err
			}
			fc, err := loadConfigs(root, log)
			if err != nil {
				return err
			}
			cfg, err := loadPolicy(root, fc, log)
			if err != nil {
				return err
			}
			ctx := policy.Context{VariableName: flagPolicyVariable, Filename: flagPolicyFilename}
			return writeJSONDoc(cmd, policy.Check(args[0], ctx, cfg))
		},
	}
	check.Flags().StringVar(&flagPolicyVariable, "variable", "", "variable name context")
	check.Flags().StringVar(&flagPolicyFilename, "filename", "", "filename context")
	pol.AddCommand(check)

	pol.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the policy document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := policy.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	})
}

func resolvePolicyPath() (string, error) {
	root, err := filepath.Abs(flagPolicyRoot)
	if err != nil {
		return "", err
	}
	fc, err := loadConfigs(root, logging.Discard())
	if err != nil {
		return "", err
	}
	return policyPath(root, fc), nil
}

func runPolicySet(cmd *cobra.Command, _ []string) error {
	path, err := resolvePolicyPath()
	if err != nil {
		return err
	}
	cfg, err := policy.LoadFile(path)
	if err != nil {
		cfg = policy.Default()
	}
	changed := false
	if cmd.Flags().Changed("block") {
		cfg.BlockTypes = splitList(flagPolicyBlock)
		changed = true
	}
	if cmd.Flags().Changed("warn") {
		cfg.WarnTypes = splitList(flagPolicyWarn)
		changed = true
	}
	if cmd.Flags().Changed("enforce-env") {
		cfg.EnforceEnv = flagPolicyEnforce
		changed = true
	}
	if !changed {
		return errors.New("nothing to set; pass --block, --warn or --enforce-env")
	}
	var overlap *policy.OverlapError
	if err := policy.Validate(cfg); errors.As(err, &overlap) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}
	if err := policy.Save(path, cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSONDoc(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
