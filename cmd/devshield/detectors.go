package devshield

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/devshield/devshield/internal/detectors"
	"github.com/devshield/devshield/internal/logging"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/report"
	"github.com/devshield/devshield/internal/risk"
	"github.com/devshield/devshield/internal/types"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "detectors",
		Short: "List the secret types DevShield detects and their pattern weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.Header("SECRET TYPE", "WEIGHT", "DEFAULT POLICY")
			def := policy.Default()
			for _, label := range detectors.Labels() {
				d := policy.Check(label, policy.Context{}, def)
				if err := table.Append([]string{label, fmt.Sprint(risk.PatternWeight(label)), string(d.Action)}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "detect",
		Short: "Run the detectors against text read from stdin",
		Args:  cobra.NoArgs,
		RunE:  runDetect,
	})
}

func runDetect(cmd *cobra.Command, _ []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	ev, err := newEvaluator(".", fileConfigs{}, logging.Discard())
	if err != nil {
		return err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	var results []types.Result
	for _, f := range detectors.ScanData("stdin", data) {
		line := ""
		if f.Line >= 1 && f.Line <= len(lines) {
			line = lines[f.Line-1]
		}
		results = append(results, ev.EvaluateFinding(cmd.Context(), f, line))
	}
	out := cmd.OutOrStdout()
	plain := noColor(out, fileConfigs{})
	if !plain {
		_, _ = fmt.Fprintln(out, headingStyle.Render("stdin"))
	}
	return report.PrintTable(out, results, report.PrintOptions{NoColor: plain})
}
