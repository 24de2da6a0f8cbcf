package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/devshield/devshield/internal/types"
)

// PrintOptions controls human-readable output.
type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	FileErrors   int
	Baselined    int
}

var (
	blockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	allowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// ColorAction renders an action label, coloured unless noColor.
func ColorAction(a types.Action, noColor bool) string {
	s := string(a)
	if noColor {
		return s
	}
	switch a {
	case types.ActionBlock:
		return blockStyle.Render(s)
	case types.ActionWarn:
		return warnStyle.Render(s)
	default:
		return allowStyle.Render(s)
	}
}

// PrintTable writes results as a bordered table followed by the summary.
func PrintTable(w io.Writer, results []types.Result, opts PrintOptions) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("ACTION", "SCORE", "SEVERITY", "TYPE", "LOCATION", "VALUE")
		for _, r := range results {
			if err := table.Append([]string{
				ColorAction(r.Decision.Action, opts.NoColor),
				strconv.Itoa(r.Decision.RiskScore),
				severityLabel(r),
				r.Finding.SecretType,
				location(r.Finding),
				r.Finding.Redacted,
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printSummary(w, results, opts)
	return nil
}

// PrintText writes one block per result with the full explanation.
func PrintText(w io.Writer, results []types.Result, opts PrintOptions) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		fmt.Fprintf(w, "Findings: %d\n", len(results))
		for _, r := range results {
			fmt.Fprintf(w, "\n%s  %s  %s  score=%d\n", ColorAction(r.Decision.Action, opts.NoColor), location(r.Finding), r.Finding.SecretType, r.Decision.RiskScore)
			fmt.Fprintf(w, "  value: %s\n", r.Finding.Redacted)
			if r.Assessment.Degraded {
				fmt.Fprintln(w, "  (risk assessment degraded)")
			}
			fmt.Fprintf(w, "  %s\n", indent(r.Decision.Explanation))
		}
	}
	printSummary(w, results, opts)
}

func printSummary(w io.Writer, results []types.Result, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 && len(results) == 0 {
		return
	}
	c := CountActions(results)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (block: %d, warn: %d, allow: %d)\n", len(results), c[types.ActionBlock], c[types.ActionWarn], c[types.ActionAllow])
	if opts.Baselined > 0 {
		fmt.Fprintf(w, "Baselined: %d\n", opts.Baselined)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.FileErrors > 0 {
		fmt.Fprintf(w, "Unreadable files: %d\n", opts.FileErrors)
	}
}

// CountActions tallies final actions.
func CountActions(results []types.Result) map[types.Action]int {
	c := map[types.Action]int{}
	for _, r := range results {
		c[r.Decision.Action]++
	}
	return c
}

func severityLabel(r types.Result) string {
	if r.Assessment.Severity == "" {
		return "-"
	}
	return string(r.Assessment.Severity)
}

func location(f types.Finding) string {
	return f.Path + ":" + strconv.Itoa(f.Line)
}

func indent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\n' {
			out = append(out, ' ', ' ')
		}
	}
	return string(out)
}
