package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devshield/devshield/internal/ignore"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// advice is the text copied by the y key: location, decision and the
// remediation steps from the education tip.
func (m Model) advice() string {
	r := m.selected()
	if r == nil {
		return ""
	}
	tip := m.tip(*r)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d %s (%s, score %d)\n", r.Finding.Path, r.Finding.Line, r.Finding.SecretType, r.Decision.Action, r.Decision.RiskScore)
	fmt.Fprintf(&sb, "Secure alternative: %s\n", tip.SecureAlternative)
	fmt.Fprintf(&sb, "Best practice: %s\n", tip.BestPractice)
	return sb.String()
}

func (m Model) copyAdvice() tea.Cmd {
	text := m.advice()
	return func() tea.Msg {
		if text == "" {
			return statusMsg("Nothing selected")
		}
		if err := clipboardWrite(text); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied remediation advice")
	}
}

func (m Model) copyLocation() tea.Cmd {
	r := m.selected()
	return func() tea.Msg {
		if r == nil {
			return statusMsg("Nothing selected")
		}
		loc := fmt.Sprintf("%s:%d", r.Finding.Path, r.Finding.Line)
		if err := clipboardWrite(loc); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied " + loc)
	}
}

// ignoreFile adds the selected file to .devshieldignore.
func (m Model) ignoreFile() tea.Cmd {
	r := m.selected()
	root := m.opts.Root
	return func() tea.Msg {
		if r == nil {
			return statusMsg("Nothing selected")
		}
		if root == "" {
			root = "."
		}
		if err := ignore.AppendIgnore(root, r.Finding.Path); err != nil {
			return statusMsg(fmt.Sprintf("Ignore failed: %v", err))
		}
		return statusMsg("Added " + r.Finding.Path + " to " + ignore.FileName)
	}
}
