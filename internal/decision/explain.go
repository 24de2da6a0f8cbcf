package decision

import (
	"fmt"
	"strconv"

	"github.com/devshield/devshield/internal/types"
)

// Explain renders the human-readable explanation for a score. When an
// assessment carrying severity or confidence is supplied, a bracketed
// annotation is appended. The text is presentational only.
func Explain(m types.Metadata, score int, a *types.RiskAssessment) string {
	pattern := m.PatternType
	if pattern == "" {
		pattern = "Unknown"
	}
	fileType := m.FileType
	if fileType == "" {
		fileType = "file"
	}

	var msg string
	switch {
	case score >= 80:
		msg = fmt.Sprintf("🚨 High risk: %s detected in %s (variable: %s). "+
			"This value appears highly sensitive (entropy=%.2f). Commit is blocked to protect your project.",
			pattern, fileType, m.VariableName, m.Entropy)
	case score >= 40:
		msg = fmt.Sprintf("⚠️ Moderate risk: Potential sensitive value '%s' in %s (pattern: %s). "+
			"Entropy=%.2f. Please review and consider moving secrets to environment variables or a vault.",
			m.VariableName, fileType, pattern, m.Entropy)
	default:
		msg = fmt.Sprintf("✅ Low risk: No sensitive patterns detected in %s. Safe to proceed.", fileType)
	}

	if a != nil && (a.Severity != "" || a.Confidence != 0) {
		sev := string(a.Severity)
		if sev == "" {
			sev = "n/a"
		}
		msg += fmt.Sprintf("\n[Severity: %s | Confidence: %s]", sev, strconv.FormatFloat(a.Confidence, 'f', -1, 64))
	}
	return msg
}
