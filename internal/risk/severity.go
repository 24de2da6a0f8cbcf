package risk

import "github.com/devshield/devshield/internal/types"

// SeverityFor maps a risk score to its severity band and the confidence tied
// to that band.
func SeverityFor(score int) (types.Severity, float64) {
	switch {
	case score >= 80:
		return types.SevCritical, 0.95
	case score >= 60:
		return types.SevHigh, 0.85
	case score >= 40:
		return types.SevMed, 0.70
	case score >= 20:
		return types.SevLow, 0.50
	}
	return types.SevInfo, 0.30
}

// ActionFor is the action implied by a score alone, used when no policy
// decision is available.
func ActionFor(score int) types.Action {
	switch {
	case score >= 80:
		return types.ActionBlock
	case score >= 40:
		return types.ActionWarn
	}
	return types.ActionAllow
}

// Degraded is the fail-open result returned by a scorer that could not
// produce an assessment.
func Degraded(reason string) types.RiskAssessment {
	sev, conf := SeverityFor(0)
	return types.RiskAssessment{
		RiskScore:   0,
		Severity:    sev,
		Confidence:  conf,
		Action:      types.ActionAllow,
		Explanation: "Error in risk assessment: " + reason,
		Degraded:    true,
	}
}
