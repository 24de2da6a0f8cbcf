// Package risk scores candidate secrets.
package risk

import (
	"context"
	"strings"

	"github.com/devshield/devshield/internal/types"
)

// Scorer turns metadata about a candidate secret into a risk assessment.
// Implementations never fail; a scorer that cannot reach a verdict returns
// Degraded.
type Scorer interface {
	Score(ctx context.Context, m types.Metadata) types.RiskAssessment
}

type weight struct {
	key   string
	value int
}

// patternWeights is matched top to bottom against the lowercased pattern type
// and the first entry contained in it wins. Specific keys precede generic
// ones so that "secret" or "password" cannot shadow them.
var patternWeights = []weight{
	{"aws secret access key", 90},
	{"private_key", 80},
	{"private key", 80},
	{"aws access key id", 80},
	{"database password", 80},
	{"google api key", 70},
	{"cloud provider secret", 70},
	{"password", 70},
	{"api key", 60},
	{"access_key", 60},
	{"jwt", 60},
	{"secret", 60},
	{"token", 50},
	{"high-entropy string", 40},
}

var riskyVariables = []string{"api_key", "token", "password", "secret", "access_key", "private_key"}

var riskyFileTypes = []string{"env", "json", "yml", "yaml", "ini", "config"}

const (
	variableBonus = 15
	fileTypeBonus = 10
)

// Local is the deterministic additive scorer. The zero value is ready to use.
type Local struct{}

// Score implements Scorer.
func (Local) Score(_ context.Context, m types.Metadata) types.RiskAssessment {
	return Assess(m)
}

// Assess scores m with the local weight tables. It is a pure function of its
// input; missing fields contribute nothing.
func Assess(m types.Metadata) types.RiskAssessment {
	score := PatternWeight(m.PatternType)
	if containsAny(strings.ToLower(m.VariableName), riskyVariables) {
		score += variableBonus
	}
	if containsAny(strings.ToLower(m.FileType), riskyFileTypes) {
		score += fileTypeBonus
	}
	score += entropyBonus(m.Entropy)
	score = clamp(score)
	sev, conf := SeverityFor(score)
	return types.RiskAssessment{RiskScore: score, Severity: sev, Confidence: conf}
}

// PatternWeight returns the weight of the first table entry contained in the
// lowercased pattern type, or 0.
func PatternWeight(patternType string) int {
	p := strings.ToLower(patternType)
	for _, w := range patternWeights {
		if strings.Contains(p, w.key) {
			return w.value
		}
	}
	return 0
}

func entropyBonus(h float64) int {
	switch {
	case h > 5.0:
		return 25
	case h > 4.5:
		return 15
	case h > 4.0:
		return 7
	}
	return 0
}

func containsAny(s string, subs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
