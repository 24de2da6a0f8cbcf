package types

import "errors"

// ErrInput marks malformed or missing metadata rejected at an input boundary.
// Core scoring never returns it; missing fields simply contribute nothing.
var ErrInput = errors.New("invalid input")

// Severity is a qualitative risk band derived from a risk score.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMed      Severity = "medium"
	SevLow      Severity = "low"
	SevInfo     Severity = "info"
)

// Action is the enforcement verdict for a candidate secret.
type Action string

const (
	ActionBlock Action = "block"
	ActionWarn  Action = "warn"
	ActionAllow Action = "allow"
)

// Rank orders actions so that block > warn > allow.
func (a Action) Rank() int {
	switch a {
	case ActionBlock:
		return 3
	case ActionWarn:
		return 2
	case ActionAllow:
		return 1
	}
	return 0
}

// Finding is one candidate secret matched on a single line.
// Secret holds the raw value in memory only and is never serialized; use
// Redacted for anything that is displayed or stored.
type Finding struct {
	Path         string  `json:"path"`
	Line         int     `json:"line"`
	Column       int     `json:"column,omitempty"`
	SecretType   string  `json:"secret_type"`
	Secret       string  `json:"-"`
	Redacted     string  `json:"redacted"`
	Entropy      float64 `json:"entropy"`
	EntropyScore int     `json:"entropy_score"`
}

// Metadata is the normalized description of one candidate secret used for
// scoring. Filename and Line are informational.
type Metadata struct {
	PatternType  string  `json:"pattern_type"`
	VariableName string  `json:"variable_name,omitempty"`
	FileType     string  `json:"file_type,omitempty"`
	Entropy      float64 `json:"entropy"`
	Filename     string  `json:"filename,omitempty"`
	Line         int     `json:"line,omitempty"`
}

// RiskAssessment is the output of a risk scorer. Action and Explanation are
// only populated by scorers that decide on their own (remote scorers, or a
// degraded result); the local scorer leaves them empty.
type RiskAssessment struct {
	RiskScore   int      `json:"risk_score"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Action      Action   `json:"action,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// PolicyDecision is the verdict of the policy engine for a secret type.
type PolicyDecision struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// Decision is the final, user-facing result for one candidate secret.
type Decision struct {
	RiskScore   int    `json:"risk_score"`
	Action      Action `json:"action"`
	Explanation string `json:"explanation"`
}

// Result couples a finding with the decision reached for it. It is the unit
// that reports, audit logs and the review UI work with.
type Result struct {
	Finding    Finding        `json:"finding"`
	Metadata   Metadata       `json:"metadata"`
	Assessment RiskAssessment `json:"assessment"`
	Policy     PolicyDecision `json:"policy"`
	Decision   Decision       `json:"decision"`
}
