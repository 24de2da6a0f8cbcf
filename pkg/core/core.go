package core

import (
	"context"

	"github.com/devshield/devshield/internal/decision"
	"github.com/devshield/devshield/internal/detectors"
	"github.com/devshield/devshield/internal/engine"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/redact"
	"github.com/devshield/devshield/internal/risk"
	"github.com/devshield/devshield/internal/types"
)

// Re-exported types. These are aliases so values flow between the facade and
// the internal packages without conversion.
type (
	Finding        = types.Finding
	Metadata       = types.Metadata
	RiskAssessment = types.RiskAssessment
	PolicyDecision = types.PolicyDecision
	Decision       = types.Decision
	Result         = types.Result
	PolicyConfig   = policy.Config
	PolicyContext  = policy.Context
	Config         = engine.Config
	ScanResult     = engine.Result
)

// ErrConfigUnavailable is wrapped by LoadPolicyConfig when it falls back to
// the default policy.
var ErrConfigUnavailable = policy.ErrConfigUnavailable

// ScanLine returns candidate secrets on one line in rule order.
func ScanLine(line, path string, lineNo int) []Finding {
	return detectors.ScanLine(line, path, lineNo)
}

// ShannonEntropy returns the entropy of s in bits per character.
func ShannonEntropy(s string) float64 { return detectors.ShannonEntropy(s) }

// Redact masks a secret, keeping two characters at each end.
func Redact(s string) string { return redact.Secret(s) }

// ScoreRisk runs the local additive scorer.
func ScoreRisk(m Metadata) RiskAssessment { return risk.Assess(m) }

// CheckPolicy applies cfg to a secret type.
func CheckPolicy(secretType string, ctx PolicyContext, cfg PolicyConfig) PolicyDecision {
	return policy.Check(secretType, ctx, cfg)
}

// LoadPolicyConfig reads the policy at path. On failure it returns the
// default policy and an error wrapping ErrConfigUnavailable.
func LoadPolicyConfig(path string) (PolicyConfig, error) { return policy.Load(path) }

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() PolicyConfig { return policy.Default() }

// GenerateExplanation renders the explanation for a score. a may be nil.
func GenerateExplanation(m Metadata, score int, a *RiskAssessment) string {
	return decision.Explain(m, score, a)
}

// Evaluate runs the full pipeline with the local scorer.
func Evaluate(ctx context.Context, m Metadata, cfg PolicyConfig) Decision {
	return decision.Evaluator{Policy: &cfg}.Evaluate(ctx, m)
}

// Scan runs a batch scan and returns the evaluated results.
func Scan(ctx context.Context, cfg Config) ([]Result, error) {
	return engine.Scan(ctx, cfg)
}

// ScanWithStats runs a batch scan and returns results with counts.
func ScanWithStats(ctx context.Context, cfg Config) (ScanResult, error) {
	return engine.ScanWithStats(ctx, cfg)
}
