package decision

import (
	"context"

	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/risk"
	"github.com/devshield/devshield/internal/types"
)

// Evaluator runs the decision pipeline: score, explain, check policy and
// combine. A nil Scorer uses the local scorer and a nil Policy the built-in
// default policy.
type Evaluator struct {
	Scorer risk.Scorer
	Policy *policy.Config
	// BypassPolicy skips the policy engine so the score-implied action is used.
	BypassPolicy bool
}

// Evaluate decides on one candidate secret.
func (e Evaluator) Evaluate(ctx context.Context, m types.Metadata) types.Decision {
	return e.evaluate(ctx, m).Decision
}

// EvaluateFinding decides on a finding and returns the full result. line is
// the source line the finding was matched on.
func (e Evaluator) EvaluateFinding(ctx context.Context, f types.Finding, line string) types.Result {
	return e.EvaluateWithMetadata(ctx, f, MetadataFromFinding(f, line))
}

// EvaluateWithMetadata decides on f using caller-built metadata.
func (e Evaluator) EvaluateWithMetadata(ctx context.Context, f types.Finding, m types.Metadata) types.Result {
	r := e.evaluate(ctx, m)
	r.Finding = f
	return r
}

func (e Evaluator) evaluate(ctx context.Context, m types.Metadata) types.Result {
	s := e.Scorer
	if s == nil {
		s = risk.Local{}
	}
	a := s.Score(ctx, m)
	explanation := a.Explanation
	if explanation == "" {
		explanation = Explain(m, a.RiskScore, &a)
	}
	res := types.Result{Metadata: m, Assessment: a}
	if e.BypassPolicy {
		res.Decision = Combine(a, nil, explanation)
		if a.Action != "" {
			res.Decision.Action = a.Action
		}
		return res
	}
	cfg := policy.Default()
	if e.Policy != nil {
		cfg = *e.Policy
	}
	p := policy.Check(m.PatternType, policy.Context{VariableName: m.VariableName, Filename: m.Filename}, cfg)
	res.Policy = p
	res.Decision = Combine(a, &p, explanation)
	return res
}
