// Package decision turns risk assessments and policy verdicts into the final,
// explained decision shown to developers.
package decision

import (
	"github.com/devshield/devshield/internal/risk"
	"github.com/devshield/devshield/internal/types"
)

// PolicyLabel separates the explanation from the policy reason.
const PolicyLabel = "\nPolicy: "

// Combine builds the final decision. The policy action wins whenever a policy
// decision is supplied; otherwise the action implied by the score is used.
func Combine(a types.RiskAssessment, p *types.PolicyDecision, explanation string) types.Decision {
	d := types.Decision{RiskScore: a.RiskScore, Action: risk.ActionFor(a.RiskScore), Explanation: explanation}
	if p != nil {
		d.Action = p.Action
		d.Explanation = explanation + PolicyLabel + p.Reason
	}
	return d
}
