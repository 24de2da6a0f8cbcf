// Package core provides a small, stable facade over DevShield's internal
// packages for programs that embed the decision pipeline: detect candidate
// secrets on a line, score them, apply the policy and explain the outcome.
//
// Example:
//
//	cfg, _ := core.LoadPolicyConfig("devshield.policy.json")
//	d := core.Evaluate(ctx, core.Metadata{PatternType: "Password", FileType: "env", Entropy: 5.2}, cfg)
//	fmt.Println(d.Action, d.RiskScore)
package core
