// Package policy resolves the enforcement action for a secret type from a
// small, persisted policy document.
package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/devshield/devshield/internal/types"
)

// Config is the persisted policy document. Block and warn lists are expected
// to be disjoint; when a type appears in both, block wins.
type Config struct {
	BlockTypes []string `json:"block_types" yaml:"block_types" jsonschema:"description=Secret types that must never be committed"`
	WarnTypes  []string `json:"warn_types" yaml:"warn_types" jsonschema:"description=Secret types that are reported but may be overridden"`
	EnforceEnv bool     `json:"enforce_env" yaml:"enforce_env" jsonschema:"description=Treat every other secret type as at least a warning"`
}

// Default returns the built-in policy used when no configuration is available.
func Default() Config {
	return Config{
		BlockTypes: []string{"Password", "Secret Key"},
		WarnTypes:  []string{"API Key", "Token"},
		EnforceEnv: true,
	}
}

// Context carries optional details about where a secret was found. It is used
// to enrich messages and never changes the action.
type Context struct {
	VariableName string
	Filename     string
}

// Check resolves the action for secretType. Precedence is block list, warn
// list, enforce_env, then allow.
func Check(secretType string, _ Context, cfg Config) types.PolicyDecision {
	switch {
	case slices.Contains(cfg.BlockTypes, secretType):
		return types.PolicyDecision{Action: types.ActionBlock, Reason: secretType + " must never be committed to code."}
	case slices.Contains(cfg.WarnTypes, secretType):
		return types.PolicyDecision{Action: types.ActionWarn, Reason: secretType + " detected. Strongly recommend using environment variables."}
	case cfg.EnforceEnv:
		return types.PolicyDecision{Action: types.ActionWarn, Reason: "All secrets should be stored in environment variables."}
	}
	return types.PolicyDecision{Action: types.ActionAllow, Reason: "No policy violation."}
}

// OverlapError lists secret types present in both the block and warn lists.
type OverlapError struct {
	Types []string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("secret types listed as both block and warn (block wins): %s", strings.Join(e.Types, ", "))
}

// Validate reports block/warn overlap as an *OverlapError. An overlapping
// config is still usable.
func Validate(cfg Config) error {
	var dup []string
	for _, t := range cfg.WarnTypes {
		if slices.Contains(cfg.BlockTypes, t) && !slices.Contains(dup, t) {
			dup = append(dup, t)
		}
	}
	if len(dup) == 0 {
		return nil
	}
	return &OverlapError{Types: dup}
}
