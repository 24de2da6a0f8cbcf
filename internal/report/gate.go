package report

import (
	"fmt"

	"github.com/devshield/devshield/internal/types"
)

// Fail thresholds accepted by ShouldFail.
const (
	FailOnBlock = "block"
	FailOnWarn  = "warn"
	FailOnNever = "never"
)

// ParseFailOn validates a --fail-on value. Empty means block.
func ParseFailOn(s string) (string, error) {
	switch s {
	case "":
		return FailOnBlock, nil
	case FailOnBlock, FailOnWarn, FailOnNever:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown fail-on value %q (want block, warn or never)", types.ErrInput, s)
}

// ShouldFail reports whether any decision reaches the failOn threshold.
func ShouldFail(results []types.Result, failOn string) bool {
	var th int
	switch failOn {
	case FailOnNever:
		return false
	case FailOnWarn:
		th = types.ActionWarn.Rank()
	default:
		th = types.ActionBlock.Rank()
	}
	for _, r := range results {
		if r.Decision.Action.Rank() >= th {
			return true
		}
	}
	return false
}
