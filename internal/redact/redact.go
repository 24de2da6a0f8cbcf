// Package redact masks secret values for display and storage.
package redact

import (
	"cmp"
	"slices"
	"strings"
)

// Secret masks s keeping only its first and last two characters. Values of
// four characters or fewer are fully masked. The result always has the same
// number of characters as s.
func Secret(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:2]) + strings.Repeat("*", len(r)-4) + string(r[len(r)-2:])
}

// Line replaces every occurrence of each secret in line with its masked form.
// Longer secrets are replaced first so that overlapping values mask cleanly.
func Line(line string, secrets []string) string {
	ordered := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			ordered = append(ordered, s)
		}
	}
	slices.SortStableFunc(ordered, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	for _, s := range ordered {
		line = strings.ReplaceAll(line, s, Secret(s))
	}
	return line
}
