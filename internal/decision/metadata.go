package decision

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/devshield/devshield/internal/types"
)

var (
	// identifier immediately before an assignment operator at the end of text
	reTrailingAssign = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.\-]*)["']?\s*(?::=|=>|=|:)\s*["'` + "`" + `]?\s*$`)
	// first assignment on a line, after an optional declaration keyword
	reLeadingAssign = regexp.MustCompile(`^\s*(?:export\s+|const\s+|var\s+|let\s+|set\s+)?["']?([A-Za-z_][A-Za-z0-9_.\-]*)["']?\s*(?::=|=>|=|:)`)
)

// VariableName returns the identifier assigned the value that starts at the
// 1-based column col of line, or "" when none is recognizable.
func VariableName(line string, col int) string {
	if col > 1 && col-1 <= len(line) {
		if m := reTrailingAssign.FindStringSubmatch(line[:col-1]); m != nil {
			return m[1]
		}
	}
	if m := reLeadingAssign.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// FileType derives the file category used for scoring: the extension without
// its dot, or the name without its leading dot for dotfiles such as .env.
func FileType(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if strings.HasPrefix(base, ".") {
		return strings.ToLower(strings.TrimPrefix(base, "."))
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
}

// MetadataFromFinding assembles scoring metadata for f. line is the source
// line the finding was matched on; it may be empty.
func MetadataFromFinding(f types.Finding, line string) types.Metadata {
	return types.Metadata{
		PatternType:  f.SecretType,
		VariableName: VariableName(line, f.Column),
		FileType:     FileType(f.Path),
		Entropy:      f.Entropy,
		Filename:     f.Path,
		Line:         f.Line,
	}
}
