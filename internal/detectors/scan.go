package detectors

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/devshield/devshield/internal/redact"
	"github.com/devshield/devshield/internal/types"
)

// SourceError reports a file that could not be read during a scan. Callers
// record it and continue with the remaining files.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ScanLine matches one line against every rule in order and then screens
// opaque tokens by entropy. A value may be reported by several rules; no
// deduplication is performed.
func ScanLine(line, path string, lineNo int) []types.Finding {
	var out []types.Finding
	for _, r := range rules {
		g := r.group()
		for _, m := range r.Pattern.FindAllStringSubmatchIndex(line, -1) {
			start, end := m[2*g], m[2*g+1]
			if start < 0 {
				continue
			}
			out = append(out, newFinding(path, lineNo, start, r.Label, line[start:end]))
		}
	}
	for _, m := range reOpaqueToken.FindAllStringIndex(line, -1) {
		word := line[m[0]:m[1]]
		if ShannonEntropy(word) > EntropyThreshold {
			out = append(out, newFinding(path, lineNo, m[0], LabelHighEntropy, word))
		}
	}
	return out
}

func newFinding(path string, lineNo, offset int, label, secret string) types.Finding {
	h := ShannonEntropy(secret)
	return types.Finding{
		Path:         path,
		Line:         lineNo,
		Column:       offset + 1,
		SecretType:   label,
		Secret:       secret,
		Redacted:     redact.Secret(secret),
		Entropy:      h,
		EntropyScore: entropyScore(h),
	}
}

// Inline suppression markers.
const (
	markerIgnore         = "devshield:ignore"
	markerIgnoreNextLine = "devshield:ignore-next-line"
	markerIgnoreStart    = "devshield:ignore-start"
	markerIgnoreEnd      = "devshield:ignore-end"
	markerIgnoreFile     = "devshield:ignore-file"
)

// ScanData scans every line of data independently. Lines can be excluded
// with devshield:ignore markers; a devshield:ignore-file marker anywhere in
// the content skips the whole file.
func ScanData(path string, data []byte) []types.Finding {
	if bytes.Contains(data, []byte(markerIgnoreFile)) {
		return nil
	}
	var out []types.Finding
	ignoreRegion := false
	skipNext := false
	// Lines have no length limit; minified sources can be one huge line.
	for i, raw := range bytes.Split(data, []byte("\n")) {
		line := i + 1
		t := string(bytes.TrimSuffix(raw, []byte("\r")))
		switch {
		case strings.Contains(t, markerIgnoreStart):
			ignoreRegion = true
			continue
		case strings.Contains(t, markerIgnoreEnd):
			ignoreRegion = false
			continue
		case ignoreRegion:
			continue
		case strings.Contains(t, markerIgnoreNextLine):
			skipNext = true
			continue
		case skipNext:
			skipNext = false
			continue
		case strings.Contains(t, markerIgnore):
			continue
		}
		out = append(out, ScanLine(t, path, line)...)
	}
	return out
}

// ScanFile reads path and scans it. A read failure is returned as a
// *SourceError.
func ScanFile(path string) ([]types.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	return ScanData(path, b), nil
}
