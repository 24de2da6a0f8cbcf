// Package ignore implements .devshieldignore matching and .gitignore upkeep.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-repository ignore file.
const FileName = ".devshieldignore"

// Matcher reports whether a slash-separated relative path is ignored.
// The zero value ignores nothing.
type Matcher struct {
	patterns []string
}

// Load reads gitignore-style patterns from path. A missing file yields an
// empty matcher and the read error.
func Load(path string) (Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line. Blank lines and comments are skipped.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	line = strings.TrimPrefix(line, "/")
	if strings.HasSuffix(line, "/") {
		// directory: everything below it, at any depth
		dir := strings.TrimSuffix(line, "/")
		m.patterns = append(m.patterns, dir+"/**", "**/"+dir+"/**")
		return
	}
	m.patterns = append(m.patterns, line)
	if !strings.Contains(line, "/") {
		m.patterns = append(m.patterns, "**/"+line)
	}
}

// Match reports whether rel is ignored.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// AppendGitignore ensures pattern is present in repoRoot/.gitignore, creating
// the file if needed. It is idempotent.
func AppendGitignore(repoRoot, pattern string) error {
	return appendPattern(filepath.Join(repoRoot, ".gitignore"), pattern)
}

// AppendIgnore adds pattern to repoRoot's ignore file. It is idempotent.
func AppendIgnore(repoRoot, pattern string) error {
	return appendPattern(filepath.Join(repoRoot, FileName), pattern)
}

func appendPattern(path, pattern string) error {
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		for _, l := range strings.Split(string(b), "\n") {
			existing[strings.TrimSpace(l)] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	if existing[pattern] {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if !endsWithNewline {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(pattern + "\n")
	return err
}
