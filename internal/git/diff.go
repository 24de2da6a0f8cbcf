package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var reHunk = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// DiffAgainst returns, for each file changed relative to base, only the lines
// added since base. Line numbers of the added lines in the current file are
// kept in File.Lines. Files with no added lines are omitted.
func DiffAgainst(ctx context.Context, root, base string) ([]File, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(base, "-") {
		return nil, fmt.Errorf("invalid base ref %q", base)
	}
	out, err := exec.CommandContext(ctx, "git", "-C", validRoot, "diff", "--name-only", "--diff-filter=d", base).Output()
	if err != nil {
		return nil, fmt.Errorf("git diff %s: %w", base, err)
	}
	var files []File
	for _, p := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if p == "" {
			continue
		}
		b, err := exec.CommandContext(ctx, "git", "-C", validRoot, "diff", "--unified=0", base, "--", p).Output()
		if err != nil {
			continue
		}
		f := addedLines(p, b)
		if len(f.Lines) > 0 {
			files = append(files, f)
		}
	}
	return files, nil
}

// addedLines extracts '+' lines from a unified diff, tracking their line
// numbers from hunk headers.
func addedLines(path string, diff []byte) File {
	f := File{Path: path}
	var buf bytes.Buffer
	next := 0
	inHunk := false
	sc := bufio.NewScanner(bytes.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "@@"):
			if m := reHunk.FindStringSubmatch(line); m != nil {
				next, _ = strconv.Atoi(m[1])
				inHunk = true
			}
		case !inHunk:
			// file headers
		case strings.HasPrefix(line, "diff --git"):
			inHunk = false
		case strings.HasPrefix(line, "+"):
			buf.WriteString(line[1:])
			buf.WriteByte('\n')
			f.Lines = append(f.Lines, next)
			next++
		}
	}
	f.Data = buf.Bytes()
	return f
}
