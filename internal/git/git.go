// Package git reads the parts of a repository DevShield scans: staged index
// blobs, lines added relative to a base branch, and recent history.
package git

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// File is one piece of content to scan. When Lines is set, Lines[i] is the
// source line number of line i+1 of Data; otherwise line numbers are
// positions in Data.
type File struct {
	Path  string
	Data  []byte
	Lines []int
}

// SourceLine maps a 1-based line within Data to the line number in the
// original file.
func (f File) SourceLine(n int) int {
	if n >= 1 && n <= len(f.Lines) {
		return f.Lines[n-1]
	}
	return n
}

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

func open(root string) (*gogit.Repository, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(validRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}
	return repo, nil
}

// TopLevel returns the working tree root of the repository containing root.
func TopLevel(root string) (string, error) {
	repo, err := open(root)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned for anything that cannot be determined.
func RepoMetadata(root string) (string, string, string) {
	repo, err := open(root)
	if err != nil {
		return "", "", ""
	}
	name := ""
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		name = shortRepoName(remote.Config().URLs[0])
	}
	commit, branch := "", ""
	if head, err := repo.Head(); err == nil {
		commit = head.Hash().String()
		if head.Name().IsBranch() {
			branch = head.Name().Short()
		} else {
			branch = "HEAD"
		}
	}
	return name, commit, branch
}

// shortRepoName keeps owner/name of a remote URL when possible.
func shortRepoName(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "github.com/"); i >= 0 {
		return s[i+len("github.com/"):]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "//") {
		return s[i+1:]
	}
	return s
}

func readAll(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}
