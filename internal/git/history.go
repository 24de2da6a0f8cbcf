package git

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// Entry is one commit and the content of the files it added or changed.
type Entry struct {
	Hash  string
	Files []File
}

// LastNCommits walks back n commits from HEAD and returns each commit's
// changed files at that commit.
func LastNCommits(root string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	repo, err := open(root)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	c, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for i := 0; i < n && c != nil; i++ {
		files, err := changedFiles(c)
		if err != nil {
			return entries, fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		entries = append(entries, Entry{Hash: c.Hash.String(), Files: files})
		parent, err := c.Parent(0)
		if errors.Is(err, object.ErrParentNotFound) {
			break
		}
		if err != nil {
			return entries, err
		}
		c = parent
	}
	return entries, nil
}

func changedFiles(c *object.Commit) ([]File, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		p, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = p.Tree(); err != nil {
			return nil, err
		}
	}
	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, err
	}
	var out []File
	for _, ch := range changes {
		_, to, err := ch.Files()
		if err != nil || to == nil {
			continue
		}
		r, err := to.Reader()
		if err != nil {
			continue
		}
		b, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			continue
		}
		out = append(out, File{Path: ch.To.Name, Data: b})
	}
	return out, nil
}
