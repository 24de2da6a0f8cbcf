package git

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// StagedFiles returns the index content of every file added, modified,
// renamed or copied in the staging area. Paths are relative to the
// repository root.
func StagedFiles(root string) ([]File, error) {
	repo, err := open(root)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var paths []string
	for p, st := range status {
		switch st.Staging {
		case gogit.Added, gogit.Modified, gogit.Renamed, gogit.Copied:
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	out := make([]File, 0, len(paths))
	for _, p := range paths {
		e, err := idx.Entry(p)
		if err != nil {
			continue
		}
		blob, err := repo.BlobObject(e.Hash)
		if err != nil {
			return nil, fmt.Errorf("read staged blob %s: %w", p, err)
		}
		r, err := blob.Reader()
		if err != nil {
			return nil, fmt.Errorf("read staged blob %s: %w", p, err)
		}
		b, err := readAll(r)
		if err != nil {
			return nil, fmt.Errorf("read staged blob %s: %w", p, err)
		}
		out = append(out, File{Path: p, Data: b})
	}
	return out, nil
}
