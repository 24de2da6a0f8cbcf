package engine

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/devshield/devshield/internal/detectors"
	"github.com/devshield/devshield/internal/git"
	"github.com/devshield/devshield/internal/ignore"
)

// target is one unit of work. data is set for git-sourced content; working
// tree files are read lazily by workers from abs.
type target struct {
	rel     string
	abs     string
	data    []byte
	lineMap func(int) int
}

// collectTargets selects what to scan. Modes are exclusive and checked in
// order: staged, base branch, history, explicit paths, working tree.
func collectTargets(ctx context.Context, cfg Config, ign ignore.Matcher) ([]target, []error, error) {
	keep := func(rel string, size int64) bool {
		if isStateFile(rel) || !allowedByGlobs(rel, cfg) || ign.Match(filepath.ToSlash(rel)) {
			return false
		}
		if cfg.MaxBytes > 0 && size > cfg.MaxBytes {
			return false
		}
		return !(cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(filepath.ToSlash(rel))))
	}

	switch {
	case cfg.ScanStaged:
		files, err := git.StagedFiles(cfg.Root)
		if err != nil {
			return nil, nil, err
		}
		return fromGitFiles(files, keep), nil, nil
	case cfg.BaseBranch != "":
		files, err := git.DiffAgainst(ctx, cfg.Root, cfg.BaseBranch)
		if err != nil {
			return nil, nil, err
		}
		return fromGitFiles(files, keep), nil, nil
	case cfg.HistoryCommits > 0:
		entries, err := git.LastNCommits(cfg.Root, cfg.HistoryCommits)
		if err != nil {
			return nil, nil, err
		}
		var out []target
		for _, e := range entries {
			out = append(out, fromGitFiles(e.Files, keep)...)
		}
		return out, nil, nil
	case len(cfg.Paths) > 0:
		return explicitTargets(ctx, cfg, keep)
	}
	var out []target
	errs, err := Walk(ctx, cfg, ign, func(rel, abs string) {
		out = append(out, target{rel: rel, abs: abs})
	})
	return out, errs, err
}

func fromGitFiles(files []git.File, keep func(string, int64) bool) []target {
	out := make([]target, 0, len(files))
	for _, f := range files {
		if !keep(f.Path, int64(len(f.Data))) {
			continue
		}
		t := target{rel: f.Path, data: f.Data}
		if t.data == nil {
			t.data = []byte{}
		}
		if len(f.Lines) > 0 {
			t.lineMap = f.SourceLine
		}
		out = append(out, t)
	}
	return out
}

// explicitTargets resolves user-named paths. Directories are walked; a path
// that cannot be stat'ed is reported as a SourceError and skipped.
func explicitTargets(ctx context.Context, cfg Config, keep func(string, int64) bool) ([]target, []error, error) {
	var out []target
	var errs []error
	for _, p := range cfg.Paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		abs := p
		if !filepath.IsAbs(p) {
			abs = filepath.Join(cfg.Root, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			errs = append(errs, &detectors.SourceError{Path: p, Err: err})
			continue
		}
		if info.IsDir() {
			sub := cfg
			sub.Root = abs
			walkErrs, err := Walk(ctx, sub, ignore.Matcher{}, func(rel, fileAbs string) {
				out = append(out, target{rel: relTo(cfg.Root, fileAbs), abs: fileAbs})
			})
			if err != nil {
				return nil, nil, err
			}
			for _, we := range walkErrs {
				var se *detectors.SourceError
				if errors.As(we, &se) {
					se.Path = relTo(cfg.Root, filepath.Join(abs, filepath.FromSlash(se.Path)))
				}
				errs = append(errs, we)
			}
			continue
		}
		rel := relTo(cfg.Root, abs)
		if keep(rel, info.Size()) {
			out = append(out, target{rel: rel, abs: abs})
		}
	}
	return out, errs, nil
}

func relTo(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Walk traverses the working tree under cfg.Root and invokes handle with the
// slash-separated relative path and absolute path of each eligible file.
// Paths that cannot be read are returned as *detectors.SourceError values and
// the walk continues past them.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(rel, abs string)) ([]error, error) {
	var errs []error
	err := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, &detectors.SourceError{Path: relTo(cfg.Root, p), Err: err})
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			name := d.Name()
			if p != cfg.Root && (name == ".git" || (cfg.DefaultExcludes && isDefaultDirExcluded(name))) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if isStateFile(rel) || !allowedByGlobs(rel, cfg) || ign.Match(rel) {
			return nil
		}
		if info, _ := d.Info(); info != nil && cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		handle(rel, p)
		return nil
	})
	return errs, err
}

// CountTargets returns the number of files a scan with cfg would visit.
func CountTargets(ctx context.Context, cfg Config) (int, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	ign, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	targets, _, err := collectTargets(ctx, cfg, ign)
	if err != nil {
		return 0, err
	}
	return len(targets), nil
}

func readFile(p string) ([]byte, error) {
	return os.ReadFile(p)
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}

// looksNonTextMIME uses the file extension and a short header sniff to skip
// images, media and archives.
func looksNonTextMIME(path string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	if len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4 {
		return true
	}
	return false
}

func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	if includes := parseGlobsList(cfg.IncludeGlobs); len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if excludes := parseGlobsList(cfg.ExcludeGlobs); len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := filepath.Base(pathToMatch)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
