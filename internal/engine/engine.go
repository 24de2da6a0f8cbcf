package engine

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/devshield/devshield/internal/cache"
	"github.com/devshield/devshield/internal/ctxparse"
	"github.com/devshield/devshield/internal/decision"
	"github.com/devshield/devshield/internal/detectors"
	"github.com/devshield/devshield/internal/ignore"
	"github.com/devshield/devshield/internal/logging"
	"github.com/devshield/devshield/internal/types"
)

// Config controls scanning scope, performance and filters.
type Config struct {
	Root            string
	Paths           []string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	ScanStaged      bool
	BaseBranch      string
	HistoryCommits  int
	Threads         int
	DefaultExcludes bool
	NoCache         bool
	// Evaluator decides on every finding; its zero value uses the local
	// scorer and the built-in default policy.
	Evaluator       decision.Evaluator
	Logger          logrus.FieldLogger
	Progress        func()
}

// Result contains the evaluated findings and scan statistics.
type Result struct {
	Results      []types.Result
	FilesScanned int
	FilesCached  int
	// FileErrors holds a *detectors.SourceError for every path that could
	// not be read. The scan continues past them.
	FileErrors []error
	Duration   time.Duration
}

// Findings returns the raw findings of r in result order.
func (r Result) Findings() []types.Finding {
	out := make([]types.Finding, len(r.Results))
	for i := range r.Results {
		out[i] = r.Results[i].Finding
	}
	return out
}

// Decisions returns the final decisions of r in result order.
func (r Result) Decisions() []types.Decision {
	out := make([]types.Decision, len(r.Results))
	for i := range r.Results {
		out[i] = r.Results[i].Decision
	}
	return out
}

// Scan runs a scan and returns only the evaluated findings.
func Scan(ctx context.Context, cfg Config) ([]types.Result, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}

type fileOutcome struct {
	results []types.Result
	err     error
	scanned bool
	cached  bool
	hash    string
	path    string
}

// ScanWithStats runs a scan and returns results along with timing and counts.
// Target selection fails fast; per-file read failures do not.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	started := time.Now()

	ign, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	targets, walkErrs, err := collectTargets(ctx, cfg, ign)
	if err != nil {
		return result, err
	}
	for _, e := range walkErrs {
		cfg.Logger.WithError(e).Warn("skipping unreadable path")
	}
	result.FileErrors = append(result.FileErrors, walkErrs...)

	useCache := !cfg.NoCache && workingTreeMode(cfg)
	db := cache.DB{Entries: map[string]string{}}
	if useCache {
		db, _ = cache.Load(cfg.Root)
	}

	outcomes := make([]fileOutcome, len(targets))
	jobs := make(chan int)
	done := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = scanTarget(ctx, cfg, targets[i], db.Entries, useCache)
				done <- i
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range targets {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(done)
	}()
	for range done {
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("scan interrupted: %w", err)
	}

	updated := false
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			cfg.Logger.WithError(o.err).Warn("skipping unreadable file")
			result.FileErrors = append(result.FileErrors, o.err)
			continue
		case o.cached:
			result.FilesCached++
			continue
		case !o.scanned:
			continue
		}
		result.FilesScanned++
		result.Results = append(result.Results, o.results...)
		if useCache {
			if len(o.results) == 0 {
				db.Entries[o.path] = o.hash
			} else {
				delete(db.Entries, o.path)
			}
			updated = true
		}
	}
	if useCache && updated {
		if err := cache.Save(cfg.Root, db); err != nil {
			cfg.Logger.WithError(err).Debug("cache not saved")
		}
	}
	result.Duration = time.Since(started)
	cfg.Logger.WithFields(logrus.Fields{
		"files":    result.FilesScanned,
		"cached":   result.FilesCached,
		"findings": len(result.Results),
		"errors":   len(result.FileErrors),
	}).Info("scan complete")
	return result, nil
}

// scanTarget reads, filters and scans one target. It is called from worker
// goroutines; entries is only read.
func scanTarget(ctx context.Context, cfg Config, t target, entries map[string]string, useCache bool) fileOutcome {
	o := fileOutcome{path: t.rel}
	data := t.data
	if data == nil {
		b, err := readFile(t.abs)
		if err != nil {
			o.err = &detectors.SourceError{Path: t.rel, Err: err}
			return o
		}
		data = b
	}
	if cfg.MaxBytes > 0 && int64(len(data)) > cfg.MaxBytes {
		return o
	}
	if looksBinary(data) || looksNonTextMIME(t.rel, data) {
		return o
	}
	o.hash = fastHash(data)
	if useCache && entries[t.rel] == o.hash {
		o.cached = true
		return o
	}
	o.scanned = true
	findings := detectors.ScanData(t.rel, data)
	if len(findings) == 0 {
		return o
	}
	lines := splitLines(data)
	// diff fragments are not whole documents
	var keys map[int]string
	if t.lineMap == nil {
		keys = ctxparse.KeysByLine(t.rel, data)
	}
	o.results = make([]types.Result, 0, len(findings))
	for _, f := range findings {
		line := ""
		if f.Line >= 1 && f.Line <= len(lines) {
			line = string(lines[f.Line-1])
		}
		key := keys[f.Line]
		if t.lineMap != nil {
			f.Line = t.lineMap(f.Line)
		}
		m := decision.MetadataFromFinding(f, line)
		if m.VariableName == "" {
			m.VariableName = key
		}
		o.results = append(o.results, cfg.Evaluator.EvaluateWithMetadata(ctx, f, m))
	}
	return o
}

func splitLines(data []byte) [][]byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, l := range lines {
		lines[i] = bytes.TrimSuffix(l, []byte("\r"))
	}
	return lines
}

func workingTreeMode(cfg Config) bool {
	return !cfg.ScanStaged && cfg.BaseBranch == "" && cfg.HistoryCommits == 0
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
