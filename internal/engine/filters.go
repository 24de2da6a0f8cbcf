package engine

import (
	"path"
	"strings"
)

var defaultExcludeDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"coverage":     true,
	"bin":          true,
	"obj":          true,
}

// noisy or non-text artifacts skipped when default excludes are enabled
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map", ".lock",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so",
	".wasm", ".pyc",
	".pb.go", ".gen.go",
}

var defaultExcludeFileNames = map[string]bool{
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	".ds_store":         true,
}

// stateFiles are written by devshield itself next to the scanned tree when
// there is no .git directory. They are never scanned.
var stateFiles = map[string]bool{
	".devshield_audit.jsonl":    true,
	".devshield_last_scan.json": true,
	".devshieldcache.json":      true,
	"devshield.baseline.json":   true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

func isStateFile(rel string) bool {
	return stateFiles[path.Base(rel)]
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	if strings.Contains(lowerRel, ".gen.") {
		return true
	}
	return defaultExcludeFileNames[path.Base(lowerRel)]
}
