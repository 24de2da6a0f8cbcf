package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigUnavailable is wrapped by Load when the policy source is missing
// or unreadable and the default policy is used instead.
var ErrConfigUnavailable = errors.New("policy config unavailable")

// DefaultFile is the repo-local policy document name.
const DefaultFile = "devshield.policy.json"

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// LoadFile strictly reads a policy document. YAML is used for .yml/.yaml
// paths, JSON otherwise.
func LoadFile(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(b, &cfg)
	} else {
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load returns a usable policy. An empty path, a missing file or a corrupt
// document yields Default() together with an error wrapping
// ErrConfigUnavailable; callers that fail open may ignore it.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), fmt.Errorf("%w: no policy path", ErrConfigUnavailable)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	return cfg, nil
}

// Save overwrites path with cfg as a whole document.
func Save(path string, cfg Config) error {
	var (
		b   []byte
		err error
	)
	if isYAML(path) {
		b, err = yaml.Marshal(cfg)
	} else {
		b, err = json.MarshalIndent(cfg, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Reset writes the default policy to path.
func Reset(path string) error {
	return Save(path, Default())
}
