package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName names the global config directory.
const AppName = "devshield"

// LocalNames are the repo-local config files, in search order.
var LocalNames = []string{".devshield.yml", ".devshield.yaml", "devshield.yml", "devshield.yaml"}

// ErrNotFound is returned when no config file exists at the searched places.
var ErrNotFound = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape for DevShield.
type FileConfig struct {
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	MaxBytes        *int64  `yaml:"max_bytes"`
	Threads         *int    `yaml:"threads"`
	History         *int    `yaml:"history"`
	Policy          *string `yaml:"policy"`
	FailOn          *string `yaml:"fail_on"`
	Language        *string `yaml:"language"`
	NoColor         *bool   `yaml:"no_color"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	AuditDB         *string `yaml:"audit_db"`

	Scorer *ScorerConfig `yaml:"scorer"`
}

// ScorerConfig selects and configures the risk scorer. API keys are read
// from the environment only.
type ScorerConfig struct {
	// Mode is "local" or "remote". Empty means local.
	Mode       *string `yaml:"mode"`
	Endpoint   *string `yaml:"endpoint"`
	Deployment *string `yaml:"deployment"`
	// Timeout is a Go duration string such as "10s".
	Timeout *string `yaml:"timeout"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// GlobalPath returns the global config location under the XDG base
// directory or ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, AppName, "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNotFound
	}
	return LoadFile(p)
}

// Validate rejects values the CLI could not act on.
func (fc FileConfig) Validate() error {
	if fc.FailOn != nil {
		switch *fc.FailOn {
		case "block", "warn", "never":
		default:
			return fmt.Errorf("fail_on: unknown value %q (want block, warn or never)", *fc.FailOn)
		}
	}
	if fc.Threads != nil && *fc.Threads < 0 {
		return fmt.Errorf("threads: must not be negative")
	}
	if fc.Scorer != nil {
		if fc.Scorer.Mode != nil && *fc.Scorer.Mode != "local" && *fc.Scorer.Mode != "remote" {
			return fmt.Errorf("scorer.mode: unknown value %q (want local or remote)", *fc.Scorer.Mode)
		}
		if _, err := fc.Scorer.TimeoutDuration(); err != nil {
			return fmt.Errorf("scorer.timeout: %w", err)
		}
	}
	return nil
}

// GetScorer returns the scorer section, never nil.
func (fc FileConfig) GetScorer() ScorerConfig {
	if fc.Scorer == nil {
		return ScorerConfig{}
	}
	return *fc.Scorer
}

// IsRemote reports whether the remote scorer is selected.
func (sc ScorerConfig) IsRemote() bool {
	return sc.Mode != nil && *sc.Mode == "remote"
}

// GetEndpoint returns the endpoint or empty string.
func (sc ScorerConfig) GetEndpoint() string {
	if sc.Endpoint == nil {
		return ""
	}
	return *sc.Endpoint
}

// GetDeployment returns the deployment name or empty string.
func (sc ScorerConfig) GetDeployment() string {
	if sc.Deployment == nil {
		return ""
	}
	return *sc.Deployment
}

// TimeoutDuration parses Timeout. Unset yields zero.
func (sc ScorerConfig) TimeoutDuration() (time.Duration, error) {
	if sc.Timeout == nil || *sc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*sc.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

// Template is written by `devshield config init`.
const Template = `# DevShield configuration
# include: "**/*.go,**/*.env"
# exclude: "testdata/**"
max_bytes: 1048576
threads: 0
default_excludes: true
policy: devshield.policy.json
fail_on: block
language: en
# audit_db: .git/devshield_audit.db
scorer:
  mode: local
  # endpoint: https://example.openai.azure.com
  # deployment: gpt-4
  timeout: 10s
`
