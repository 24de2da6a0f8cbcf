package devshield

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/devshield/devshield/internal/config"
	"github.com/devshield/devshield/internal/decision"
	"github.com/devshield/devshield/internal/logging"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/risk"
)

// fileConfigs holds the local and global config files. Missing files leave
// the zero value.
type fileConfigs struct {
	local  config.FileConfig
	global config.FileConfig
}

func loadConfigs(root string, log logrus.FieldLogger) (fileConfigs, error) {
	var fc fileConfigs
	if _, err := config.GlobalPath(); err == nil {
		g, err := config.LoadGlobal()
		switch {
		case err == nil:
			fc.global = g
		case !errors.Is(err, config.ErrNotFound):
			return fc, fmt.Errorf("global config: %w", err)
		}
	}
	l, err := config.LoadLocal(root)
	switch {
	case err == nil:
		fc.local = l
	case !errors.Is(err, config.ErrNotFound):
		return fc, fmt.Errorf("local config: %w", err)
	}
	log.WithField("root", root).Debug("configuration loaded")
	return fc, nil
}

func (fc fileConfigs) scorer() config.ScorerConfig {
	if fc.local.Scorer != nil {
		return *fc.local.Scorer
	}
	return fc.global.GetScorer()
}

func newLogger() (*logrus.Logger, error) {
	return logging.New(logging.Options{Level: flagLogLevel, JSON: flagLogJSON, Out: os.Stderr})
}

// policyPath resolves the policy document: --policy, then config, then the
// repo-local default file.
func policyPath(root string, fc fileConfigs) string {
	p := pickString(flagPolicy, fc.local.Policy, fc.global.Policy)
	if p == "" {
		return filepath.Join(root, policy.DefaultFile)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}

// loadPolicy loads the policy for root. Unavailable policies fall back to the
// default unless --strict-policy is set.
func loadPolicy(root string, fc fileConfigs, log logrus.FieldLogger) (policy.Config, error) {
	path := policyPath(root, fc)
	cfg, err := policy.Load(path)
	if err == nil {
		if verr := policy.Validate(cfg); verr != nil {
			log.WithError(verr).Warn("policy lists overlap; block takes precedence")
		}
		return cfg, nil
	}
	if flagStrictPolicy {
		return cfg, err
	}
	log.WithError(err).WithField("path", path).Info("using default policy")
	return cfg, nil
}

// newScorer selects the local or remote scorer from configuration.
func newScorer(fc fileConfigs, log logrus.FieldLogger) (risk.Scorer, error) {
	sc := fc.scorer()
	if !sc.IsRemote() {
		return risk.Local{}, nil
	}
	timeout, err := sc.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	r := risk.NewRemote(risk.RemoteOptions{
		Endpoint:   sc.GetEndpoint(),
		Deployment: sc.GetDeployment(),
		Timeout:    timeout,
		Logger:     log,
	})
	if !r.Configured() {
		log.Warn("remote scorer is not fully configured; assessments will be degraded")
	}
	return r, nil
}

func newEvaluator(root string, fc fileConfigs, log logrus.FieldLogger) (decision.Evaluator, error) {
	pol, err := loadPolicy(root, fc, log)
	if err != nil {
		return decision.Evaluator{}, err
	}
	sc, err := newScorer(fc, log)
	if err != nil {
		return decision.Evaluator{}, err
	}
	return decision.Evaluator{Scorer: sc, Policy: &pol}, nil
}

// noColor reports whether w should receive plain output.
func noColor(w io.Writer, fc fileConfigs) bool {
	if pickBool(flagNoColor, fc.local.NoColor, fc.global.NoColor) || os.Getenv("NO_COLOR") != "" {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
