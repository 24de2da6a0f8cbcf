package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/devshield/devshield/internal/types"
)

// BaselineFile is the default baseline location relative to the repo root.
const BaselineFile = "devshield.baseline.json"

// Baseline holds accepted findings keyed by path, secret type and a digest
// of the secret value.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads path. A missing file yields an empty baseline and the
// read error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline writes every result's key to path.
func SaveBaseline(path string, results []types.Result) error {
	b := Baseline{Items: map[string]bool{}}
	for _, r := range results {
		b.Items[Key(r.Finding)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// FilterNew drops results present in base.
func FilterNew(results []types.Result, base Baseline) []types.Result {
	var out []types.Result
	for _, r := range results {
		if !base.Items[Key(r.Finding)] {
			out = append(out, r)
		}
	}
	return out
}

// Key identifies a finding without storing the secret.
func Key(f types.Finding) string {
	sum := sha256.Sum256([]byte(f.Secret))
	return f.Path + "|" + f.SecretType + "|" + hex.EncodeToString(sum[:])
}
