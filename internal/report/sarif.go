package report

import (
	"encoding/json"
	"io"

	"github.com/devshield/devshield/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Locations  []sarifLoc     `json:"locations"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func actionToLevel(a types.Action) string {
	switch a {
	case types.ActionBlock:
		return "error"
	case types.ActionWarn:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes results as SARIF 2.1.0. Secret types become rules in
// first-seen order.
func WriteSARIF(w io.Writer, results []types.Result, toolVersion string) error {
	return WriteSARIFWithStats(w, results, toolVersion, nil)
}

// WriteSARIFWithStats is WriteSARIF with run-level properties attached.
func WriteSARIFWithStats(w io.Writer, results []types.Result, toolVersion string, stats map[string]int) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           "devshield",
			Version:        toolVersion,
			InformationURI: "https://github.com/devshield/devshield",
			Rules:          []sarifRule{},
		}},
		Results: []sarifResult{},
	}
	index := map[string]int{}
	for _, r := range results {
		id := r.Finding.SecretType
		i, ok := index[id]
		if !ok {
			i = len(run.Tool.Driver.Rules)
			index[id] = i
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: id + " in source"}})
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    id,
			RuleIndex: i,
			Level:     actionToLevel(r.Decision.Action),
			Message:   sarifMessage{Text: r.Decision.Explanation},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: r.Finding.Path},
					Region:           sarifRegion{StartLine: r.Finding.Line, StartColumn: r.Finding.Column},
				},
			}},
			Properties: map[string]any{
				"riskScore": r.Decision.RiskScore,
				"action":    string(r.Decision.Action),
				"redacted":  r.Finding.Redacted,
			},
		})
	}
	if len(stats) > 0 {
		run.Properties = map[string]any{"scanStats": stats}
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
