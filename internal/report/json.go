package report

import (
	"encoding/json"
	"io"

	"github.com/devshield/devshield/internal/types"
)

// Document is the JSON output shape.
type Document struct {
	Results      []types.Result `json:"results"`
	FilesScanned int            `json:"files_scanned"`
	FileErrors   []string       `json:"file_errors,omitempty"`
	Summary      map[string]int `json:"summary"`
}

// WriteJSON writes results as an indented Document. errs are rendered as
// their messages.
func WriteJSON(w io.Writer, results []types.Result, filesScanned int, errs []error) error {
	doc := Document{
		Results:      results,
		FilesScanned: filesScanned,
		Summary:      map[string]int{},
	}
	if doc.Results == nil {
		doc.Results = []types.Result{}
	}
	for a, n := range CountActions(results) {
		doc.Summary[string(a)] = n
	}
	for _, err := range errs {
		doc.FileErrors = append(doc.FileErrors, err.Error())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteDecision writes the final decision document for one candidate.
func WriteDecision(w io.Writer, d types.Decision) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
