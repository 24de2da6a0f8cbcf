package policy

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the persisted policy document.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&Config{})
	s.Title = "DevShield policy"
	return json.MarshalIndent(s, "", "  ")
}
