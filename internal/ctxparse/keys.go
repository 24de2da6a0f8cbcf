// Package ctxparse recovers the key a value is stored under in structured
// config files, so findings in JSON and YAML documents can be scored with
// the name of the setting that holds them.
package ctxparse

import (
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Field is a scalar value with its dotted key path and 1-based line.
type Field struct {
	Key   string
	Value string
	Line  int
}

// Structured reports whether path names a JSON or YAML document.
func Structured(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yml", ".yaml":
		return true
	}
	return false
}

// Fields flattens every scalar of a JSON or YAML document. yaml.v3 parses
// JSON as well and keeps node positions. Undecodable input yields nil.
func Fields(b []byte) []Field {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil
	}
	var out []Field
	var walk func(n *yaml.Node, path []string)
	walk = func(n *yaml.Node, path []string) {
		switch n.Kind {
		case yaml.DocumentNode, yaml.SequenceNode:
			for _, c := range n.Content {
				walk(c, path)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				walk(n.Content[i+1], append(path[:len(path):len(path)], n.Content[i].Value))
			}
		case yaml.ScalarNode:
			if len(path) > 0 {
				out = append(out, Field{Key: strings.Join(path, "."), Value: n.Value, Line: n.Line})
			}
		}
	}
	walk(&root, nil)
	return out
}

// KeysByLine maps each line holding a scalar to its key path. When several
// scalars share a line the first one wins.
func KeysByLine(path string, b []byte) map[int]string {
	if !Structured(path) {
		return nil
	}
	fields := Fields(b)
	if len(fields) == 0 {
		return nil
	}
	out := make(map[int]string, len(fields))
	for _, f := range fields {
		if _, ok := out[f.Line]; !ok {
			out[f.Line] = f.Key
		}
	}
	return out
}
