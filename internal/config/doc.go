// Package config loads DevShield configuration from local and global YAML
// files. Every field is a pointer so the CLI can tell "unset" from a zero
// value and apply precedence: flags, then the repo-local file, then the
// global file.
package config
