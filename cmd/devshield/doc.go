// Package devshield implements the DevShield command line interface.
//
// The root command wires subcommands for scanning the working tree, staged
// changes, a base-branch diff or recent history, for guarding commits from a
// git pre-commit hook, for assessing a single candidate secret and for
// managing the policy document. Output formats include a table, plain text,
// JSON, SARIF 2.1.0 and HTML; only redacted values are ever printed.
//
// Exit codes: 0 on success, 1 when the fail-on gate trips (or the hook blocks
// a commit), 2 on errors.
package devshield
