// Package report renders evaluated results as a table, plain text, JSON,
// SARIF or HTML, and manages the findings baseline. Only redacted values are
// ever written.
package report
