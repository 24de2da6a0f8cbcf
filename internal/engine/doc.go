// Package engine contains the batch scanning logic for DevShield. It selects
// target files, runs the line matcher on a bounded worker pool, and evaluates
// every finding into a decision. This package is internal; external consumers
// should use the stable facade in pkg/core.
package engine
