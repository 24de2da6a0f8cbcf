// Package logging configures the logrus logger shared by the CLI, the scan
// engine and the remote scorer.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Options selects the logger format and verbosity.
type Options struct {
	Level string
	JSON  bool
	Out   io.Writer
}

// New builds a logger writing to opts.Out. An empty level means "warn".
func New(opts Options) (*log.Logger, error) {
	l := log.New()
	if opts.Out != nil {
		l.SetOutput(opts.Out)
	}
	lvl := opts.Level
	if lvl == "" {
		lvl = "warn"
	}
	parsed, err := log.ParseLevel(lvl)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(parsed)
	if opts.JSON {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
