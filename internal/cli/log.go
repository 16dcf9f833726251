// Package cli implements the lpm command-line interface.
//
// Most commands open the project directory (--dir, by default the working
// directory), wire a pipeline.Runner with the npm, git and registry clients
// the user configuration names, and print what the operation did. Commands
// lpm does not know are handed to npm.
//
// # Commands
//
// The main commands are:
//   - install, uninstall: Fetch or remove packages, then place and deploy them
//   - sync, deploy: Place or deploy what is already installed
//   - resolve, graph: Show the resolved dependency set
//   - init, configure, status, type: Set up and inspect a directory
//   - cache, config: Manage the registry cache and the user configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps read like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took once it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Installed 3 packages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
