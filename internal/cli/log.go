// Package cli implements the nugraph command-line interface.
//
// The root command draws the dependency graph of a package identity, a
// project file or a directory, and either opens it in an online viewer or
// writes it to a file. Flags override the configuration file loaded from
// config.toml, which overrides the built-in defaults.
//
// # Commands
//
//   - nugraph [SOURCE]: draw a dependency graph
//   - serve: expose the pipeline as a JSON HTTP API
//   - decode: print the diagram text encoded in a viewer URL
//   - cache: clear or locate the registry and SDK framework cache
//
// # Output
//
// Stdout carries only URLs, decoded diagrams and command data. Status lines,
// spinners and logs go to stderr. Logging defaults to warn; --log without a
// value and --verbose switch to debug.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          appName,
	})
}

// progress logs an operation's completion with its elapsed time.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Drew 12 packages with 14 dependencies (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
