// Package cli implements the stackweight command-line interface.
//
// The CLI is built with cobra. Every command that weighs a graph goes through
// a pipeline.Runner backed by the on-disk result cache, so re-running an
// unchanged graph with the same options is a cache read.
//
// # Commands
//
//   - weigh: Assign weights to a node-link graph and write the edge table
//   - validate: Check any weighted edge table against the per-parent budget
//   - render: Draw the weighted graph as DOT, SVG, PNG or PDF
//   - export pairwise: Write the payloads of a pairwise-comparison frontend
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Configuration
//
// Flags take precedence over STACKWEIGHT_* environment variables (a .env
// file in the working directory is loaded first), which take precedence over
// the TOML config file. See [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing timestamped lines ("14:32:01.45") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// LevelFor maps the --verbose flag to a log level.
func LevelFor(verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return LogInfo
}

// progress times one command over one input file.
type progress struct {
	logger *log.Logger
	input  string
	start  time.Time
}

func newProgress(l *log.Logger, input string) *progress {
	return &progress{logger: l, input: input, start: time.Now()}
}

// done logs "<verb> <input>" with the elapsed time, rounded to the
// millisecond, followed by keyvals.
func (p *progress) done(verb string, keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(verb+" "+p.input, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx, prefixed with command when it is set.
func withLogger(ctx context.Context, l *log.Logger, command string) context.Context {
	if command != "" {
		l = l.WithPrefix(command)
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
