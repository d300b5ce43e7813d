// Package cli implements the mdtouml command line.
//
// Commands:
//   - generate: extract, convert and render one diagram, writing the PNG and
//     its HTML viewer
//   - convert: print the PlantUML text (and optionally the image URL)
//   - render: render a hand-written PlantUML file as it is
//   - list: table of the Mermaid blocks in a document
//   - decode: turn a PlantUML URL token back into text
//   - batch: render every entry of a TOML job file
//
// Diagnostics go to stderr through a charmbracelet/log logger carried on the
// command context; --verbose lowers its level to debug. Status lines for
// humans go to the command's stdout.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// sub-second timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs how long a multi-diagram operation took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered 3 of 3 diagrams (1.234s)".
func (s stopwatch) done(msg string) {
	s.logger.Infof("%s (%s)", msg, time.Since(s.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
