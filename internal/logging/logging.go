// Package logging configures the logrus logger used by the calculator.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/zephyrtronium/calc/internal/config"
)

// Field keys.
const (
	TraceKey = "trace_id"
	SpanKey  = "span_id"
)

// New creates a logger from c. The returned cleanup function closes the log
// file, if one was opened.
func New(c *config.Log) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	var f *os.File
	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		if c.OutputFile == "" {
			return nil, nil, fmt.Errorf("log output is file but no output_file is set")
		}
		if err := os.MkdirAll(filepath.Dir(c.OutputFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err = os.OpenFile(c.OutputFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		l.SetOutput(f)
	case "none":
		l.SetOutput(io.Discard)
	default:
		l.SetOutput(os.Stderr)
	}

	return l, func() {
		if f != nil {
			_ = f.Close()
		}
	}, nil
}

// Discard returns a logger that writes nothing.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Entry returns a log entry carrying the trace and span IDs of the span in
// ctx, if there is one.
func Entry(ctx context.Context, l logrus.FieldLogger) *logrus.Entry {
	fields := logrus.Fields{}
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		fields[TraceKey] = sc.TraceID().String()
	}
	if sc.HasSpanID() {
		fields[SpanKey] = sc.SpanID().String()
	}
	return l.WithFields(fields)
}
