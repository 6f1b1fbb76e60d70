package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Noop is a Recorder that does nothing.
type Noop struct{}

// Compile-time interface checks.
var (
	_ Recorder = Noop{}
	_ Recorder = (*otelRecorder)(nil)
)

var noopSpan = noop.Span{}

// StartEval returns the context unchanged and a no-op span.
func (Noop) StartEval(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndEval does nothing.
func (Noop) EndEval(context.Context, trace.Span, float64, error) {}
