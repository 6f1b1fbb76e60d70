// Package telemetry traces and counts expression evaluations with
// OpenTelemetry.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zephyrtronium/calc"
)

// Attribute keys.
const (
	ExpressionKey = attribute.Key("calc.expression")
	ResultKey     = attribute.Key("calc.result")
	CategoryKey   = attribute.Key("calc.error.category")
)

// Metric names.
const (
	EvaluationsMetric = "calc.evaluations"
	ErrorsMetric      = "calc.errors"
	LatencyMetric     = "calc.evaluation.latency_ms"
)

// Recorder observes evaluations.
// Use New for OTel telemetry or Noop when disabled.
type Recorder interface {
	// StartEval starts a span for evaluating expr.
	StartEval(ctx context.Context, expr string) (context.Context, trace.Span)

	// EndEval completes the span, recording the outcome of the evaluation.
	EndEval(ctx context.Context, span trace.Span, result float64, err error)
}

type otelRecorder struct {
	tracer      trace.Tracer
	evaluations metric.Int64Counter
	errors      metric.Int64Counter
	latency     metric.Float64Histogram
}

type startKey struct{}

// New returns a Recorder using the global OTel tracer and meter providers as
// they are when New is called.
func New() (Recorder, error) {
	return newOtelRecorder()
}

func newOtelRecorder() (*otelRecorder, error) {
	meter := otel.Meter("calc")

	evaluations, err := meter.Int64Counter(EvaluationsMetric,
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(ErrorsMetric,
		metric.WithDescription("Number of failed evaluations by error category"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(LatencyMetric,
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelRecorder{
		tracer:      otel.Tracer("calc"),
		evaluations: evaluations,
		errors:      errs,
		latency:     latency,
	}, nil
}

// StartEval implements Recorder.
func (r *otelRecorder) StartEval(ctx context.Context, expr string) (context.Context, trace.Span) {
	ctx, span := r.tracer.Start(ctx, "calc.evaluate",
		trace.WithAttributes(ExpressionKey.String(expr)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return context.WithValue(ctx, startKey{}, time.Now()), span
}

// EndEval implements Recorder. ctx must be the context returned by StartEval
// for latency to be recorded.
func (r *otelRecorder) EndEval(ctx context.Context, span trace.Span, result float64, err error) {
	if span == nil {
		return
	}
	r.evaluations.Add(ctx, 1)
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		r.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000)
	}
	if err != nil {
		cat := calc.Category(err).String()
		r.errors.Add(ctx, 1, metric.WithAttributes(CategoryKey.String(cat)))
		span.SetAttributes(CategoryKey.String(cat))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(ResultKey.Float64(result))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
