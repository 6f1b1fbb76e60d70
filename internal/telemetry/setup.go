package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs global tracer and meter providers that report to log.
// Recorders created afterward with New use them.
// Finished spans are logged at debug level. The returned shutdown function
// logs the totals of every counter, then shuts down both providers and
// restores the previous global providers.
func Setup(log logrus.FieldLogger) (shutdown func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(&logExporter{log: log}),
	)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			log.WithError(err).Warn("collect metrics")
		} else {
			logTotals(log, &rm)
		}
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
}

// logTotals logs the sum of each integer counter.
func logTotals(log logrus.FieldLogger, rm *metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				fields := logrus.Fields{"metric": m.Name, "value": dp.Value}
				for _, kv := range dp.Attributes.ToSlice() {
					fields[string(kv.Key)] = kv.Value.Emit()
				}
				log.WithFields(fields).Info("metric total")
			}
		}
	}
}

// logExporter writes finished spans to a logger.
type logExporter struct {
	log logrus.FieldLogger
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := logrus.Fields{
			"span":     s.Name(),
			"trace_id": s.SpanContext().TraceID().String(),
			"span_id":  s.SpanContext().SpanID().String(),
			"duration": s.EndTime().Sub(s.StartTime()).String(),
			"status":   s.Status().Code.String(),
		}
		for _, kv := range s.Attributes() {
			fields[string(kv.Key)] = kv.Value.Emit()
		}
		e.log.WithFields(fields).Debug("span")
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *logExporter) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("shutdown span exporter: %w", err)
	}
	return nil
}

var _ sdktrace.SpanExporter = (*logExporter)(nil)
