package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records taskcomm metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPut records a queue insert ("put" or "put_front") with the
	// time spent blocked and whether the item was accepted.
	RecordPut(ctx context.Context, queue, op string, waited time.Duration, ok bool)

	// RecordGet records a queue removal ("get" or "peek") with the time
	// spent blocked and whether an item was delivered.
	RecordGet(ctx context.Context, queue, op string, waited time.Duration, ok bool)

	// RecordDepth records a queue's occupancy after an operation.
	RecordDepth(ctx context.Context, queue string, depth, highWater int64)

	// RecordShareWrite records a write to a share.
	RecordShareWrite(ctx context.Context, share string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	queuePuts   metric.Int64Counter
	queueGets   metric.Int64Counter
	queueWait   metric.Float64Histogram
	queueDepth  metric.Int64Histogram
	shareWrites metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("taskcomm")

	queuePuts, err := meter.Int64Counter("taskcomm.queue.puts",
		metric.WithDescription("Number of queue put attempts"),
	)
	if err != nil {
		return nil, err
	}

	queueGets, err := meter.Int64Counter("taskcomm.queue.gets",
		metric.WithDescription("Number of queue get/peek attempts"),
	)
	if err != nil {
		return nil, err
	}

	queueWait, err := meter.Float64Histogram("taskcomm.queue.wait_ms",
		metric.WithDescription("Time spent blocked on queue operations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Histogram("taskcomm.queue.depth",
		metric.WithDescription("Queue occupancy observed after operations"),
	)
	if err != nil {
		return nil, err
	}

	shareWrites, err := meter.Int64Counter("taskcomm.share.writes",
		metric.WithDescription("Number of share writes"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		queuePuts:   queuePuts,
		queueGets:   queueGets,
		queueWait:   queueWait,
		queueDepth:  queueDepth,
		shareWrites: shareWrites,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by OpenTelemetry.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
//
// Falls back to NoopMetrics if instrument creation fails, logging the
// error once.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Default().Error("taskcomm metrics disabled",
			slog.String("error", err.Error()),
		)
		return NoopMetrics{}
	}
	return m
}

// RecordPut records a queue insert attempt.
func (m *otelMetrics) RecordPut(ctx context.Context, queue, op string, waited time.Duration, ok bool) {
	m.queuePuts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("op", op),
		attribute.Bool("ok", ok),
	))
	m.queueWait.Record(ctx, float64(waited.Microseconds())/1000.0, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("op", op),
	))
}

// RecordGet records a queue removal attempt.
func (m *otelMetrics) RecordGet(ctx context.Context, queue, op string, waited time.Duration, ok bool) {
	m.queueGets.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("op", op),
		attribute.Bool("ok", ok),
	))
	m.queueWait.Record(ctx, float64(waited.Microseconds())/1000.0, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("op", op),
	))
}

// RecordDepth records observed queue occupancy.
func (m *otelMetrics) RecordDepth(ctx context.Context, queue string, depth, highWater int64) {
	m.queueDepth.Record(ctx, depth, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.Int64("high_water", highWater),
	))
}

// RecordShareWrite records a share write.
func (m *otelMetrics) RecordShareWrite(ctx context.Context, share string) {
	m.shareWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("share", share),
	))
}
