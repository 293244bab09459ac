// Package observability provides structured logging, metrics, and
// distributed tracing for taskcomm primitives.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds taskcomm context to a logger.
// Returns a new logger with entry_id, name, and kind fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "que-1a2b3c4d", "commands", "queue")
//	enriched.Debug("item queued") // includes entry_id, name, kind
func EnrichLogger(logger *slog.Logger, entryID, name, kind string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("entry_id", entryID),
		slog.String("name", name),
		slog.String("kind", kind),
	)
}

// LogConstructed logs the creation of a share or queue.
func LogConstructed(logger *slog.Logger, kind, name string, capacity int) {
	if logger == nil {
		return
	}
	logger.Info("primitive constructed",
		slog.String("kind", kind),
		slog.String("name", name),
		slog.Int("capacity", capacity),
	)
}

// LogUnusable logs a queue whose construction failed.
func LogUnusable(logger *slog.Logger, name string, capacity int) {
	if logger == nil {
		return
	}
	logger.Error("queue unusable",
		slog.String("name", name),
		slog.Int("capacity", capacity),
	)
}

// LogTimeout logs a blocking operation that gave up waiting.
func LogTimeout(logger *slog.Logger, name, op string, waited time.Duration) {
	if logger == nil {
		return
	}
	logger.Warn("operation timed out",
		slog.String("name", name),
		slog.String("op", op),
		slog.Duration("waited", waited),
	)
}

// LogDrop logs an interrupt-context operation that failed immediately
// because the queue was full or empty.
func LogDrop(logger *slog.Logger, name, op string) {
	if logger == nil {
		return
	}
	logger.Debug("interrupt operation dropped",
		slog.String("name", name),
		slog.String("op", op),
	)
}

// LogHighWater logs a new occupancy high-water mark.
func LogHighWater(logger *slog.Logger, name string, highWater, capacity int) {
	if logger == nil {
		return
	}
	logger.Debug("new high-water mark",
		slog.String("name", name),
		slog.Int("high_water", highWater),
		slog.Int("capacity", capacity),
	)
}
