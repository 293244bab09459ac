package observability

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newCaptureLogger returns a debug-level logger writing to the buffer.
func newCaptureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newCaptureLogger(&buf)

	enriched := EnrichLogger(logger, "que-1a2b3c4d", "commands", "queue")
	enriched.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "entry_id=que-1a2b3c4d")
	assert.Contains(t, out, "name=commands")
	assert.Contains(t, out, "kind=queue")
}

func TestEnrichLogger_NilSafe(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "id", "n", "k"))
}

func TestLogConstructed(t *testing.T) {
	var buf bytes.Buffer
	LogConstructed(newCaptureLogger(&buf), "queue", "commands", 10)

	out := buf.String()
	assert.Contains(t, out, "primitive constructed")
	assert.Contains(t, out, "capacity=10")
}

func TestLogUnusable(t *testing.T) {
	var buf bytes.Buffer
	LogUnusable(newCaptureLogger(&buf), "broken", 0)

	out := buf.String()
	assert.Contains(t, out, "queue unusable")
	assert.Contains(t, out, "level=ERROR")
}

func TestLogTimeout(t *testing.T) {
	var buf bytes.Buffer
	LogTimeout(newCaptureLogger(&buf), "commands", "put", 50*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "operation timed out")
	assert.Contains(t, out, "op=put")
	assert.Contains(t, out, "level=WARN")
}

func TestLogDrop(t *testing.T) {
	var buf bytes.Buffer
	LogDrop(newCaptureLogger(&buf), "commands", "isr_put")
	assert.Contains(t, buf.String(), "interrupt operation dropped")
}

func TestLogHighWater(t *testing.T) {
	var buf bytes.Buffer
	LogHighWater(newCaptureLogger(&buf), "commands", 6, 10)

	out := buf.String()
	assert.Contains(t, out, "new high-water mark")
	assert.Contains(t, out, "high_water=6")
}

func TestLogHelpers_NilLogger(t *testing.T) {
	// Every helper must tolerate a nil logger.
	assert.NotPanics(t, func() {
		LogConstructed(nil, "queue", "n", 1)
		LogUnusable(nil, "n", 0)
		LogTimeout(nil, "n", "put", time.Second)
		LogDrop(nil, "n", "isr_put")
		LogHighWater(nil, "n", 1, 2)
	})
}
