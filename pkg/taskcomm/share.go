package taskcomm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm/observability"
)

// Share is a single-slot latest-value holder for exchanging data
// between tasks. A Put unconditionally replaces the held value; a Get
// returns the most recent value without consuming it. No operation on
// a Share ever blocks, and readers never observe a torn value: every
// Get sees either the zero value of T (before the first Put) or some
// complete previously written value.
//
// A Share keeps no history. Readers polling more slowly than the
// writer writes will miss intermediate values; only the latest is ever
// delivered. Use a Queue when every value matters.
//
// Shares register themselves on construction and appear in registry
// diagnostics for the rest of the process lifetime.
type Share[T any] struct {
	entry

	// val holds a snapshot pointer; nil until the first write. Swapping
	// whole snapshots is what makes reads tear-free.
	val atomic.Pointer[T]

	// mu serializes Update calls against each other.
	mu sync.Mutex

	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// NewShare constructs a Share and registers it.
//
//	speed := taskcomm.NewShare[float64](taskcomm.WithName("speed"))
func NewShare[T any](opts ...Option) *Share[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Share[T]{
		entry:   newEntry("share", "shr", cfg.name),
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
	cfg.registry.add(s)

	observability.LogConstructed(cfg.logger, "share", s.name, 0)
	return s
}

// Put replaces the held value. It never blocks and never fails.
func (s *Share[T]) Put(v T) {
	s.val.Store(&v)
	s.metrics.RecordShareWrite(context.Background(), s.name)
}

// Get returns the most recently written value, or the zero value of T
// if nothing has been written yet. Non-destructive: repeated Gets
// without an intervening Put return the same value.
func (s *Share[T]) Get() T {
	if p := s.val.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// GetInto copies the most recently written value into dst. If nothing
// has been written yet, dst is left unchanged.
func (s *Share[T]) GetInto(dst *T) {
	if p := s.val.Load(); p != nil {
		*dst = *p
	}
}

// Update applies fn to the current value and stores the result,
// returning it. Updates are atomic with respect to each other, so
// shared counters stay consistent under concurrent increments:
//
//	hits.Update(func(n uint32) uint32 { return n + 1 })
//
// A plain Put racing an Update follows last-write-wins, like any other
// pair of writes.
func (s *Share[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	var cur T
	if p := s.val.Load(); p != nil {
		cur = *p
	}
	next := fn(cur)
	s.val.Store(&next)
	s.mu.Unlock()

	s.metrics.RecordShareWrite(context.Background(), s.name)
	return next
}

// ISR returns the interrupt-context view of the share. Its methods
// never block, never take locks, and never touch the metrics pipeline,
// so they are safe from contexts that must not park the caller.
func (s *Share[T]) ISR() ShareISR[T] {
	return ShareISR[T]{s: s}
}

// renderStatus writes the share's diagnostic status line.
func (s *Share[T]) renderStatus(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%-16sshare\n", s.name)
	return err
}

// ShareISR is the interrupt-context view of a Share. It is obtained
// from Share.ISR and holds only operations that are guaranteed not to
// block: a single atomic pointer swap or load each.
//
// The task-context methods on Share and the methods here may be used
// on the same underlying share from genuinely concurrent contexts; the
// single-slot snapshot keeps both sides coherent.
type ShareISR[T any] struct {
	s *Share[T]
}

// Put replaces the held value from interrupt context.
func (i ShareISR[T]) Put(v T) {
	i.s.val.Store(&v)
}

// Get returns the most recent value, or the zero value of T if nothing
// has been written yet.
func (i ShareISR[T]) Get() T {
	if p := i.s.val.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// GetInto copies the most recent value into dst, leaving dst unchanged
// if nothing has been written yet.
func (i ShareISR[T]) GetInto(dst *T) {
	if p := i.s.val.Load(); p != nil {
		*dst = *p
	}
}
