package taskcomm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm/observability"
)

// Queue is a bounded FIFO for transmitting data from one task to
// another. Capacity is fixed at construction. Put appends at the back
// and blocks while the queue is full; Get removes from the front and
// blocks while the queue is empty. Blocking is bounded by the queue's
// default timeout (Forever unless WithTimeout says otherwise) or by
// the explicit timeout of the *Wait variants.
//
// FIFO order among normal Puts is preserved across any number of
// producers and consumers. PutFront bypasses arrival order: a
// front-inserted item is served before every earlier normal item, and
// front insertions are LIFO among themselves.
//
// The queue tracks a monotonic high-water mark, the maximum occupancy
// it has ever reached, reported by HighWater and in registry
// diagnostics.
//
// A queue constructed with a non-positive capacity is unusable:
// Usable reports false and every operation fails immediately. This is
// deliberate; a zero capacity is never silently treated as one.
type Queue[T any] struct {
	entry

	mu        sync.Mutex
	buf       []T
	head      int // index of the front item
	count     int
	capacity  int
	usable    bool
	highWater int

	// notEmpty and notFull are broadcast channels: closed and replaced
	// whenever their condition becomes true. Waiters snapshot the
	// current channel under mu, release mu, then select on it, so a
	// wakeup between unlock and select is never lost.
	notEmpty chan struct{}
	notFull  chan struct{}

	defaultWait time.Duration
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
}

// NewQueue constructs a Queue holding up to capacity items and
// registers it.
//
//	cmds := taskcomm.NewQueue[string](10,
//	    taskcomm.WithName("commands"),
//	    taskcomm.WithTimeout(100*time.Millisecond))
//
// A non-positive capacity yields an unusable queue rather than an
// error; probe with Usable.
func NewQueue[T any](capacity int, opts ...Option) *Queue[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &Queue[T]{
		entry:       newEntry("queue", "que", cfg.name),
		capacity:    capacity,
		defaultWait: cfg.timeout,
		notEmpty:    make(chan struct{}),
		notFull:     make(chan struct{}),
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		spans:       cfg.spans,
	}
	if capacity > 0 {
		q.buf = make([]T, capacity)
		q.usable = true
		observability.LogConstructed(cfg.logger, "queue", q.name, capacity)
	} else {
		observability.LogUnusable(cfg.logger, q.name, capacity)
	}
	cfg.registry.add(q)
	return q
}

// Usable reports whether construction succeeded. All operations on an
// unusable queue are failing no-ops.
func (q *Queue[T]) Usable() bool {
	return q.usable
}

// Put appends an item at the back of the queue, blocking while the
// queue is full up to the default timeout. Returns false on timeout or
// if the queue is unusable.
func (q *Queue[T]) Put(item T) bool {
	return q.insert(item, q.defaultWait, false)
}

// PutWait is Put with an explicit wait limit. A negative timeout
// (Forever) blocks indefinitely; zero makes a single attempt.
func (q *Queue[T]) PutWait(item T, timeout time.Duration) bool {
	return q.insert(item, timeout, false)
}

// PutFront inserts an item at the front of the queue so it is
// retrieved next, bypassing FIFO order. Same blocking contract as Put.
//
// This is not the normal way to put things into a queue; a producer
// that only ever uses PutFront has built a stack. Reserve it for
// urgent items.
func (q *Queue[T]) PutFront(item T) bool {
	return q.insert(item, q.defaultWait, true)
}

// PutFrontWait is PutFront with an explicit wait limit.
func (q *Queue[T]) PutFrontWait(item T, timeout time.Duration) bool {
	return q.insert(item, timeout, true)
}

// Get removes and returns the front item, blocking while the queue is
// empty up to the default timeout. The second return value is false on
// timeout or if the queue is unusable.
func (q *Queue[T]) Get() (T, bool) {
	return q.remove(q.defaultWait, true, "get")
}

// GetWait is Get with an explicit wait limit.
func (q *Queue[T]) GetWait(timeout time.Duration) (T, bool) {
	return q.remove(timeout, true, "get")
}

// Peek returns the front item without removing it, blocking while the
// queue is empty up to the default timeout.
func (q *Queue[T]) Peek() (T, bool) {
	return q.remove(q.defaultWait, false, "peek")
}

// PeekWait is Peek with an explicit wait limit.
func (q *Queue[T]) PeekWait(timeout time.Duration) (T, bool) {
	return q.remove(timeout, false, "peek")
}

// Len returns the current number of items in the queue. Never blocks.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Any reports whether the queue has items to read. Never blocks.
func (q *Queue[T]) Any() bool {
	return q.Len() != 0
}

// IsEmpty reports whether the queue holds no items. Never blocks.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Cap returns the capacity fixed at construction.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// HighWater returns the maximum occupancy the queue has ever reached.
// Monotonically non-decreasing over the queue's lifetime.
func (q *Queue[T]) HighWater() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWater
}

// ISR returns the interrupt-context view of the queue. Its methods
// never wait for space or data: they fail immediately instead, and
// they never wake blocked tasks inline; wakeups happen in the waiters'
// own scheduling, as on interrupt exit in an RTOS.
func (q *Queue[T]) ISR() QueueISR[T] {
	return QueueISR[T]{q: q}
}

// insert implements Put and PutFront with blocking and timeout.
func (q *Queue[T]) insert(item T, timeout time.Duration, front bool) bool {
	if !q.usable {
		return false
	}
	op := "put"
	if front {
		op = "put_front"
	}
	ctx, span := q.spans.StartOpSpan(context.Background(), q.name, op)

	start := time.Now()
	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	q.mu.Lock()
	for q.count == q.capacity {
		wait := q.notFull
		q.mu.Unlock()
		select {
		case <-wait:
		case <-expired:
			waited := time.Since(start)
			observability.LogTimeout(q.logger, q.name, op, waited)
			q.metrics.RecordPut(ctx, q.name, op, waited, false)
			q.spans.EndSpanWithError(span, ErrTimeout)
			return false
		}
		q.mu.Lock()
	}
	q.push(item, front)
	depth, hw := q.count, q.highWater
	q.signalNotEmptyLocked()
	q.mu.Unlock()

	q.metrics.RecordPut(ctx, q.name, op, time.Since(start), true)
	q.metrics.RecordDepth(ctx, q.name, int64(depth), int64(hw))
	q.spans.EndSpanWithError(span, nil)
	return true
}

// remove implements Get and Peek with blocking and timeout.
func (q *Queue[T]) remove(timeout time.Duration, consume bool, op string) (T, bool) {
	var zero T
	if !q.usable {
		return zero, false
	}
	ctx, span := q.spans.StartOpSpan(context.Background(), q.name, op)

	start := time.Now()
	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	q.mu.Lock()
	for q.count == 0 {
		wait := q.notEmpty
		q.mu.Unlock()
		select {
		case <-wait:
		case <-expired:
			waited := time.Since(start)
			observability.LogTimeout(q.logger, q.name, op, waited)
			q.metrics.RecordGet(ctx, q.name, op, waited, false)
			q.spans.EndSpanWithError(span, ErrTimeout)
			return zero, false
		}
		q.mu.Lock()
	}
	item := q.buf[q.head]
	if consume {
		q.buf[q.head] = zero // release the slot's reference
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.signalNotFullLocked()
	}
	depth := q.count
	q.mu.Unlock()

	q.metrics.RecordGet(ctx, q.name, op, time.Since(start), true)
	if consume {
		q.metrics.RecordDepth(ctx, q.name, int64(depth), int64(q.HighWater()))
	}
	q.spans.EndSpanWithError(span, nil)
	return item, true
}

// push stores an item at the back (or front) of the ring and advances
// the high-water mark. Caller holds mu; q.count < q.capacity.
func (q *Queue[T]) push(item T, front bool) {
	if front {
		q.head = (q.head - 1 + q.capacity) % q.capacity
		q.buf[q.head] = item
	} else {
		q.buf[(q.head+q.count)%q.capacity] = item
	}
	q.count++
	if q.count > q.highWater {
		q.highWater = q.count
		observability.LogHighWater(q.logger, q.name, q.highWater, q.capacity)
	}
}

// signalNotEmptyLocked wakes readers waiting for data. Caller holds mu.
func (q *Queue[T]) signalNotEmptyLocked() {
	close(q.notEmpty)
	q.notEmpty = make(chan struct{})
}

// signalNotFullLocked wakes writers waiting for space. Caller holds mu.
func (q *Queue[T]) signalNotFullLocked() {
	close(q.notFull)
	q.notFull = make(chan struct{})
}

// renderStatus writes the queue's diagnostic status line.
func (q *Queue[T]) renderStatus(w io.Writer) error {
	if !q.usable {
		_, err := fmt.Fprintf(w, "%-16squeue   UNUSABLE\n", q.name)
		return err
	}
	_, err := fmt.Fprintf(w, "%-16squeue   %d/%d\n", q.name, q.HighWater(), q.capacity)
	return err
}

// QueueISR is the interrupt-context view of a Queue, obtained from
// Queue.ISR. Every method is a single bounded critical section; none
// waits for space or data, and none performs a wakeup inline.
type QueueISR[T any] struct {
	q *Queue[T]
}

// Put appends an item at the back without blocking. Returns false
// immediately if the queue is full or unusable.
func (i QueueISR[T]) Put(item T) bool {
	return i.tryInsert(item, false, "isr_put")
}

// PutFront inserts an item at the front without blocking. Returns
// false immediately if the queue is full or unusable.
func (i QueueISR[T]) PutFront(item T) bool {
	return i.tryInsert(item, true, "isr_put_front")
}

// Get removes and returns the front item without blocking. The second
// return value is false if the queue is empty or unusable; check Any
// first, or accept the zero value.
func (i QueueISR[T]) Get() (T, bool) {
	return i.tryRemove(true)
}

// Peek returns the front item without removing it or blocking.
func (i QueueISR[T]) Peek() (T, bool) {
	return i.tryRemove(false)
}

// Any reports whether the queue has items to read.
func (i QueueISR[T]) Any() bool {
	return i.q.Any()
}

// IsEmpty reports whether the queue holds no items.
func (i QueueISR[T]) IsEmpty() bool {
	return i.q.IsEmpty()
}

// Len returns the current number of items in the queue.
func (i QueueISR[T]) Len() int {
	return i.q.Len()
}

// tryInsert is the never-blocking insert path.
func (i QueueISR[T]) tryInsert(item T, front bool, op string) bool {
	q := i.q
	if !q.usable {
		return false
	}
	q.mu.Lock()
	if q.count == q.capacity {
		q.mu.Unlock()
		observability.LogDrop(q.logger, q.name, op)
		return false
	}
	q.push(item, front)
	q.signalNotEmptyLocked()
	q.mu.Unlock()
	return true
}

// tryRemove is the never-blocking remove/peek path.
func (i QueueISR[T]) tryRemove(consume bool) (T, bool) {
	q := i.q
	var zero T
	if !q.usable {
		return zero, false
	}
	q.mu.Lock()
	if q.count == 0 {
		q.mu.Unlock()
		return zero, false
	}
	item := q.buf[q.head]
	if consume {
		q.buf[q.head] = zero
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.signalNotFullLocked()
	}
	q.mu.Unlock()
	return item, true
}
