// Package textq provides a queue specialized for text, so tasks can
// stream formatted output through a bounded buffer instead of writing
// to a shared sink directly. The TextQueue implements io.Writer on the
// producing side; a consumer task drains it to the real sink. This is
// the usual way to get clean, interleaving-free console output from
// many tasks: everybody writes to the queue, one task owns the device.
//
//	console := textq.New(256, taskcomm.WithName("console"))
//
//	// In any task:
//	fmt.Fprintf(console, "speed=%.1f\n", speed)
//
//	// In the printing task:
//	for {
//	    console.DrainTo(os.Stdout)
//	    time.Sleep(10 * time.Millisecond)
//	}
package textq

import (
	"errors"
	"io"
	"time"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm"
)

// ErrTimeout is returned by Write when the queue stays full past the
// default wait limit.
var ErrTimeout = errors.New("text queue write timed out")

// TextQueue is a bounded byte queue for inter-task text transfer.
// Construction registers it like any other queue, with kind "queue".
type TextQueue struct {
	q *taskcomm.Queue[byte]
}

// New constructs a TextQueue holding up to capacity bytes. Options are
// the usual taskcomm construction options; the default wait limit set
// with WithTimeout governs how long Write blocks per byte.
func New(capacity int, opts ...taskcomm.Option) *TextQueue {
	return &TextQueue{q: taskcomm.NewQueue[byte](capacity, opts...)}
}

// Write queues p byte by byte, blocking while the queue is full up to
// the default wait limit per byte. Implements io.Writer, so the
// fmt.Fprint family works directly. Returns the number of bytes queued
// and ErrTimeout (or taskcomm.ErrUnusable) on failure.
func (t *TextQueue) Write(p []byte) (int, error) {
	if !t.q.Usable() {
		return 0, taskcomm.ErrUnusable
	}
	for i, c := range p {
		if !t.q.Put(c) {
			return i, ErrTimeout
		}
	}
	return len(p), nil
}

// WriteByte queues a single byte, blocking like Write.
func (t *TextQueue) WriteByte(c byte) error {
	_, err := t.Write([]byte{c})
	return err
}

// ReadByte removes and returns the front byte, blocking while the
// queue is empty up to timeout. The second return value is false on
// timeout.
func (t *TextQueue) ReadByte(timeout time.Duration) (byte, bool) {
	return t.q.GetWait(timeout)
}

// DrainTo moves every currently queued byte to w, without blocking for
// more input. Returns the number of bytes moved. A sink error stops
// the drain; bytes already read from the queue are lost with it, like
// characters lost on a broken serial line.
func (t *TextQueue) DrainTo(w io.Writer) (int, error) {
	isr := t.q.ISR()
	moved := 0
	// Batch contiguous bytes to spare the sink per-byte writes.
	buf := make([]byte, 0, 64)
	for {
		c, ok := isr.Get()
		if !ok {
			break
		}
		buf = append(buf, c)
		if len(buf) == cap(buf) {
			n, err := w.Write(buf)
			moved += n
			if err != nil {
				return moved, err
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		n, err := w.Write(buf)
		moved += n
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

// Any reports whether the queue has bytes to read.
func (t *TextQueue) Any() bool { return t.q.Any() }

// Len returns the number of queued bytes.
func (t *TextQueue) Len() int { return t.q.Len() }

// Usable reports whether construction succeeded.
func (t *TextQueue) Usable() bool { return t.q.Usable() }

// Queue exposes the underlying byte queue for anything the wrapper
// doesn't cover. This isn't commonly needed.
func (t *TextQueue) Queue() *taskcomm.Queue[byte] { return t.q }
