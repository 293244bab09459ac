/*
Package taskcomm provides inter-task communication primitives modelled
on the data-exchange classes of embedded real-time systems: a
single-slot latest-value Share, a bounded blocking FIFO Queue, and a
process-wide registry that tracks every live instance for diagnostics.

# Overview

Tasks (goroutines) exchange data through typed primitives instead of
bare shared variables:

  - Share[T] holds the most recent value of T. Writes overwrite, reads
    peek without consuming, and neither ever blocks. Use a Share for
    "latest sensor reading" style data where intermediate values may be
    missed.
  - Queue[T] is a bounded FIFO with blocking put/get and configurable
    timeouts. Use a Queue when every value matters and producers should
    feel backpressure.

Every Share and Queue registers itself on construction, so the whole
set of live communication channels can be printed at any time:

	speed := taskcomm.NewShare[float64](taskcomm.WithName("speed"))
	cmds := taskcomm.NewQueue[string](10, taskcomm.WithName("commands"))

	speed.Put(3.7)
	cmds.Put("start")

	taskcomm.RenderAll(os.Stdout)

# Task context vs. interrupt context

The primitives expose two distinct method sets. The methods on Share
and Queue themselves are for task context: Queue.Put, Queue.Get and
Queue.Peek may block the calling goroutine. The ISR() accessor returns
a separate view whose methods are guaranteed never to block and never
to wake waiters inline; that view is the only one safe to call from
contexts that must not park, such as signal handlers, finalizers, or
callbacks driven by foreign schedulers:

	isr := cmds.ISR()
	if !isr.Put("stop") {
	    // queue full; the interrupt-side caller moves on
	}

Which method set a call site uses is visible in the types, so misuse is
a compile-time matter rather than a runtime check.

# Blocking semantics

Blocking operations take a timeout. The zero default is Forever, which
blocks indefinitely; a timeout of 0 makes a single non-blocking
attempt. Failed operations report via return values, never panics:

	if ok := cmds.PutWait("start", 50*time.Millisecond); !ok {
	    // queue stayed full for 50ms
	}

A queue constructed with a non-positive capacity is unusable: Usable
reports false and every operation fails fast. Callers on constrained
targets can probe Usable after construction instead of crashing later.
*/
package taskcomm
