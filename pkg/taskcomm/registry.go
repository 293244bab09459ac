package taskcomm

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// maxNameLen is the longest display name kept for an entry. Longer
// names are silently truncated, matching static name buffers on the
// embedded targets this library is modelled on.
const maxNameLen = 15

// defaultName is used when no name option is supplied.
const defaultName = "(no name)"

// Entry is the registry-facing view of a live Share or Queue.
//
// Entries are created implicitly by NewShare and NewQueue and live for
// the rest of the process; there is no removal. The interface is
// sealed: only types in this package can implement it.
type Entry interface {
	// Name returns the display name, truncated to 15 characters.
	Name() string

	// Kind returns the entry's kind tag, "share" or "queue".
	Kind() string

	// ID returns a short unique instance identifier.
	ID() string

	// renderStatus writes the entry's one-line diagnostic status.
	renderStatus(w io.Writer) error

	// prev returns the previously registered entry, or nil.
	prev() Entry
	setPrev(Entry)
}

// entry carries the registry bookkeeping shared by Share and Queue.
type entry struct {
	name string
	kind string
	id   string
	next Entry // the previously registered entry; nil at the chain's end
}

// newEntry builds the bookkeeping for a new registered item.
// An empty name gets the placeholder; a long name is truncated.
func newEntry(kind, idPrefix, name string) entry {
	if name == "" {
		name = defaultName
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return entry{
		name: name,
		kind: kind,
		id:   fmt.Sprintf("%s-%s", idPrefix, uuid.New().String()[:8]),
	}
}

// Name returns the display name, truncated to 15 characters.
func (e *entry) Name() string { return e.name }

// Kind returns the entry's kind tag.
func (e *entry) Kind() string { return e.kind }

// ID returns the short unique instance identifier.
func (e *entry) ID() string { return e.id }

func (e *entry) prev() Entry     { return e.next }
func (e *entry) setPrev(p Entry) { e.next = p }

// Registry tracks every live Share and Queue as a singly-linked chain,
// most recently constructed first. The chain is only ever prepended
// to; entries are never removed or reordered, so a walk started from
// any snapshot of the head is stable.
//
// A process normally uses the package-level default registry; an
// explicit Registry is useful in tests and in programs that want
// isolated diagnostic scopes.
type Registry struct {
	mu     sync.Mutex
	newest Entry
	count  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// defaultRegistry is the process-wide registry used unless
// WithRegistry overrides it. Created once, never torn down.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry that Shares and
// Queues join unless constructed with WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// add prepends an entry to the chain. O(1).
func (r *Registry) add(e Entry) {
	r.mu.Lock()
	e.setPrev(r.newest)
	r.newest = e
	r.count++
	r.mu.Unlock()
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// head returns a snapshot of the newest entry. Chain links behind the
// head are immutable once set, so walking from the snapshot is safe
// without the lock.
func (r *Registry) head() Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newest
}

// Entries returns all registered entries, most recently constructed
// first.
func (r *Registry) Entries() []Entry {
	var out []Entry
	for e := r.head(); e != nil; e = e.prev() {
		out = append(out, e)
	}
	return out
}

// Find returns the most recently constructed entry with the given
// display name. Names are advisory and need not be unique; when they
// collide, the newest wins.
func (r *Registry) Find(name string) (Entry, bool) {
	for e := r.head(); e != nil; e = e.prev() {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// RenderAll writes a diagnostic table with one status line per
// registered entry, most recently constructed first. Queues report
// their high-water mark against capacity, or UNUSABLE when
// construction failed.
//
// Output looks like:
//
//	Share/Queue     Type    Max. Full
//	-----------     ----    ---------
//	commands        queue   3/10
//	speed           share
func (r *Registry) RenderAll(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Share/Queue     Type    Max. Full\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "-----------     ----    ---------\n"); err != nil {
		return err
	}
	for e := r.head(); e != nil; e = e.prev() {
		if err := e.renderStatus(w); err != nil {
			return &RenderError{Entry: e.Name(), Err: err}
		}
	}
	return nil
}

// RenderAll renders the default registry's diagnostic table to w.
func RenderAll(w io.Writer) error {
	return defaultRegistry.RenderAll(w)
}
