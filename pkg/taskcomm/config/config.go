package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm"
)

// Sentinel errors for manifest validation.
var (
	// ErrDuplicateName indicates two declarations share a display name.
	ErrDuplicateName = errors.New("duplicate name in manifest")

	// ErrMissingName indicates a declaration without a name.
	ErrMissingName = errors.New("declaration is missing a name")

	// ErrBadTimeout indicates a timeout string that does not parse.
	ErrBadTimeout = errors.New("invalid timeout")
)

// ManifestError wraps a validation or provisioning error with the
// declaration it concerns.
type ManifestError struct {
	// Section is "shares" or "queues".
	Section string
	// Name is the offending declaration's name (may be empty).
	Name string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s %q: %v", e.Section, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Manifest declares the shares and queues an application uses.
type Manifest struct {
	Shares []ShareSpec `yaml:"shares" json:"shares"`
	Queues []QueueSpec `yaml:"queues" json:"queues"`
}

// ShareSpec declares one share.
type ShareSpec struct {
	// Name is the diagnostic display name (required, unique).
	Name string `yaml:"name" json:"name"`
}

// QueueSpec declares one queue.
type QueueSpec struct {
	// Name is the diagnostic display name (required, unique).
	Name string `yaml:"name" json:"name"`

	// Capacity is the fixed number of slots. Must be positive.
	Capacity int `yaml:"capacity" json:"capacity"`

	// Timeout is the default wait limit for blocking operations, in
	// time.ParseDuration syntax ("100ms", "2s"). Empty means block
	// forever.
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// WaitLimit parses the spec's timeout. Empty yields taskcomm.Forever.
func (s QueueSpec) WaitLimit() (time.Duration, error) {
	if s.Timeout == "" {
		return taskcomm.Forever, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeout, s.Timeout)
	}
	return d, nil
}

// Validate checks the manifest for missing or duplicate names, bad
// capacities, and unparseable timeouts. Returns the first problem
// found as a *ManifestError.
func (m Manifest) Validate() error {
	seen := make(map[string]bool)

	for _, s := range m.Shares {
		if s.Name == "" {
			return &ManifestError{Section: "shares", Err: ErrMissingName}
		}
		if seen[s.Name] {
			return &ManifestError{Section: "shares", Name: s.Name, Err: ErrDuplicateName}
		}
		seen[s.Name] = true
	}

	for _, q := range m.Queues {
		if q.Name == "" {
			return &ManifestError{Section: "queues", Err: ErrMissingName}
		}
		if seen[q.Name] {
			return &ManifestError{Section: "queues", Name: q.Name, Err: ErrDuplicateName}
		}
		seen[q.Name] = true
		if q.Capacity <= 0 {
			return &ManifestError{Section: "queues", Name: q.Name, Err: taskcomm.ErrBadCapacity}
		}
		if _, err := q.WaitLimit(); err != nil {
			return &ManifestError{Section: "queues", Name: q.Name, Err: err}
		}
	}

	return nil
}

// Set holds the primitives provisioned from a manifest, keyed by name.
// Manifest-provisioned primitives carry the payload type any; code
// that wants typed payloads constructs its primitives directly with
// taskcomm.NewShare and taskcomm.NewQueue.
type Set struct {
	Shares map[string]*taskcomm.Share[any]
	Queues map[string]*taskcomm.Queue[any]
}

// Provision validates the manifest and constructs every declared share
// and queue, registering them as usual. Extra options (registry,
// logger, metrics, spans) are applied to each instance; the manifest's
// own name and timeout are applied last so callers cannot accidentally
// override them.
func Provision(m Manifest, opts ...taskcomm.Option) (*Set, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	set := &Set{
		Shares: make(map[string]*taskcomm.Share[any], len(m.Shares)),
		Queues: make(map[string]*taskcomm.Queue[any], len(m.Queues)),
	}

	for _, spec := range m.Shares {
		shareOpts := append(append([]taskcomm.Option{}, opts...),
			taskcomm.WithName(spec.Name))
		set.Shares[spec.Name] = taskcomm.NewShare[any](shareOpts...)
	}

	for _, spec := range m.Queues {
		wait, err := spec.WaitLimit()
		if err != nil {
			return nil, &ManifestError{Section: "queues", Name: spec.Name, Err: err}
		}
		queueOpts := append(append([]taskcomm.Option{}, opts...),
			taskcomm.WithName(spec.Name),
			taskcomm.WithTimeout(wait))
		q := taskcomm.NewQueue[any](spec.Capacity, queueOpts...)
		if !q.Usable() {
			return nil, &ManifestError{Section: "queues", Name: spec.Name, Err: taskcomm.ErrUnusable}
		}
		set.Queues[spec.Name] = q
	}

	return set, nil
}
