package taskcomm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm"
)

func TestRegistry_RenderAll_ReverseConstructionOrder(t *testing.T) {
	reg := taskcomm.NewRegistry()

	taskcomm.NewShare[int](taskcomm.WithName("A"), taskcomm.WithRegistry(reg))
	taskcomm.NewQueue[int](10, taskcomm.WithName("B"), taskcomm.WithRegistry(reg))

	var sb strings.Builder
	require.NoError(t, reg.RenderAll(&sb))

	out := sb.String()
	assert.Contains(t, out, "Share/Queue     Type    Max. Full")

	// B was constructed last, so it renders first.
	posB := strings.Index(out, "B")
	posA := strings.Index(out, "A")
	require.GreaterOrEqual(t, posB, 0)
	require.GreaterOrEqual(t, posA, 0)
	assert.Less(t, posB, posA)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // two header lines, two entries
	assert.Equal(t, "B               queue   0/10", lines[2])
	assert.Equal(t, "A               share", lines[3])
}

func TestRegistry_RenderAll_UnusableQueue(t *testing.T) {
	reg := taskcomm.NewRegistry()
	taskcomm.NewQueue[int](0, taskcomm.WithName("broken"), taskcomm.WithRegistry(reg))

	var sb strings.Builder
	require.NoError(t, reg.RenderAll(&sb))
	assert.Contains(t, sb.String(), "broken          queue   UNUSABLE")
}

func TestRegistry_NameTruncation(t *testing.T) {
	reg := taskcomm.NewRegistry()

	s := taskcomm.NewShare[int](
		taskcomm.WithName("a-very-long-share-name-indeed"),
		taskcomm.WithRegistry(reg),
	)
	assert.Equal(t, "a-very-long-sha", s.Name())
	assert.Len(t, s.Name(), 15)
}

func TestRegistry_DefaultName(t *testing.T) {
	reg := taskcomm.NewRegistry()
	s := taskcomm.NewShare[int](taskcomm.WithRegistry(reg))
	assert.Equal(t, "(no name)", s.Name())
}

func TestRegistry_EntriesAndLen(t *testing.T) {
	reg := taskcomm.NewRegistry()
	assert.Zero(t, reg.Len())

	taskcomm.NewShare[int](taskcomm.WithName("first"), taskcomm.WithRegistry(reg))
	taskcomm.NewQueue[string](4, taskcomm.WithName("second"), taskcomm.WithRegistry(reg))
	taskcomm.NewShare[bool](taskcomm.WithName("third"), taskcomm.WithRegistry(reg))

	assert.Equal(t, 3, reg.Len())

	entries := reg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Name())
	assert.Equal(t, "second", entries[1].Name())
	assert.Equal(t, "first", entries[2].Name())

	assert.Equal(t, "share", entries[0].Kind())
	assert.Equal(t, "queue", entries[1].Kind())
}

func TestRegistry_Find(t *testing.T) {
	reg := taskcomm.NewRegistry()
	taskcomm.NewQueue[int](2, taskcomm.WithName("target"), taskcomm.WithRegistry(reg))

	e, ok := reg.Find("target")
	require.True(t, ok)
	assert.Equal(t, "queue", e.Kind())

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestRegistry_EntryIDsUnique(t *testing.T) {
	reg := taskcomm.NewRegistry()
	a := taskcomm.NewShare[int](taskcomm.WithName("a"), taskcomm.WithRegistry(reg))
	b := taskcomm.NewShare[int](taskcomm.WithName("b"), taskcomm.WithRegistry(reg))

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, strings.HasPrefix(a.ID(), "shr-"))

	q := taskcomm.NewQueue[int](1, taskcomm.WithRegistry(reg))
	assert.True(t, strings.HasPrefix(q.ID(), "que-"))
}

// failingWriter errors after n successful writes.
type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("sink broke")
	}
	w.n--
	return len(p), nil
}

func TestRegistry_RenderAll_SinkError(t *testing.T) {
	reg := taskcomm.NewRegistry()
	taskcomm.NewShare[int](taskcomm.WithName("victim"), taskcomm.WithRegistry(reg))

	// Let the two header lines through, fail on the entry line.
	err := reg.RenderAll(&failingWriter{n: 2})
	require.Error(t, err)

	var rerr *taskcomm.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "victim", rerr.Entry)
}

func TestDefaultRegistry(t *testing.T) {
	before := taskcomm.DefaultRegistry().Len()
	taskcomm.NewShare[int](taskcomm.WithName("on-default"))
	assert.Equal(t, before+1, taskcomm.DefaultRegistry().Len())

	var sb strings.Builder
	require.NoError(t, taskcomm.RenderAll(&sb))
	assert.Contains(t, sb.String(), "on-default")
}
