package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm"
	"github.com/randalmurphal/taskcomm/pkg/taskcomm/config"
)

const sampleYAML = `
shares:
  - name: speed
  - name: heading
queues:
  - name: commands
    capacity: 10
    timeout: 100ms
  - name: telemetry
    capacity: 64
`

func TestFromYAML(t *testing.T) {
	m, err := config.FromYAML([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, m.Shares, 2)
	assert.Equal(t, "speed", m.Shares[0].Name)

	require.Len(t, m.Queues, 2)
	assert.Equal(t, "commands", m.Queues[0].Name)
	assert.Equal(t, 10, m.Queues[0].Capacity)

	wait, err := m.Queues[0].WaitLimit()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, wait)

	// No timeout means block forever.
	wait, err = m.Queues[1].WaitLimit()
	require.NoError(t, err)
	assert.Equal(t, taskcomm.Forever, wait)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("queues: {not: [a, list"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	data := `{"queues":[{"name":"q1","capacity":4,"timeout":"2s"}]}`
	m, err := config.FromJSON([]byte(data))
	require.NoError(t, err)

	require.Len(t, m.Queues, 1)
	wait, err := m.Queues[0].WaitLimit()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, wait)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "channels.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

		m, err := config.FromFile(path)
		require.NoError(t, err)
		assert.Len(t, m.Queues, 2)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "channels.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

		_, err := config.FromFile(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestManifest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := config.FromYAML([]byte(sampleYAML))
		require.NoError(t, err)
		assert.NoError(t, m.Validate())
	})

	t.Run("duplicate name across sections", func(t *testing.T) {
		m := config.Manifest{
			Shares: []config.ShareSpec{{Name: "x"}},
			Queues: []config.QueueSpec{{Name: "x", Capacity: 1}},
		}
		err := m.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrDuplicateName)

		var merr *config.ManifestError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "queues", merr.Section)
		assert.Equal(t, "x", merr.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		m := config.Manifest{Shares: []config.ShareSpec{{}}}
		assert.ErrorIs(t, m.Validate(), config.ErrMissingName)
	})

	t.Run("zero capacity", func(t *testing.T) {
		m := config.Manifest{Queues: []config.QueueSpec{{Name: "q", Capacity: 0}}}
		assert.ErrorIs(t, m.Validate(), taskcomm.ErrBadCapacity)
	})

	t.Run("bad timeout", func(t *testing.T) {
		m := config.Manifest{Queues: []config.QueueSpec{{Name: "q", Capacity: 1, Timeout: "soonish"}}}
		assert.ErrorIs(t, m.Validate(), config.ErrBadTimeout)
	})
}

func TestProvision(t *testing.T) {
	reg := taskcomm.NewRegistry()

	m, err := config.FromYAML([]byte(sampleYAML))
	require.NoError(t, err)

	set, err := config.Provision(m, taskcomm.WithRegistry(reg))
	require.NoError(t, err)

	require.Contains(t, set.Shares, "speed")
	require.Contains(t, set.Queues, "commands")
	assert.Equal(t, 10, set.Queues["commands"].Cap())
	assert.True(t, set.Queues["commands"].Usable())

	// All four declarations registered for diagnostics.
	assert.Equal(t, 4, reg.Len())

	// Provisioned primitives work end to end.
	set.Shares["speed"].Put(3.7)
	assert.Equal(t, 3.7, set.Shares["speed"].Get())

	require.True(t, set.Queues["telemetry"].Put("frame-1"))
	v, ok := set.Queues["telemetry"].Get()
	require.True(t, ok)
	assert.Equal(t, "frame-1", v)
}

// Manifest names and timeouts must win over whatever options the
// caller passes for every instance.
func TestProvision_ManifestOverridesCallerOptions(t *testing.T) {
	reg := taskcomm.NewRegistry()

	m := config.Manifest{
		Shares: []config.ShareSpec{{Name: "speed"}},
		Queues: []config.QueueSpec{{Name: "commands", Capacity: 1, Timeout: "20ms"}},
	}

	set, err := config.Provision(m,
		taskcomm.WithRegistry(reg),
		taskcomm.WithName("clobber"),
		taskcomm.WithTimeout(taskcomm.Forever))
	require.NoError(t, err)

	// Declared names survive; the caller's name reaches no instance.
	require.Contains(t, set.Shares, "speed")
	require.Contains(t, set.Queues, "commands")
	_, found := reg.Find("clobber")
	assert.False(t, found)
	_, found = reg.Find("speed")
	assert.True(t, found)
	_, found = reg.Find("commands")
	assert.True(t, found)

	// The declared 20ms timeout survives the caller's Forever: a put
	// on the full queue gives up instead of blocking indefinitely.
	q := set.Queues["commands"]
	require.True(t, q.Put("first"))

	start := time.Now()
	ok := q.Put("second")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProvision_InvalidManifest(t *testing.T) {
	m := config.Manifest{Queues: []config.QueueSpec{{Name: "q", Capacity: -2}}}
	_, err := config.Provision(m, taskcomm.WithRegistry(taskcomm.NewRegistry()))
	assert.ErrorIs(t, err, taskcomm.ErrBadCapacity)
}
