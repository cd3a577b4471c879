package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is configured", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "nats://localhost:4222", c.NATSURL)
		assert.Equal(t, 256, c.MaxPending)
		assert.Equal(t, 30*time.Second, c.AckWait)
		assert.Equal(t, "info", c.LogLevel)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "eventpipe.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
nats_url = "nats://broker:4222"
max_pending = 512
ack_wait = "10s"
log_level = "debug"
`), 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "nats://broker:4222", c.NATSURL)
		assert.Equal(t, 512, c.MaxPending)
		assert.Equal(t, 10*time.Second, c.AckWait)
		assert.Equal(t, "debug", c.LogLevel)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "eventpipe.toml")
		require.NoError(t, os.WriteFile(path, []byte(`nats_url = "nats://file:4222"`), 0o600))
		t.Setenv("EVENTPIPE_NATS_URL", "nats://env:4222")
		t.Setenv("EVENTPIPE_ACK_WAIT", "5s")

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "nats://env:4222", c.NATSURL)
		assert.Equal(t, 5*time.Second, c.AckWait)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "eventpipe.toml")
		require.NoError(t, os.WriteFile(path, []byte(`nats_url = [`), 0o600))

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("bad duration override is an error", func(t *testing.T) {
		t.Setenv("EVENTPIPE_ACK_WAIT", "not-a-duration")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("unknown log level is rejected", func(t *testing.T) {
		t.Setenv("EVENTPIPE_LOG_LEVEL", "verbose")
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	c.MaxPending = 0
	require.Error(t, c.Validate())

	c = Default()
	c.NATSURL = ""
	require.Error(t, c.Validate())
}
