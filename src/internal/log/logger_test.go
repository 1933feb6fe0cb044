package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, "debug"), "store")
	l.Debug().Str("key", "videoProgress").Msg("persisted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "watchstore", entry["service"])
	assert.Equal(t, "videoProgress", entry["key"])
	assert.Equal(t, "persisted", entry["message"])
}

func TestNew_Level(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	l := New(&buf, "")
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len(), "default level is info")

	l = New(&buf, "nonsense")
	l.Info().Msg("shown")
	assert.NotZero(t, buf.Len())

	buf.Reset()
	t.Setenv("LOG_LEVEL", "warn")
	l = New(&buf, "")
	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
}
