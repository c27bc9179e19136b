package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "error", Output: &buf})
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}
