package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "ffcmd-test"})

	l := WithComponent("runner")
	l.Info().Str("run_id", "abc").Msg("spawned")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ffcmd-test", entry["service"])
	assert.Equal(t, "runner", entry["component"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "spawned", entry["message"])
}
