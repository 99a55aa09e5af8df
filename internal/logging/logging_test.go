package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProdIsJSONAtInfo(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New("prod", &buf)
	logger.Debug("hidden")
	logger.Info("room.created", "room", "general")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "room.created", entry["msg"])
	assert.Equal(t, "general", entry["room"])
}

func TestNewDevIsTextAtDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	New("dev", &buf).Debug("slot.pruned", "room", "general")
	assert.Contains(t, buf.String(), "msg=slot.pruned")
	assert.Contains(t, buf.String(), "room=general")
}
