package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.WithField("vehicle_id", "abc").Info("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["vehicle_id"])
	assert.Equal(t, "created", entry["msg"])
}

func TestNew_BadLevel(t *testing.T) {
	logger := New("loud", "text", &bytes.Buffer{})
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}
