package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_AddsCallerFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	GetLogger().WithField("service", "spotify").Info("cache cleared")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cache cleared", line["msg"])
	assert.Equal(t, "spotify", line["service"])
	assert.Contains(t, line["function"], "TestGetLogger_AddsCallerFields")
	assert.NotEmpty(t, line["file"])
}

func TestResolveLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, resolveLevel(""))
	assert.Equal(t, log.WarnLevel, resolveLevel("WARN"))
	assert.Equal(t, log.DebugLevel, resolveLevel("chatty"))
}
