package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestZerologAdapterWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, InfoLevel)

	log.Info("Export", "job started", map[string]interface{}{"format": "ttf"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Export", entry["component"])
	assert.Equal(t, "job started", entry["message"])
	assert.Equal(t, "ttf", entry["format"])
	assert.Equal(t, "info", entry["level"])
}

func TestZerologAdapterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, WarnLevel)

	log.Debug("Export", "noise", nil)
	log.Info("Export", "noise", nil)
	assert.Zero(t, buf.Len())

	log.Error("Export", errors.New("boom"), nil)
	assert.Contains(t, buf.String(), "boom")
}

func TestWithStampsEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	base := NewZerolog(&buf, DebugLevel)
	child := base.With("export", "Sans.ttf")

	child.Info("Export", "compiling", nil)
	child.Error("Export", errors.New("boom"), nil)
	base.Info("Export", "unrelated", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	for i, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		if i < 2 {
			assert.Equal(t, "Sans.ttf", entry["export"])
		} else {
			assert.NotContains(t, entry, "export")
		}
	}
}
