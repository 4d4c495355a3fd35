package config

import (
	"testing"
	"time"

	"fontra-pak/internal/logger"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := fromLookup(lookupFrom(nil))

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8000, cfg.StartPort)
	assert.Equal(t, `"Hello"`, cfg.SampleText)
	assert.Equal(t, logger.InfoLevel, cfg.LogLevel)
}

func TestOverrides(t *testing.T) {
	cfg := fromLookup(lookupFrom(map[string]string{
		"FONTRAPAK_LOG_LEVEL":        "debug",
		"FONTRAPAK_JSON_LOGS":        "true",
		"FONTRAPAK_START_PORT":       "9100",
		"FONTRAPAK_SAMPLE_TEXT":      "Hamburgefonstiv",
		"FONTRAPAK_WORKFLOW_COMMAND": "/opt/fontra/bin/fontra-workflow",
		"FONTRAPAK_READY_TIMEOUT":    "5s",
	}))

	assert.Equal(t, logger.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
	assert.Equal(t, 9100, cfg.StartPort)
	assert.Equal(t, "Hamburgefonstiv", cfg.SampleText)
	assert.Equal(t, "/opt/fontra/bin/fontra-workflow", cfg.WorkflowCommand)
	assert.Equal(t, DefaultCopyCommand, cfg.CopyCommand)
	assert.Equal(t, 5*time.Second, cfg.ReadyTimeout)
}

func TestMalformedValuesIgnored(t *testing.T) {
	cfg := fromLookup(lookupFrom(map[string]string{
		"FONTRAPAK_START_PORT":    "70000",
		"FONTRAPAK_READY_TIMEOUT": "soon",
		"DEBUG":                   "1",
	}))

	assert.Equal(t, DefaultStartPort, cfg.StartPort)
	assert.Equal(t, DefaultReadyTimeout, cfg.ReadyTimeout)
	assert.Equal(t, logger.DebugLevel, cfg.LogLevel)
}
