// Package config reads the application settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"fontra-pak/internal/logger"
)

const (
	AppName    = "Fontra Pak"
	AppID      = "xyz.fontra.fontra-pak"
	AppVersion = "0.1.0"

	DefaultStartPort       = 8000
	DefaultSampleText      = `"Hello"`
	DefaultWorkflowCommand = "fontra-workflow"
	DefaultCopyCommand     = "fontra-copy"
	DefaultReadyTimeout    = 30 * time.Second
)

type Config struct {
	LogLevel        logger.LogLevel
	JSONLogs        bool
	StartPort       int
	SampleText      string
	WorkflowCommand string
	CopyCommand     string
	ReadyTimeout    time.Duration
}

func Default() Config {
	return Config{
		LogLevel:        logger.InfoLevel,
		StartPort:       DefaultStartPort,
		SampleText:      DefaultSampleText,
		WorkflowCommand: DefaultWorkflowCommand,
		CopyCommand:     DefaultCopyCommand,
		ReadyTimeout:    DefaultReadyTimeout,
	}
}

// FromEnv starts from Default and applies FONTRAPAK_* overrides. Malformed
// values are ignored.
func FromEnv() Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()

	if v, ok := lookup("FONTRAPAK_LOG_LEVEL"); ok {
		cfg.LogLevel = logger.ParseLevel(v)
	} else if v, ok := lookup("DEBUG"); ok && v == "1" {
		cfg.LogLevel = logger.DebugLevel
	}

	if v, ok := lookup("FONTRAPAK_JSON_LOGS"); ok {
		cfg.JSONLogs = v == "true" || v == "1"
	}

	if v, ok := lookup("FONTRAPAK_START_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port < 65536 {
			cfg.StartPort = port
		}
	}

	if v, ok := lookup("FONTRAPAK_SAMPLE_TEXT"); ok && v != "" {
		cfg.SampleText = v
	}

	if v, ok := lookup("FONTRAPAK_WORKFLOW_COMMAND"); ok && v != "" {
		cfg.WorkflowCommand = v
	}

	if v, ok := lookup("FONTRAPAK_COPY_COMMAND"); ok && v != "" {
		cfg.CopyCommand = v
	}

	if v, ok := lookup("FONTRAPAK_READY_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReadyTimeout = d
		}
	}

	return cfg
}

// NewLogger builds the process logger described by cfg.
func (c Config) NewLogger() logger.Logger {
	if c.JSONLogs {
		return logger.NewZerolog(os.Stderr, c.LogLevel)
	}
	return logger.NewConsoleLogger(c.LogLevel)
}
