// Package bridge is the server-side hook for operations that need a decision
// from the GUI process.
package bridge

import (
	"fmt"

	"fontra-pak/internal/channel"
	"fontra-pak/internal/logger"
)

// ActionExportAs asks the GUI to pick a destination and export a project.
const ActionExportAs = "exportAs"

type Sender interface {
	Send(msg channel.Message) error
}

// Bridge forwards GUI requests over the cross-process channel. It never waits
// for the GUI's answer.
type Bridge struct {
	sender Sender
	logger logger.Logger
}

func New(sender Sender, log logger.Logger) *Bridge {
	return &Bridge{sender: sender, logger: log}
}

// RequestExportAs queues an export request for the project at projectPath.
// options must carry the target "format".
func (b *Bridge) RequestExportAs(projectPath string, options map[string]interface{}) error {
	if _, ok := options["format"].(string); !ok {
		return fmt.Errorf("export request for %s: missing format option", projectPath)
	}

	b.logger.Debug("ProjectManagerBridge", "export requested", map[string]interface{}{
		"path":   projectPath,
		"format": options["format"],
	})
	return b.sender.Send(channel.Message{
		Action:  ActionExportAs,
		Path:    projectPath,
		Options: options,
	})
}
