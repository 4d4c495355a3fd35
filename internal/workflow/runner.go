package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ConfigFileName is the name the config is written under in the working
// directory.
const ConfigFileName = "workflow.yaml"

// Runner invokes the external workflow engine.
type Runner struct {
	Command string
	Output  io.Writer
}

// Run writes cfg into workDir and runs the engine there. The engine stops at
// the first failing glyph; no --continue-on-error is passed, so a partial font
// is never produced.
func (r *Runner) Run(ctx context.Context, cfg Config, workDir string) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("encode workflow config: %w", err)
	}
	configPath := filepath.Join(workDir, ConfigFileName)
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write workflow config: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Command, ConfigFileName)
	cmd.Dir = workDir
	cmd.Stdout = r.Output
	cmd.Stderr = r.Output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("workflow interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("workflow %s failed: %w", r.Command, err)
	}
	return nil
}
