package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/logger"
)

// Request is the argument list of an export child process.
type Request struct {
	Source string
	Dest   string
	Format backend.Format
}

func (r Request) Validate() error {
	if !filepath.IsAbs(r.Source) {
		return fmt.Errorf("source path must be absolute: %q", r.Source)
	}
	if !filepath.IsAbs(r.Dest) {
		return fmt.Errorf("destination path must be absolute: %q", r.Dest)
	}
	if _, err := os.Stat(r.Source); err != nil {
		return fmt.Errorf("%w: %s", backend.ErrNotFound, r.Source)
	}
	if _, err := backend.ParseFormat(string(r.Format)); err != nil {
		return err
	}
	return nil
}

// Exporter dispatches a request to the compile pipeline or to a structural
// copy, depending on the target format.
type Exporter struct {
	Runner *Runner
	Copier *backend.Copier
	Logger logger.Logger
}

func (e *Exporter) Export(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	e.Logger.Info("Export", "export started", map[string]interface{}{
		"source": req.Source,
		"dest":   req.Dest,
		"format": string(req.Format),
	})

	if !req.Format.Compiled() {
		if err := e.Copier.CopyFont(ctx, req.Source, req.Dest); err != nil {
			return fmt.Errorf("copy to %s: %w", req.Format, err)
		}
		e.Logger.Info("Export", "project copied", nil)
		return nil
	}

	cfg, err := BuildConfig(req.Source, req.Dest, req.Format)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "fontra-pak-workflow-")
	if err != nil {
		return fmt.Errorf("create workflow directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	e.Logger.Debug("Export", "running workflow", map[string]interface{}{
		"filters":  cfg.Filters(),
		"work_dir": workDir,
	})
	if err := e.Runner.Run(ctx, cfg, workDir); err != nil {
		return err
	}
	e.Logger.Info("Export", "font compiled", nil)
	return nil
}
