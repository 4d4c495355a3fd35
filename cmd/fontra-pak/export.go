package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/config"
	"fontra-pak/internal/logger"
	"fontra-pak/internal/workflow"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "export <source> <destination> <format> <log-file>",
		Short:  "Export a font project (started by the GUI)",
		Hidden: true,
		Args:   cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, err := os.OpenFile(args[3], os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open export log: %w", err)
			}
			defer logFile.Close()

			// The GUI starts this process with descriptors 1 and 2 already on
			// the log; the logger, the engine and the final error line are
			// written to it explicitly so a manual run behaves the same.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runExport(ctx, config.FromEnv(), args[:3], logFile); err != nil {
				fmt.Fprintln(logFile, oneLine(err))
				return errReported
			}
			return nil
		},
	}
}

func runExport(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	format, err := backend.ParseFormat(args[2])
	if err != nil {
		return err
	}

	log := logger.NewPlainLogger(out, cfg.LogLevel).With("export", filepath.Base(args[1]))
	exporter := &workflow.Exporter{
		Runner: &workflow.Runner{Command: cfg.WorkflowCommand, Output: out},
		Copier: &backend.Copier{Command: cfg.CopyCommand, Output: out},
		Logger: log,
	}

	err = exporter.Export(ctx, workflow.Request{
		Source: args[0],
		Dest:   args[1],
		Format: format,
	})
	if ctx.Err() != nil {
		return fmt.Errorf("export interrupted: %w", ctx.Err())
	}
	return err
}

// oneLine flattens err so that it is the log's final line.
func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
