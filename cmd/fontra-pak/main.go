package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"fontra-pak/internal/app"
	"fontra-pak/internal/config"
	"fontra-pak/internal/logger"

	"github.com/spf13/cobra"
)

// errReported marks failures whose message was already written where the
// caller looks for it.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:           "fontra-pak",
	Short:         "Fontra Pak font editor launcher",
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI(app.Options{})
	},
}

func init() {
	rootCmd.AddCommand(
		newServeCommand(),
		newExportCommand(),
		newTestStartupCommand(),
		newNewFontCommand(),
		newVersionCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "fontra-pak: %v\n", err)
		}
		os.Exit(1)
	}
}

func runGUI(opts app.Options) error {
	cfg := config.FromEnv()
	if opts.TestStartup && os.Getenv("FONTRAPAK_LOG_LEVEL") == "" {
		// stderr must stay empty when the startup check passes
		cfg.LogLevel = logger.ErrorLevel
	}
	log := cfg.NewLogger()

	log.Info("Main", "starting", map[string]interface{}{
		"version":    config.AppVersion,
		"go_version": runtime.Version(),
	})

	application, err := app.NewApplication(cfg, opts, log)
	if err != nil {
		return fmt.Errorf("application initialization failed: %w", err)
	}
	return application.Run()
}

func newTestStartupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-startup",
		Short: "Start the application, print test-startup once ready, and quit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(app.Options{TestStartup: true, Stdout: cmd.OutOrStdout()})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}
}
