package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fontra-pak/internal/bridge"
	"fontra-pak/internal/channel"
	"fontra-pak/internal/config"
	"fontra-pak/internal/projectserver"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errParentGone = errors.New("parent process exited")

func newServeCommand() *cobra.Command {
	var (
		port  int
		token string
	)
	cmd := &cobra.Command{
		Use:    "serve",
		Short:  "Run the project server (started by the GUI)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, token)
		},
	}
	cmd.Flags().IntVar(&port, "port", config.DefaultStartPort, "port to listen on")
	cmd.Flags().StringVar(&token, "version-token", "", "token echoed in the X-Fontra-Version header")
	return cmd
}

func runServe(ctx context.Context, port int, token string) error {
	cfg := config.FromEnv()
	log := cfg.NewLogger()

	tx, err := channel.Inherited()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := projectserver.New(port, token, bridge.New(tx, log), log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		return watchParent(ctx, os.Getppid())
	})

	err = g.Wait()
	if errors.Is(err, errParentGone) {
		log.Warning("Serve", "GUI process is gone, stopping", nil)
		err = nil
	}

	// The sentinel tells the GUI no more messages will follow.
	if cerr := tx.Close(); cerr != nil {
		log.Error("Serve", cerr, nil)
	}
	return err
}

// watchParent returns errParentGone once this process has been reparented.
func watchParent(ctx context.Context, ppid int) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if os.Getppid() != ppid {
				return errParentGone
			}
		}
	}
}
