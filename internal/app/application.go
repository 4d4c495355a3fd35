// Package app assembles the GUI process: window, server child, channel
// consumer, dispatcher and export coordinator.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"fontra-pak/internal/config"
	"fontra-pak/internal/dispatch"
	"fontra-pak/internal/export"
	"fontra-pak/internal/gui"
	"fontra-pak/internal/logger"
	"fontra-pak/internal/mediator"
	"fontra-pak/internal/server"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

type Options struct {
	// TestStartup prints "test-startup" once the server answers and quits.
	TestStartup bool
	Stdout      io.Writer
}

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	guiManager *gui.Manager
	dispatcher *dispatch.Dispatcher
	server     *server.Process
	mediator   *mediator.Mediator
	exports    *export.Coordinator
	lifecycle  *Lifecycle
	config     config.Config
	options    Options
	logger     logger.Logger
	startErr   error
}

func NewApplication(cfg config.Config, opts Options, log logger.Logger) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	fyneApp := app.NewWithID(config.AppID)
	window := fyneApp.NewWindow(config.AppName)
	prefs := gui.NewPreferences(fyneApp.Preferences(), cfg.SampleText)

	window.Resize(prefs.WindowSize())
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version": config.AppVersion,
	})

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	port, err := server.FindFreePort(cfg.StartPort)
	if err != nil {
		return nil, err
	}

	proc, err := server.Start(server.Options{
		Executable: exe,
		Env:        append(os.Environ(), "FONTRAPAK_LOG_LEVEL="+cfg.LogLevel.String()),
		Port:       port,
		Output:     os.Stderr,
	}, log)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(fyne.Do, log)
	guiManager := gui.NewManager(fyneApp, window, prefs, config.AppVersion, log)

	launcher, err := export.SelfLauncher()
	if err != nil {
		proc.Shutdown()
		return nil, err
	}
	launcher.Env = []string{"FONTRAPAK_LOG_LEVEL=" + cfg.LogLevel.String()}
	exports := export.NewCoordinator(launcher, guiManager, dispatcher, log)

	handlers := NewHandlers(guiManager, exports, dispatcher, port, log)
	handlers.sampleText = prefs.SampleText
	handlers.remember = prefs.SetActiveFolder

	med := mediator.New(proc.Receiver(), dispatcher, mediator.Handlers{
		ExportAs: handlers.HandleExportAs,
	}, log)

	guiManager.SetOpenProjectHandler(handlers.HandleOpenProject)
	guiManager.SetNewFontHandler(handlers.HandleNewFont)
	guiManager.SetupMenus()

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		guiManager: guiManager,
		dispatcher: dispatcher,
		server:     proc,
		mediator:   med,
		exports:    exports,
		lifecycle:  NewLifecycle(dispatcher, proc, med, exports, guiManager, log),
		config:     cfg,
		options:    opts,
		logger:     log,
	}

	log.Info("Application", "initialization complete", map[string]interface{}{
		"port": port,
	})
	return a, nil
}

func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})
	a.fyneApp.Lifecycle().SetOnStopped(a.lifecycle.Shutdown)

	a.lifecycle.Listen()
	go func() {
		<-a.lifecycle.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.mediator.Start()
	go a.waitForServer()

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	// Blocks until a shutdown started elsewhere has completed.
	a.lifecycle.Shutdown()
	if a.startErr != nil {
		return a.startErr
	}
	return a.mediator.Err()
}

func (a *Application) waitForServer() {
	err := a.server.WaitReady(context.Background(), a.config.ReadyTimeout)

	a.dispatcher.Schedule(func() {
		if err != nil && a.options.TestStartup {
			a.startErr = err
			a.fyneApp.Quit()
			return
		}
		if err != nil {
			a.guiManager.SetStatus("Server unavailable")
			a.guiManager.ShowError("Server Error", err)
			return
		}
		a.guiManager.SetStatus("Serving on " + a.server.Addr())

		if a.options.TestStartup {
			fmt.Fprintln(a.options.Stdout, "test-startup")
			a.fyneApp.Quit()
		}
	})
}
