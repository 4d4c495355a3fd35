package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/editorurl"
	"fontra-pak/internal/export"
	"fontra-pak/internal/logger"
)

// Window is the part of the GUI the handlers drive.
type Window interface {
	OpenURL(rawURL string) error
	ShowError(title string, err error)
	ShowFailure(message, detail string)
}

type Exporter interface {
	ExportAs(source string, options map[string]interface{}) *export.Job
}

type Scheduler interface {
	Schedule(fn func()) string
}

// Handlers react to user and server requests. Every method runs on the GUI
// thread.
type Handlers struct {
	window     Window
	exports    Exporter
	scheduler  Scheduler
	port       int
	sampleText func() string
	remember   func(dir string)
	createFont func(path string) error
	logger     logger.Logger
}

func NewHandlers(window Window, exports Exporter, scheduler Scheduler, port int, log logger.Logger) *Handlers {
	return &Handlers{
		window:     window,
		exports:    exports,
		scheduler:  scheduler,
		port:       port,
		sampleText: func() string { return "" },
		remember:   func(string) {},
		createFont: backend.CreateNewFont,
		logger:     log,
	}
}

// HandleOpenProject opens the editor for path in the browser.
func (h *Handlers) HandleOpenProject(path string) {
	if f, err := backend.FormatOf(path); err == nil && f.Compiled() {
		h.window.ShowError("Open Error", fmt.Errorf("%s is a compiled font and cannot be edited", filepath.Base(path)))
		return
	}
	u, err := editorurl.Build(h.port, path, h.sampleText())
	if err != nil {
		h.window.ShowError("Open Error", err)
		return
	}
	h.remember(filepath.Dir(path))

	h.logger.Info("Handlers", "opening editor", map[string]interface{}{"url": u})
	if err := h.window.OpenURL(u); err != nil {
		h.window.ShowError("Open Error", err)
	}
}

// HandleNewFont creates an empty project off the GUI thread and opens it
// once it exists.
func (h *Handlers) HandleNewFont(path string) {
	go func() {
		err := h.createFont(path)
		h.scheduler.Schedule(func() {
			if err != nil {
				h.logger.Error("Handlers", err, map[string]interface{}{"path": path})
				var ce *backend.CreationError
				if errors.As(err, &ce) {
					h.window.ShowFailure("Could not create "+filepath.Base(ce.Path), ce.Err.Error())
				} else {
					h.window.ShowFailure("Could not create "+filepath.Base(path), err.Error())
				}
				return
			}
			h.HandleOpenProject(path)
		})
	}()
}

// HandleExportAs answers an exportAs request from the server.
func (h *Handlers) HandleExportAs(path string, options map[string]interface{}) {
	h.exports.ExportAs(path, options)
}
