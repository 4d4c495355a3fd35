package gui

import (
	"fmt"
	"net/url"
	"strings"

	"fontra-pak/internal/gui/components"
	"fontra-pak/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

type Manager struct {
	app        fyne.App
	window     fyne.Window
	logger     logger.Logger
	prefs      *Preferences
	isShutdown bool

	dropZone  *components.DropZone
	statusBar *components.StatusBar

	openProjectHandler func(path string)
	newFontHandler     func(path string)
}

func NewManager(app fyne.App, window fyne.Window, prefs *Preferences, version string, log logger.Logger) *Manager {
	m := &Manager{
		app:       app,
		window:    window,
		logger:    log,
		prefs:     prefs,
		dropZone:  components.NewDropZone(),
		statusBar: components.NewStatusBar(version),
	}

	window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		m.handleDrop(uris)
	})

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"version": version,
	})
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	return container.NewBorder(
		nil,
		m.statusBar.GetContainer(),
		nil, nil,
		m.dropZone.GetContainer(),
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) Preferences() *Preferences {
	return m.prefs
}

// SetOpenProjectHandler receives every dropped or opened project path.
func (m *Manager) SetOpenProjectHandler(handler func(path string)) {
	m.openProjectHandler = handler
}

// SetNewFontHandler receives the path chosen in the New Font dialog.
func (m *Manager) SetNewFontHandler(handler func(path string)) {
	m.newFontHandler = handler
}

func (m *Manager) handleDrop(uris []fyne.URI) {
	m.dropZone.SetBusy(true)
	defer m.dropZone.SetBusy(false)

	for _, uri := range uris {
		if uri.Scheme() != "file" {
			m.logger.Warning("GUIManager", "ignoring non-file drop", map[string]interface{}{
				"uri": uri.String(),
			})
			continue
		}
		m.openProject(localPath(uri))
	}
}

func (m *Manager) openProject(path string) {
	m.logger.Info("GUIManager", "open project", map[string]interface{}{"path": path})
	if m.openProjectHandler != nil {
		m.openProjectHandler(path)
	}
}

// OpenURL hands url to the system browser.
func (m *Manager) OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse editor url: %w", err)
	}
	return m.app.OpenURL(u)
}

func (m *Manager) SetStatus(status string) {
	m.statusBar.SetStatus(status)
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})
	m.Raise()
	dialog.ShowError(err, m.window)
}

// Raise brings the main window to the front before a modal is shown.
func (m *Manager) Raise() {
	m.window.Show()
	m.window.RequestFocus()
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.prefs.SetWindowSize(m.window.Canvas().Size())
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}

// localPath turns a file URI into a native path; Windows URIs carry a
// leading slash before the drive letter.
func localPath(uri fyne.URI) string {
	p := uri.Path()
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = strings.ReplaceAll(p[1:], "/", `\`)
	}
	return p
}
