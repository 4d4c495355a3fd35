package gui

import (
	"os"
	"path/filepath"

	"fontra-pak/internal/backend"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const newFontFileName = "Untitled.fontra"

// openableExtensions lists the project formats the editor can open; compiled
// fonts are export targets only.
func openableExtensions() []string {
	var exts []string
	for _, f := range backend.ExportFormats {
		if !f.Compiled() {
			exts = append(exts, f.Extension())
		}
	}
	return exts
}

func (m *Manager) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Font…", m.ShowNewFont),
		fyne.NewMenuItem("Open…", m.ShowOpenFile),
		fyne.NewMenuItem("Open Folder…", m.ShowOpenFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Sample Text…", m.ShowSampleText),
	)
	// Fyne appends Quit to the first menu on every platform.

	m.window.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

func (m *Manager) ShowOpenFile() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			m.ShowError("Open Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := localPath(reader.URI())
		reader.Close()

		m.prefs.SetActiveFolder(filepath.Dir(path))
		m.openProject(path)
	}, m.window)
	d.SetFilter(storage.NewExtensionFileFilter(openableExtensions()))
	m.startIn(d)
	d.Show()
}

// ShowOpenFolder opens directory based projects such as .ufo and .fontra.
func (m *Manager) ShowOpenFolder() {
	d := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			m.ShowError("Open Error", err)
			return
		}
		if dir == nil {
			return
		}
		path := localPath(dir)
		m.prefs.SetActiveFolder(filepath.Dir(path))
		m.openProject(path)
	}, m.window)
	m.startIn(d)
	d.Show()
}

func (m *Manager) ShowNewFont() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			m.ShowError("New Font Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := localPath(writer.URI())
		writer.Close()
		if err := claimPlaceholder(path); err != nil {
			m.ShowError("New Font Error", err)
			return
		}

		path = backend.FormatFontra.WithExtension(path)
		m.prefs.SetActiveFolder(filepath.Dir(path))
		if m.newFontHandler != nil {
			m.newFontHandler(path)
		}
	}, m.window)
	d.SetFileName(newFontFileName)
	m.startIn(d)
	d.Show()
}

// ShowSampleText edits the text the editor opens with.
func (m *Manager) ShowSampleText() {
	entry := widget.NewEntry()
	entry.SetText(m.prefs.SampleText())

	d := dialog.NewForm("Sample Text", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(ok bool) {
			if ok {
				m.setSampleText(entry.Text)
			}
		}, m.window)
	d.Show()
}

func (m *Manager) setSampleText(text string) {
	m.prefs.SetSampleText(text)
	m.logger.Debug("GUIManager", "sample text changed", map[string]interface{}{
		"text": text,
	})
}

type locatable interface {
	SetLocation(fyne.ListableURI)
}

func (m *Manager) startIn(d locatable) {
	dir := m.prefs.ActiveFolder()
	if dir == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		m.logger.Debug("GUIManager", "active folder unavailable", map[string]interface{}{
			"folder": dir,
		})
		return
	}
	d.SetLocation(lister)
}

// claimPlaceholder removes the empty file the save dialog creates, leaving
// the path free for a project directory or an export.
func claimPlaceholder(path string) error {
	st, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if st.Mode().IsRegular() && st.Size() == 0 {
		return os.Remove(path)
	}
	return nil
}
