package gui

import (
	"path/filepath"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const failureTitle = "Fontra Pak"

var _ export.UI = (*Manager)(nil)

// ChooseDestination shows a save dialog proposing the source name with the
// target extension, next to the source.
func (m *Manager) ChooseDestination(source string, format backend.Format, done func(dest string, ok bool)) {
	m.Raise()

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			m.ShowError("Export Error", err)
			done("", false)
			return
		}
		if writer == nil {
			done("", false)
			return
		}
		dest := localPath(writer.URI())
		writer.Close()
		if err := claimPlaceholder(dest); err != nil {
			m.ShowError("Export Error", err)
			done("", false)
			return
		}
		done(dest, true)
	}, m.window)

	d.SetFileName(format.WithExtension(filepath.Base(source)))
	if lister, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(source))); err == nil {
		d.SetLocation(lister)
	}
	d.Show()
}

type progressDialog struct {
	dialog *dialog.CustomDialog
	cancel *widget.Button
}

func (p *progressDialog) DisableCancel() {
	p.cancel.Disable()
}

func (p *progressDialog) Dismiss() {
	p.dialog.Hide()
}

// ShowProgress shows a modal indeterminate progress indicator with a Cancel
// button.
func (m *Manager) ShowProgress(title string, cancel func()) export.Progress {
	m.Raise()

	p := &progressDialog{cancel: widget.NewButton("Cancel", cancel)}
	content := container.NewVBox(
		widget.NewProgressBarInfinite(),
		container.NewCenter(p.cancel),
	)
	p.dialog = dialog.NewCustomWithoutButtons(title, content, m.window)
	p.dialog.Show()
	return p
}

// ShowFailure shows message with the full log text behind a Details toggle.
func (m *Manager) ShowFailure(message, detail string) {
	m.Raise()
	m.logger.Warning("GUIManager", "showing failure", map[string]interface{}{
		"message": message,
	})

	d := dialog.NewCustom(failureTitle, "OK", failureContent(message, detail), m.window)
	d.Resize(fyne.NewSize(520, 240))
	d.Show()
}

func failureContent(message, detail string) fyne.CanvasObject {
	label := widget.NewLabel(message)
	label.Wrapping = fyne.TextWrapWord
	label.TextStyle = fyne.TextStyle{Bold: true}
	if detail == "" {
		return label
	}

	text := widget.NewTextGridFromString(detail)
	scroll := container.NewScroll(text)
	scroll.SetMinSize(fyne.NewSize(480, 200))
	return container.NewVBox(
		label,
		widget.NewAccordion(widget.NewAccordionItem("Details", scroll)),
	)
}
