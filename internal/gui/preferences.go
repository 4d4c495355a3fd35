package gui

import (
	"fyne.io/fyne/v2"
)

const (
	prefWindowWidth  = "window.width"
	prefWindowHeight = "window.height"
	prefSampleText   = "editor.sampleText"
	prefActiveFolder = "files.activeFolder"
)

var DefaultWindowSize = fyne.NewSize(720, 480)

// Preferences persists window geometry and the last used editor settings
// under the application id.
type Preferences struct {
	store             fyne.Preferences
	defaultSampleText string
}

func NewPreferences(store fyne.Preferences, defaultSampleText string) *Preferences {
	return &Preferences{store: store, defaultSampleText: defaultSampleText}
}

func (p *Preferences) WindowSize() fyne.Size {
	w := p.store.FloatWithFallback(prefWindowWidth, float64(DefaultWindowSize.Width))
	h := p.store.FloatWithFallback(prefWindowHeight, float64(DefaultWindowSize.Height))
	if w <= 0 || h <= 0 {
		return DefaultWindowSize
	}
	return fyne.NewSize(float32(w), float32(h))
}

func (p *Preferences) SetWindowSize(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	p.store.SetFloat(prefWindowWidth, float64(size.Width))
	p.store.SetFloat(prefWindowHeight, float64(size.Height))
}

func (p *Preferences) SampleText() string {
	return p.store.StringWithFallback(prefSampleText, p.defaultSampleText)
}

func (p *Preferences) SetSampleText(text string) {
	p.store.SetString(prefSampleText, text)
}

// ActiveFolder is the directory file dialogs start in; empty if unknown.
func (p *Preferences) ActiveFolder() string {
	return p.store.String(prefActiveFolder)
}

func (p *Preferences) SetActiveFolder(dir string) {
	p.store.SetString(prefActiveFolder, dir)
}
