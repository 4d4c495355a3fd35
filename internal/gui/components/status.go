package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container    *fyne.Container
	statusLabel  *widget.Label
	versionLabel *widget.Label
}

func NewStatusBar(version string) *StatusBar {
	statusLabel := widget.NewLabel("Starting server…")
	versionLabel := widget.NewLabel(fmt.Sprintf("Fontra version %s", version))

	return &StatusBar{
		container: container.NewBorder(
			nil, nil,
			statusLabel,
			versionLabel,
		),
		statusLabel:  statusLabel,
		versionLabel: versionLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) Version() string {
	return sb.versionLabel.Text
}
