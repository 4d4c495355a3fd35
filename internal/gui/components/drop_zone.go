package components

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
)

const (
	DropPrompt     = "Drop font files here"
	DropPromptSize = 40
)

// DropZone is the large target area filling the main window. Drops are
// delivered to the window, so the zone only renders and highlights.
type DropZone struct {
	container *fyne.Container
	border    *canvas.Rectangle
	prompt    *canvas.Text
}

func NewDropZone() *DropZone {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = theme.Color(theme.ColorNameDisabled)
	border.StrokeWidth = 3
	border.CornerRadius = 12

	prompt := canvas.NewText(DropPrompt, theme.Color(theme.ColorNameForeground))
	prompt.TextSize = DropPromptSize
	prompt.Alignment = fyne.TextAlignCenter

	return &DropZone{
		container: container.NewStack(border, container.NewCenter(prompt)),
		border:    border,
		prompt:    prompt,
	}
}

func (dz *DropZone) GetContainer() *fyne.Container {
	return dz.container
}

func (dz *DropZone) Prompt() string {
	return dz.prompt.Text
}

// SetBusy dims the prompt while a drop is being handled.
func (dz *DropZone) SetBusy(busy bool) {
	if busy {
		dz.prompt.Color = theme.Color(theme.ColorNameDisabled)
		dz.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
	} else {
		dz.prompt.Color = theme.Color(theme.ColorNameForeground)
		dz.border.StrokeColor = theme.Color(theme.ColorNameDisabled)
	}
	dz.prompt.Refresh()
	dz.border.Refresh()
}
