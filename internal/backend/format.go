// Package backend covers the font project formats Fontra Pak deals with: it
// identifies them, creates new projects and copies projects between
// locations and formats.
package backend

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatTTF         Format = "ttf"
	FormatOTF         Format = "otf"
	FormatDesignspace Format = "designspace"
	FormatFontra      Format = "fontra"
	FormatRCJK        Format = "rcjk"
	FormatUFO         Format = "ufo"
)

// ExportFormats lists the export targets in menu order.
var ExportFormats = []Format{FormatTTF, FormatOTF, FormatDesignspace, FormatUFO, FormatRCJK, FormatFontra}

var (
	ErrUnsupportedFormat = errors.New("unsupported font format")
	ErrNotFound          = errors.New("font project not found")
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatTTF, FormatOTF, FormatDesignspace, FormatFontra, FormatRCJK, FormatUFO:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf derives the format from the path extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Compiled reports whether f is a binary font produced by the compile workflow
// rather than an editable project.
func (f Format) Compiled() bool {
	return f == FormatTTF || f == FormatOTF
}

// IsDirectory reports whether projects of this format are stored as folders.
func (f Format) IsDirectory() bool {
	return f == FormatFontra || f == FormatUFO || f == FormatRCJK
}

// WithExtension appends the format extension to path unless it already ends
// with it.
func (f Format) WithExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), f.Extension()) {
		return path
	}
	return path + f.Extension()
}

// CreationError reports that a new font project could not be written.
type CreationError struct {
	Path string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("cannot create font at %s: %v", e.Path, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
