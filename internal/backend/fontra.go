package backend

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	fontDataFileName  = "font-data.json"
	glyphInfoFileName = "glyph-info.csv"
	glyphsDirName     = "glyphs"

	DefaultUnitsPerEm = 1000
	DefaultSourceName = "Regular"
)

// LineMetric is a vertical metric with its overshoot zone.
type LineMetric struct {
	Value float64 `json:"value"`
	Zone  float64 `json:"zone"`
}

type Source struct {
	Name                        string                `json:"name"`
	Location                    map[string]float64    `json:"location"`
	LineMetricsHorizontalLayout map[string]LineMetric `json:"lineMetricsHorizontalLayout"`
}

type Axes struct {
	Axes     []json.RawMessage `json:"axes"`
	Mappings []json.RawMessage `json:"mappings"`
}

// Font is the part of a .fontra project's font-data.json that Fontra Pak reads
// and writes.
type Font struct {
	UnitsPerEm int                    `json:"unitsPerEm"`
	Axes       Axes                   `json:"axes"`
	Sources    map[string]Source      `json:"sources"`
	CustomData map[string]interface{} `json:"customData"`
}

// DefaultLineMetrics are the metrics of a freshly created source.
func DefaultLineMetrics() map[string]LineMetric {
	return map[string]LineMetric{
		"ascender":  {Value: 750, Zone: 16},
		"descender": {Value: -250, Zone: -16},
		"xHeight":   {Value: 500, Zone: 16},
		"capHeight": {Value: 750, Zone: 16},
		"baseline":  {Value: 0, Zone: -16},
	}
}

// SourceNames returns the source names sorted alphabetically.
func (f *Font) SourceNames() []string {
	names := make([]string, 0, len(f.Sources))
	for _, s := range f.Sources {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// CreateNewFont writes a minimal project at path with a single default source.
// Only .fontra projects can be created; anything else is a CreationError.
func CreateNewFont(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return &CreationError{Path: path, Err: err}
	}
	if format != FormatFontra {
		return &CreationError{Path: path, Err: fmt.Errorf("%w: cannot create %s projects", ErrUnsupportedFormat, format)}
	}
	if _, err := os.Lstat(path); err == nil {
		return &CreationError{Path: path, Err: os.ErrExist}
	}

	font := &Font{
		UnitsPerEm: DefaultUnitsPerEm,
		Axes:       Axes{Axes: []json.RawMessage{}, Mappings: []json.RawMessage{}},
		Sources: map[string]Source{
			newSourceID(): {
				Name:                        DefaultSourceName,
				Location:                    map[string]float64{},
				LineMetricsHorizontalLayout: DefaultLineMetrics(),
			},
		},
		CustomData: map[string]interface{}{},
	}

	if err := writeFontra(path, font); err != nil {
		_ = os.RemoveAll(path)
		return &CreationError{Path: path, Err: err}
	}
	return nil
}

// OpenFontra reads the font data of a .fontra project.
func OpenFontra(path string) (*Font, error) {
	data, err := os.ReadFile(filepath.Join(path, fontDataFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	var font Font
	if err := json.Unmarshal(data, &font); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fontDataFileName, err)
	}
	return &font, nil
}

func writeFontra(path string, font *Font) error {
	if err := os.MkdirAll(filepath.Join(path, glyphsDirName), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(font, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, fontDataFileName), append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, glyphInfoFileName), []byte("glyph name;code points\n"), 0o644)
}

func newSourceID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("backend: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
