package backend

import (
	"fmt"
	"os"
)

// Info summarises a project for the project server.
type Info struct {
	Path    string   `json:"path"`
	Format  Format   `json:"format"`
	Sources []string `json:"sources,omitempty"`
}

// Describe checks that path is an existing project of a known format. Source
// names are only available for .fontra projects.
func Describe(path string) (*Info, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format.Compiled() {
		return nil, fmt.Errorf("%w: %s files cannot be edited", ErrUnsupportedFormat, format)
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if st.IsDir() != format.IsDirectory() {
		return nil, fmt.Errorf("%w: %s has the wrong shape for %s", ErrUnsupportedFormat, path, format)
	}

	info := &Info{Path: path, Format: format}
	if format == FormatFontra {
		font, err := OpenFontra(path)
		if err != nil {
			return nil, err
		}
		info.Sources = font.SourceNames()
	}
	return info, nil
}
