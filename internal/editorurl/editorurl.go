// Package editorurl translates between local font project paths and editor
// URLs served by the project server.
package editorurl

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Prefix is the route under which the server exposes projects.
const Prefix = "/editor/-/"

// Build returns the editor URL for the project at path. The path must be
// absolute; a drive letter is dropped and every remaining segment is
// percent-encoded on its own.
func Build(port int, path, sampleText string) (string, error) {
	p, err := Path(path)
	if err != nil {
		return "", err
	}
	u := fmt.Sprintf("http://localhost:%d%s", port, p)
	if sampleText != "" {
		u += "?text=" + encodeFragment(sampleText)
	}
	return u, nil
}

// Path returns the URL path (starting with Prefix) for the project at path.
func Path(path string) (string, error) {
	segments, err := splitAbsolute(path)
	if err != nil {
		return "", err
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return Prefix + strings.Join(escaped, "/"), nil
}

// ProjectPath reverses Path: it decodes each segment of an editor URL path and
// rejoins them with "/". The result is slash separated and rooted at "/".
func ProjectPath(urlPath string) (string, error) {
	rest, ok := strings.CutPrefix(urlPath, Prefix)
	if !ok {
		return "", fmt.Errorf("not an editor path: %q", urlPath)
	}
	if rest == "" {
		return "", fmt.Errorf("empty project path")
	}
	parts := strings.Split(rest, "/")
	for i, part := range parts {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return "", fmt.Errorf("decode segment %q: %w", part, err)
		}
		parts[i] = decoded
	}
	return "/" + strings.Join(parts, "/"), nil
}

func splitAbsolute(path string) ([]string, error) {
	// dropped files on macOS arrive decomposed
	path = norm.NFC.String(path)

	if _, rest, ok := cutDrive(path); ok {
		path = strings.ReplaceAll(rest, `\`, "/")
	} else if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
	} else {
		return nil, fmt.Errorf("project path must be absolute: %q", path)
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("project path has no segments: %q", path)
	}
	return segments, nil
}

// cutDrive splits "C:\dir" or "C:/dir" into the drive and the rest.
func cutDrive(path string) (string, string, bool) {
	if len(path) < 3 || path[1] != ':' || (path[2] != '\\' && path[2] != '/') {
		return "", path, false
	}
	c := path[0]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return "", path, false
	}
	return path[:2], path[2:], true
}

func encodeFragment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
