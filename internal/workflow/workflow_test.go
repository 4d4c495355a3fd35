package workflow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfigTTF(t *testing.T) {
	cfg, err := BuildConfig("/src/A.designspace", "/out/A.ttf", backend.FormatTTF)
	require.NoError(t, err)

	require.Len(t, cfg.Steps, 4)
	assert.Equal(t, []string{"decompose-composites", "drop-unreachable-glyphs"}, cfg.Filters())

	only, ok := cfg.Steps[1].Param("onlyVariableComposites")
	require.True(t, ok)
	assert.Equal(t, true, only)

	out := cfg.Steps[3]
	assert.Equal(t, KindOutput, out.Kind)
	dest, _ := out.Param("destination")
	assert.Equal(t, "/out/A.ttf", dest)
}

func TestBuildConfigOTFSelectsCFF(t *testing.T) {
	cfg, err := BuildConfig("/src/A.ufo", "/out/A.otf", backend.FormatOTF)
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "variable-cff2")
	assert.Contains(t, string(data), "verbose: DEBUG")
}

func TestBuildConfigRejectsProjectFormats(t *testing.T) {
	for _, f := range []backend.Format{backend.FormatUFO, backend.FormatDesignspace, backend.FormatRCJK, backend.FormatFontra} {
		_, err := BuildConfig("/src/A.fontra", "/out/A", f)
		assert.ErrorIs(t, err, ErrUnknownFormat, string(f))
	}
}

func TestConfigYAMLKeepsStepKeyOrder(t *testing.T) {
	cfg, err := BuildConfig("/src/A.fontra", "/out/A.ttf", backend.FormatTTF)
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	text := string(data)
	last := -1
	for _, line := range []string{
		"- input: fontra-read",
		"source: /src/A.fontra",
		"- filter: decompose-composites",
		"onlyVariableComposites: true",
		"- filter: drop-unreachable-glyphs",
		"- output: compile-fontmake",
		"destination: /out/A.ttf",
		"verbose: DEBUG",
	} {
		idx := strings.Index(text, line)
		require.GreaterOrEqual(t, idx, 0, line)
		assert.Greater(t, idx, last, line)
		last = idx
	}

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	require.Len(t, parsed.Steps, 4)
	assert.Equal(t, cfg.Filters(), parsed.Filters())
	assert.Equal(t, "compile-fontmake", parsed.Steps[3].Name)
}

func TestParseConfigRejectsUnknownStep(t *testing.T) {
	_, err := ParseConfig([]byte("steps:\n  - transmogrify: x\n"))
	assert.Error(t, err)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available")
	}
	path := filepath.Join(t.TempDir(), "fake-workflow")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunnerRunsInWorkDir(t *testing.T) {
	script := writeScript(t, "pwd\ncat \"$1\"\n")
	workDir := t.TempDir()

	var out bytes.Buffer
	r := &Runner{Command: script, Output: &out}
	cfg, err := BuildConfig("/src/A.fontra", "/out/A.ttf", backend.FormatTTF)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), cfg, workDir))
	assert.Contains(t, out.String(), "drop-unreachable-glyphs")
	assert.FileExists(t, filepath.Join(workDir, ConfigFileName))

	assert.Contains(t, out.String(), filepath.Base(workDir))
}

func TestRunnerFailure(t *testing.T) {
	script := writeScript(t, "echo 'glyph A: bad contour' >&2\nexit 3\n")

	var out bytes.Buffer
	r := &Runner{Command: script, Output: &out}
	cfg, _ := BuildConfig("/src/A.fontra", "/out/A.ttf", backend.FormatTTF)

	err := r.Run(context.Background(), cfg, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out.String(), "bad contour")
}

func TestExporterCopiesProjectFormats(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "A.fontra")
	require.NoError(t, backend.CreateNewFont(src))

	e := &Exporter{Copier: &backend.Copier{}, Runner: &Runner{Command: "unused"}, Logger: logger.NoOpLogger{}}
	dst := filepath.Join(dir, "B.fontra")
	require.NoError(t, e.Export(context.Background(), Request{Source: src, Dest: dst, Format: backend.FormatFontra}))

	font, err := backend.OpenFontra(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"Regular"}, font.SourceNames())
}

func TestExporterCompilesBinaryFormats(t *testing.T) {
	script := writeScript(t, "grep -q compile-fontmake \"$1\" && echo compiled\n")
	dir := t.TempDir()
	src := filepath.Join(dir, "A.fontra")
	require.NoError(t, backend.CreateNewFont(src))

	var out bytes.Buffer
	e := &Exporter{
		Copier: &backend.Copier{},
		Runner: &Runner{Command: script, Output: &out},
		Logger: logger.NoOpLogger{},
	}
	err := e.Export(context.Background(), Request{Source: src, Dest: filepath.Join(dir, "A.ttf"), Format: backend.FormatTTF})
	require.NoError(t, err)
	assert.Equal(t, "compiled", strings.TrimSpace(out.String()))
}

func TestRequestValidate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "A.fontra")
	require.NoError(t, backend.CreateNewFont(src))

	assert.NoError(t, Request{Source: src, Dest: filepath.Join(dir, "A.ttf"), Format: backend.FormatTTF}.Validate())
	assert.Error(t, Request{Source: "A.fontra", Dest: filepath.Join(dir, "A.ttf"), Format: backend.FormatTTF}.Validate())
	assert.Error(t, Request{Source: src, Dest: "A.ttf", Format: backend.FormatTTF}.Validate())
	assert.Error(t, Request{Source: filepath.Join(dir, "missing.ufo"), Dest: filepath.Join(dir, "A.ttf"), Format: backend.FormatTTF}.Validate())
	assert.Error(t, Request{Source: src, Dest: filepath.Join(dir, "A.woff"), Format: "woff"}.Validate())
}
