package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Fontra Pak "+config.AppVersion+"\n", out.String())
}

func TestNewFontCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Fresh.fontra")

	cmd := newNewFontCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, path+"\n", out.String())
	assert.FileExists(t, filepath.Join(path, "font-data.json"))
}

func TestNewFontCommandRejectsOtherFormats(t *testing.T) {
	cmd := newNewFontCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "Fresh.ufo")})

	var ce *backend.CreationError
	assert.True(t, errors.As(cmd.Execute(), &ce))
}

func TestExportCommandNeedsFourArgs(t *testing.T) {
	cmd := newExportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a", "b"})
	assert.Error(t, cmd.Execute())
}

func TestRunExportCopiesSameFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Src.fontra")
	require.NoError(t, backend.CreateNewFont(src))
	dst := filepath.Join(dir, "Dst.fontra")

	var log bytes.Buffer
	err := runExport(context.Background(), config.Default(), []string{src, dst, "fontra"}, &log)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "font-data.json"))
	assert.Contains(t, log.String(), "export started")
	assert.Contains(t, log.String(), "export=Dst.fontra")
}

func TestRunExportUnknownFormat(t *testing.T) {
	err := runExport(context.Background(), config.Default(), []string{"/a.ufo", "/b.woff", "woff"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, backend.ErrUnsupportedFormat)
}

func TestRunExportInterrupted(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Src.fontra")
	require.NoError(t, backend.CreateNewFont(src))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runExport(ctx, config.Default(), []string{src, filepath.Join(dir, "out.ttf"), "ttf"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "interrupted")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "step2 failed: bad glyph", oneLine(errors.New("step2 failed:\n  bad glyph\n")))
}

func TestWatchParentStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, watchParent(ctx, os.Getppid()))
}

func TestWatchParentDetectsReparent(t *testing.T) {
	err := watchParent(context.Background(), -1)
	assert.ErrorIs(t, err, errParentGone)
}

func TestRootHelpListsPublicCommands(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--help"})
	require.NoError(t, rootCmd.Execute())

	help := out.String()
	assert.True(t, strings.Contains(help, "test-startup"))
	assert.True(t, strings.Contains(help, "version"))
	assert.False(t, strings.Contains(help, "serve"))
}
