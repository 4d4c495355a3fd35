package gui

import (
	"os"
	"path/filepath"
	"testing"

	"fontra-pak/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	a := test.NewApp()
	w := a.NewWindow("Fontra Pak")
	t.Cleanup(w.Close)
	m := NewManager(a, w, NewPreferences(a.Preferences(), `"Hello"`), "0.1.0", logger.NoOpLogger{})
	w.SetContent(m.GetMainContainer())
	return m
}

func TestDropOpensEveryFile(t *testing.T) {
	m := newTestManager(t)
	var opened []string
	m.SetOpenProjectHandler(func(path string) { opened = append(opened, path) })

	web, err := storage.ParseURI("https://fontra.xyz/")
	require.NoError(t, err)
	m.handleDrop([]fyne.URI{
		storage.NewFileURI("/fonts/A.designspace"),
		web,
		storage.NewFileURI("/fonts/B.ufo"),
	})

	assert.Equal(t, []string{"/fonts/A.designspace", "/fonts/B.ufo"}, opened)
}

func TestLocalPathWindowsDrive(t *testing.T) {
	u, err := storage.ParseURI("file:///C:/Fonts/A.ufo")
	require.NoError(t, err)
	assert.Equal(t, `C:\Fonts\A.ufo`, localPath(u))
}

func TestProgressCancelAndDisable(t *testing.T) {
	m := newTestManager(t)
	cancelled := 0
	p := m.ShowProgress("Exporting A.ttf", func() { cancelled++ }).(*progressDialog)

	test.Tap(p.cancel)
	assert.Equal(t, 1, cancelled)

	p.DisableCancel()
	assert.True(t, p.cancel.Disabled())
	test.Tap(p.cancel)
	assert.Equal(t, 1, cancelled)

	p.Dismiss()
}

func TestFailureContent(t *testing.T) {
	test.NewApp()

	plain := failureContent("Export failed with exit code 2", "")
	label, ok := plain.(*widget.Label)
	require.True(t, ok)
	assert.Equal(t, "Export failed with exit code 2", label.Text)

	withDetail := failureContent("step2 failed: bad glyph", "step1 ok\nstep2 failed: bad glyph\n")
	box, ok := withDetail.(*fyne.Container)
	require.True(t, ok)
	require.Len(t, box.Objects, 2)
	acc := box.Objects[1].(*widget.Accordion)
	require.Len(t, acc.Items, 1)
	grid := acc.Items[0].Detail.(*container.Scroll).Content.(*widget.TextGrid)
	assert.Contains(t, grid.Text(), "step1 ok")
}

func TestShowFailureDoesNotPanic(t *testing.T) {
	m := newTestManager(t)
	m.ShowFailure("boom", "line 1\nboom")
}

func TestClaimPlaceholder(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "A.ttf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.NoError(t, claimPlaceholder(empty))
	assert.NoFileExists(t, empty)

	full := filepath.Join(dir, "B.ttf")
	require.NoError(t, os.WriteFile(full, []byte("font"), 0o644))
	require.NoError(t, claimPlaceholder(full))
	assert.FileExists(t, full)

	assert.NoError(t, claimPlaceholder(filepath.Join(dir, "missing.otf")))
}

func TestShutdownPersistsWindowSize(t *testing.T) {
	m := newTestManager(t)
	m.window.Resize(fyne.NewSize(900, 640))
	m.Shutdown()
	m.Shutdown()

	size := m.prefs.WindowSize()
	assert.Greater(t, size.Width, float32(0))
}

func TestOpenableExtensionsExcludeCompiledFonts(t *testing.T) {
	exts := openableExtensions()
	assert.ElementsMatch(t, []string{".designspace", ".ufo", ".rcjk", ".fontra"}, exts)
	assert.NotContains(t, exts, ".ttf")
	assert.NotContains(t, exts, ".otf")
}

func TestSampleTextIsPersisted(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, `"Hello"`, m.prefs.SampleText())

	m.ShowSampleText()
	m.setSampleText("Hamburgefonstiv")
	assert.Equal(t, "Hamburgefonstiv", m.prefs.SampleText())
}
