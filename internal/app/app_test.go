package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainbow-csv/internal/config"
	"rainbow-csv/internal/csvview"
	"rainbow-csv/internal/editor"
	"rainbow-csv/internal/ui"
	"rainbow-csv/internal/watch"
)

func newTestModel(t *testing.T, doc *editor.Document) *Model {
	t.Helper()
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	m := NewModel(doc, Options{Config: cfg})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openCSV(t *testing.T, content string) *editor.Document {
	t.Helper()
	doc, err := editor.Open(writeCSV(t, content))
	require.NoError(t, err)
	return doc
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeText(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func TestToggleShowsPreview(t *testing.T) {
	m := newTestModel(t, editor.NewDocument("", "name,age\nbob,30"))
	assert.Equal(t, csvview.EditMode, m.Mode())
	assert.True(t, m.editing)

	press(m, tea.KeyCtrlP)
	assert.Equal(t, csvview.PreviewMode, m.Mode())
	assert.False(t, m.editing)
	assert.Equal(t, "name", m.preview.Grid().Header[0].Text)
	assert.Contains(t, m.View(), "bob")

	press(m, tea.KeyCtrlP)
	assert.Equal(t, csvview.EditMode, m.Mode())
	assert.True(t, m.editing)
}

func TestTypingSchedulesAutosave(t *testing.T) {
	doc := openCSV(t, "a\n1")
	m := newTestModel(t, doc)

	cmd := typeText(m, "2")
	assert.NotNil(t, cmd)
	assert.Equal(t, "a2\n1", doc.Text())
	assert.True(t, doc.Dirty())
	assert.Equal(t, 1, m.saveSeq)

	typeText(m, "3")
	assert.Equal(t, 2, m.saveSeq)

	m.Update(autosaveMsg{seq: 1})
	assert.True(t, doc.Dirty())

	m.Update(autosaveMsg{seq: 2})
	assert.False(t, doc.Dirty())
	data, err := os.ReadFile(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, "a23\n1", string(data))
}

func TestSortRequestAndModeExitReset(t *testing.T) {
	m := newTestModel(t, editor.NewDocument("", "name,age\nbob,30\nann,25"))
	press(m, tea.KeyCtrlP)

	m.Update(ui.SortRequestedMsg{Column: 1})
	assert.Equal(t, "ann", m.preview.Grid().Cell(0, 0))
	assert.Contains(t, m.View(), "age ▲")

	press(m, tea.KeyCtrlP)
	press(m, tea.KeyCtrlP)
	assert.False(t, m.ctrl.SortState().Sorted())
	assert.Equal(t, "bob", m.preview.Grid().Cell(0, 0))
}

func TestSortKeptWhenResetDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Preview.ResetSortOnModeExit = false
	m := NewModel(editor.NewDocument("", "n\n2\n1"), Options{Config: cfg, StartInPreview: true})
	assert.Equal(t, csvview.PreviewMode, m.Mode())

	m.Update(ui.SortRequestedMsg{Column: 0})
	press(m, tea.KeyCtrlP)
	press(m, tea.KeyCtrlP)
	assert.True(t, m.ctrl.SortState().Sorted())
	assert.Equal(t, "1", m.preview.Grid().Cell(0, 0))
}

func TestEmptyDocumentPreview(t *testing.T) {
	m := newTestModel(t, editor.NewDocument("", "  \n"))
	press(m, tea.KeyCtrlP)
	assert.True(t, m.preview.Empty())
	assert.Contains(t, m.View(), ui.EmptyPlaceholder)
}

func TestSaveUnnamedOpensSaveAs(t *testing.T) {
	doc := editor.NewDocument("", "x,y")
	m := newTestModel(t, doc)

	press(m, tea.KeyCtrlS)
	require.True(t, m.modal.Visible())
	assert.Equal(t, ui.FilesModalSaveAs, m.modal.Mode())

	path := filepath.Join(t.TempDir(), "out.csv")
	m.Update(ui.SaveAsMsg{Path: path})
	assert.Equal(t, path, doc.Path())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,y", string(data))
	require.NotEmpty(t, m.cfg.Recent)
	assert.Equal(t, path, m.cfg.Recent[0].Path)
}

func TestQuitConfirmsUnsavedUnnamed(t *testing.T) {
	m := newTestModel(t, editor.NewDocument("", "a"))
	typeText(m, "b")

	cmd := press(m, tea.KeyCtrlQ)
	assert.Nil(t, cmd)
	assert.True(t, m.confirmQuit)
	m.statusbar.SetMessage("", ui.MsgInfo)
	assert.Contains(t, ansi.Strip(m.statusbar.View()), "y quit without saving")

	cmd = typeText(m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, "ab", m.doc.Text())
	m.statusbar.SetMessage("", ui.MsgInfo)
	assert.NotContains(t, ansi.Strip(m.statusbar.View()), "y quit without saving")

	press(m, tea.KeyCtrlQ)
	cmd = typeText(m, "y")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitSavesNamed(t *testing.T) {
	doc := openCSV(t, "a")
	m := newTestModel(t, doc)
	typeText(m, "b")

	cmd := press(m, tea.KeyCtrlQ)
	require.NotNil(t, cmd)
	assert.False(t, doc.Dirty())
}

func TestFileChangedOnDisk(t *testing.T) {
	t.Run("clean reloads", func(t *testing.T) {
		doc := openCSV(t, "a\n1")
		m := newTestModel(t, doc)
		require.NoError(t, os.WriteFile(doc.Path(), []byte("a\n9"), 0644))

		m.Update(fileEventMsg{event: watch.Event{Path: doc.Path(), Timestamp: time.Now()}})
		assert.Equal(t, "a\n9", doc.Text())
		assert.Equal(t, "a\n9", m.editor.Value())
		assert.False(t, doc.Dirty())
	})

	t.Run("own save is not a change", func(t *testing.T) {
		doc := openCSV(t, "a\n1")
		m := newTestModel(t, doc)
		typeText(m, "x")
		m.Update(autosaveMsg{seq: m.saveSeq})
		require.False(t, doc.Dirty())
		typeText(m, "y")
		m.statusbar.SetMessage("", ui.MsgInfo)

		m.Update(fileEventMsg{event: watch.Event{Path: doc.Path(), Timestamp: time.Now()}})
		assert.Equal(t, "axy\n1", doc.Text())
		assert.True(t, doc.Dirty())
		assert.NotContains(t, m.statusbar.Message(), "changed on disk")
	})

	t.Run("dirty keeps edits", func(t *testing.T) {
		doc := openCSV(t, "a\n1")
		m := newTestModel(t, doc)
		typeText(m, "x")
		require.NoError(t, os.WriteFile(doc.Path(), []byte("a\n9"), 0644))

		m.Update(fileEventMsg{event: watch.Event{Path: doc.Path(), Timestamp: time.Now()}})
		assert.Equal(t, "ax\n1", doc.Text())
		assert.Contains(t, m.statusbar.Message(), "changed on disk")
	})
}

func TestOpenFileSwitchesDocument(t *testing.T) {
	m := newTestModel(t, openCSV(t, "a\n1"))
	other := writeCSV(t, "b\n2")

	m.Update(ui.OpenFileMsg{Path: other})
	assert.Equal(t, other, m.doc.Path())
	assert.Equal(t, "b\n2", m.editor.Value())
	require.NotEmpty(t, m.cfg.Recent)
	assert.Equal(t, other, m.cfg.Recent[0].Path)
}

func TestOpenRefusedWhenDirty(t *testing.T) {
	doc := openCSV(t, "a\n1")
	m := newTestModel(t, doc)
	typeText(m, "x")

	m.Update(ui.OpenFileMsg{Path: writeCSV(t, "b")})
	assert.Same(t, doc, m.doc)
	assert.Contains(t, m.statusbar.Message(), "Unsaved changes")
}

func TestCloseFlushesAndReleases(t *testing.T) {
	doc := openCSV(t, "a")
	m := newTestModel(t, doc)
	typeText(m, "b")
	require.Equal(t, 1, doc.Subscribers())

	require.NoError(t, m.Close())
	assert.Zero(t, doc.Subscribers())
	assert.False(t, m.editing)
	data, err := os.ReadFile(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, "ab", string(data))
}
