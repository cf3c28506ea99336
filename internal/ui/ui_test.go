package ui

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainbow-csv/internal/config"
	"rainbow-csv/internal/overlay"
	"rainbow-csv/internal/table"
)

var sgr = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return sgr.ReplaceAllString(s, "")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestPaintKeepsText(t *testing.T) {
	text := "a,\"b,c\",d\n1,,2\n"
	p := NewPalette(config.DefaultPalette)
	lines := Paint(text, 10, overlay.Build(text, 10), p, -1, -1)

	require.Len(t, lines, 3)
	assert.Equal(t, "a,\"b,c\",d", plain(lines[0]))
	assert.Equal(t, "1,,2", plain(lines[1]))
	assert.Equal(t, "", plain(lines[2]))
}

func TestPaintCursor(t *testing.T) {
	p := NewPalette(config.DefaultPalette)
	text := "ab,c\nxy"

	lines := Paint(text, 0, overlay.Build(text, 0), p, 1, 2)
	assert.Equal(t, "xy ", plain(lines[1]))
	assert.Equal(t, "ab,c", plain(lines[0]))

	lines = Paint(text, 0, overlay.Build(text, 0), p, 0, 1)
	assert.Equal(t, "ab,c", plain(lines[0]))
}

func TestHighlightCSV(t *testing.T) {
	p := NewPalette(config.DefaultPalette)
	assert.Equal(t, "", HighlightCSV("", p))
	assert.Equal(t, `x,"y,z"`, plain(HighlightCSV(`x,"y,z"`, p)))
}

func TestPaletteCycles(t *testing.T) {
	p := NewPalette(config.DefaultPalette)
	assert.Equal(t, p.Column(0).GetForeground(), p.Column(8).GetForeground())
	assert.NotEqual(t, p.Column(0).GetForeground(), p.Column(1).GetForeground())

	short := NewPalette([]string{"#111111", "#222222"})
	assert.Equal(t, short.Column(0).GetForeground(), short.Column(2).GetForeground())
}

func newPreview(t *testing.T, doc string, s table.SortState) PreviewModel {
	t.Helper()
	m := NewPreviewModel(NewPalette(config.DefaultPalette), 40)
	m.SetSize(120, 30)
	m.SetFocused(true)
	grid, ok := table.Project(doc, s)
	require.True(t, ok)
	m.SetGrid(grid)
	return m
}

func TestPreviewSortRequest(t *testing.T) {
	m := newPreview(t, "name,age\nbob,30\nann,25", table.Unsorted())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.CursorColumn())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SortRequestedMsg{Column: 1}, run(t, cmd))

	_, cmd = m.Update(runes("s"))
	assert.Equal(t, SortRequestedMsg{Column: 1}, run(t, cmd))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.CursorColumn())
}

func TestPreviewViewShowsIndicatorAndCells(t *testing.T) {
	m := newPreview(t, "name,age\nbob,30\nann,25", table.SortState{Column: 1, Direction: table.Descending})
	view := plain(m.View())
	assert.Contains(t, view, "age ▼")
	assert.Contains(t, view, "bob")
	assert.Less(t, strings.Index(view, "bob"), strings.Index(view, "ann"))
}

func TestPreviewShortRows(t *testing.T) {
	m := newPreview(t, "a,b,c\n1\n1,2,3,4", table.Unsorted())
	assert.Equal(t, 4, m.Grid().Width())
	assert.Contains(t, plain(m.View()), "4")
}

func TestPreviewEmpty(t *testing.T) {
	m := newPreview(t, "a\n1", table.Unsorted())
	m.SetEmpty()
	assert.True(t, m.Empty())
	assert.Contains(t, plain(m.View()), EmptyPlaceholder)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, m.Empty())
}

func TestPreviewCursorSurvivesRerender(t *testing.T) {
	m := newPreview(t, "a,b\n1,2\n3,4", table.Unsorted())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	grid, _ := table.Project("a,b\n1,2\n3,4", table.SortState{Column: 1, Direction: table.Ascending})
	m.SetGrid(grid)
	assert.Equal(t, 1, m.CursorColumn())

	grid, _ = table.Project("a\n1", table.Unsorted())
	m.SetGrid(grid)
	assert.Equal(t, 0, m.CursorColumn())
}

func TestPreviewSearch(t *testing.T) {
	m := newPreview(t, "name\nbob\nann\nbobby", table.Unsorted())

	m, _ = m.Update(runes("/"))
	require.True(t, m.IsSearching())
	m, _ = m.Update(runes("bob"))
	assert.Equal(t, []int{0, 2}, m.matchRows)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.IsSearching())
	m, _ = m.Update(runes("n"))
	assert.Equal(t, 2, m.cursorRow)

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.matchRows)
}

func TestPreviewInspect(t *testing.T) {
	m := newPreview(t, "note\n\"long value\"", table.Unsorted())
	m, _ = m.Update(runes("v"))
	require.True(t, m.IsInspecting())
	assert.Contains(t, plain(m.View()), "long value")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsInspecting())
}

func TestTruncateAndFit(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
	assert.Equal(t, "ab   ", fitCell("ab", 5))
	assert.Equal(t, "日本 ", fitCell("日本", 5))
}

func TestEditorModel(t *testing.T) {
	m := NewEditorModel(NewPalette(config.DefaultPalette))
	m.SetSize(80, 20)
	m.SetValue("a,b\n1,2")
	assert.Equal(t, "a,b\n1,2", m.Value())

	m, _ = m.Update(runes("x"))
	assert.Equal(t, "a,b\n1,2", m.Value())

	m.SetFocused(true)
	m, _ = m.Update(runes("3"))
	assert.Equal(t, "a,b3\n1,2", m.Value())

	m.SetValue("a,b3\n1,2\n5,6")
	m, _ = m.Update(runes("!"))
	assert.Equal(t, "a,b3!\n1,2\n5,6", m.Value())
	assert.Contains(t, plain(m.View()), "a,b")
}

func numberedLines(n int, format string) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf(format, i)
	}
	return strings.Join(lines, "\n")
}

func TestEditorLongLinesStayInPane(t *testing.T) {
	m := NewEditorModel(NewPalette(config.DefaultPalette))
	m.SetSize(40, 12)
	m.SetFocused(true)
	m.SetValue(numberedLines(20, strings.Repeat("abc,", 32)+"end%02d"))

	view := m.View()
	assert.LessOrEqual(t, lipgloss.Height(view), 12)
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
	// the cursor sits at the end of line 1, so the tail is scrolled into view
	assert.Contains(t, plain(view), "end00")
}

func TestEditorKeepsScrollOffset(t *testing.T) {
	m := NewEditorModel(NewPalette(config.DefaultPalette))
	m.SetSize(40, 12)
	m.SetFocused(true)
	m.SetValue(numberedLines(20, "r%02d,x"))

	for i := 0; i < 15; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, 8, m.rowOffset)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 8, m.rowOffset)
	view := plain(m.View())
	assert.Contains(t, view, "   9  r08,x")
	assert.NotContains(t, view, "r07,x")

	for i := 0; i < 7; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, 7, m.rowOffset)
}

func TestStatusBarHints(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(100)
	assert.Contains(t, plain(m.View()), "Ctrl+P preview")

	m.SetHints("y quit")
	assert.Contains(t, plain(m.View()), "y quit")
	assert.NotContains(t, plain(m.View()), "Ctrl+P preview")

	m.SetMessage("Saved", MsgSuccess)
	assert.Contains(t, plain(m.View()), "Saved")
	assert.NotContains(t, plain(m.View()), "y quit")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "data.csv", NormalizePath(" data "))
	assert.Equal(t, "data.tsv", NormalizePath("data.tsv"))
	assert.Equal(t, "", NormalizePath("  "))
}

func TestFilesModalList(t *testing.T) {
	m := NewFilesModalModel()
	m.Open([]string{"/a.csv", "/b.csv"})
	require.True(t, m.Visible())

	m, _ = m.Update(runes("j"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, OpenFileMsg{Path: "/b.csv"}, run(t, cmd))
	assert.False(t, m.Visible())
}

func TestFilesModalForget(t *testing.T) {
	m := NewFilesModalModel()
	m.Open([]string{"/a.csv", "/b.csv"})

	m, _ = m.Update(runes("d"))
	m, cmd := m.Update(runes("y"))
	assert.Equal(t, ForgetRecentMsg{Path: "/a.csv"}, run(t, cmd))
	assert.Equal(t, []string{"/b.csv"}, m.files)
}

func TestFilesModalSaveAs(t *testing.T) {
	m := NewFilesModalModel()
	m.OpenSaveAs()
	require.Equal(t, FilesModalSaveAs, m.Mode())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, m.Visible())

	m, _ = m.Update(runes("out"))
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SaveAsMsg{Path: "out.csv"}, run(t, cmd))
	assert.False(t, m.Visible())
}
