package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"rainbow-csv/internal/overlay"
)

// gutterWidth is the line number column plus its two spaces.
const gutterWidth = 6

// EditorModel wraps a textarea for CSV editing. The textarea holds the text
// and cursor; View paints it with the column overlay. Lines are never
// wrapped: the view scrolls in both directions to keep the cursor visible.
type EditorModel struct {
	textarea  textarea.Model
	palette   Palette
	title     string
	focused   bool
	width     int
	height    int
	rowOffset int
	colOffset int
}

// NewEditorModel creates a new CSV editor.
func NewEditorModel(p Palette) EditorModel {
	ta := textarea.New()
	ta.Placeholder = "Type CSV here... (Ctrl+P preview)"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = "  "
	ta.SetWidth(40)
	ta.SetHeight(5)
	return EditorModel{
		textarea: ta,
		palette:  p,
		title:    "CSV",
	}
}

// SetFocused sets focus state.
func (m *EditorModel) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns the focus state.
func (m EditorModel) Focused() bool {
	return m.focused
}

// SetTitle sets the pane title.
func (m *EditorModel) SetTitle(t string) {
	m.title = t
}

// SetSize sets the editor dimensions.
func (m *EditorModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Account for border (2) and header (1)
	innerW := w - 2
	innerH := h - 4
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 2 {
		innerH = 2
	}
	m.textarea.SetWidth(innerW)
	m.textarea.SetHeight(innerH)
	m.scrollToCursor()
}

// Init satisfies the tea.Model interface.
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.scrollToCursor()
	return m, cmd
}

// Value returns the current editor text.
func (m EditorModel) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the editor text, keeping the cursor line when possible.
func (m *EditorModel) SetValue(text string) {
	line := m.textarea.Line()
	m.textarea.SetValue(text)
	for m.textarea.Line() > line {
		m.textarea.CursorUp()
	}
	m.textarea.CursorEnd()
	m.scrollToCursor()
}

// View renders the editor pane.
func (m EditorModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := m.innerWidth()
	innerH := m.height - 2
	if innerH < 3 {
		innerH = 3
	}

	titleLeft := HeaderStyle.Render(m.title)
	titleRight := SubHeaderStyle.Render("Ctrl+P preview | Ctrl+S save")
	gap := innerW - lipgloss.Width(titleLeft) - lipgloss.Width(titleRight)
	if gap < 1 {
		gap = 1
	}
	header := ansi.Truncate(titleLeft+strings.Repeat(" ", gap)+titleRight, innerW, "")

	content := header + "\n" + m.renderHighlightedText()
	return borderStyle.Width(innerW).Height(innerH).MaxHeight(innerH + 2).Render(content)
}

func (m EditorModel) innerWidth() int {
	if m.width-2 < 10 {
		return 10
	}
	return m.width - 2
}

// textWidth is the number of cells available for line content.
func (m EditorModel) textWidth() int {
	if w := m.innerWidth() - gutterWidth; w > 1 {
		return w
	}
	return 1
}

func (m EditorModel) pageRows() int {
	if m.height-4 < 1 {
		return 1
	}
	return m.height - 4
}

// scrollToCursor moves the offsets only as far as needed to keep the cursor
// cell on screen.
func (m *EditorModel) scrollToCursor() {
	rows := m.pageRows()
	line := m.textarea.Line()
	if line < m.rowOffset {
		m.rowOffset = line
	} else if line >= m.rowOffset+rows {
		m.rowOffset = line - rows + 1
	}
	if last := m.textarea.LineCount() - rows; m.rowOffset > last {
		m.rowOffset = max(last, 0)
	}

	lines := strings.Split(m.textarea.Value(), "\n")
	x := 0
	if line < len(lines) {
		li := m.textarea.LineInfo()
		r := []rune(lines[line])
		col := min(li.StartColumn+li.ColumnOffset, len(r))
		x = runewidth.StringWidth(string(r[:col]))
	}
	w := m.textWidth()
	if x < m.colOffset {
		m.colOffset = x
	} else if x >= m.colOffset+w {
		m.colOffset = x - w + 1
	}
}

// visibleRange returns the first and one-past-last lines in view.
func (m EditorModel) visibleRange(total int) (int, int) {
	start := min(m.rowOffset, total)
	end := min(start+m.pageRows(), total)
	return start, end
}

func (m EditorModel) renderHighlightedText() string {
	text := m.textarea.Value()
	if text == "" && m.textarea.Placeholder != "" {
		return m.textarea.View()
	}

	lines := strings.Split(text, "\n")
	start, end := m.visibleRange(len(lines))

	base := 0
	for i := 0; i < start; i++ {
		base += len(lines[i]) + 1
	}
	visible := strings.Join(lines[start:end], "\n")
	spans := overlay.Build(visible, base)

	cursorLine, cursorCol := -1, -1
	if m.focused {
		cursorLine = m.textarea.Line() - start
		li := m.textarea.LineInfo()
		cursorCol = li.StartColumn + li.ColumnOffset
	}
	painted := Paint(visible, base, spans, m.palette, cursorLine, cursorCol)

	var result strings.Builder
	w := m.textWidth()
	for i, line := range painted {
		result.WriteString(DimText.Render(fmt.Sprintf("%*d", gutterWidth-2, start+i+1)))
		result.WriteString("  ")
		result.WriteString(ansi.Cut(line, m.colOffset, m.colOffset+w))
		if i < len(painted)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
