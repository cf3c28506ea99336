package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"rainbow-csv/internal/table"
)

// SortRequestedMsg is sent when the user activates a header.
type SortRequestedMsg struct {
	Column int
}

// EmptyPlaceholder is shown instead of a table for a document with nothing
// to show.
const EmptyPlaceholder = "Empty CSV"

// PreviewModel is the read-only table view of a projected document.
type PreviewModel struct {
	grid          table.Grid
	hasGrid       bool
	palette       Palette
	title         string
	cursorRow     int
	cursorCol     int
	focused       bool
	rowOffset     int
	firstCol      int
	width         int
	height        int
	colWidths     []int
	maxColWidth   int
	searching     bool
	search        textinput.Model
	searchQuery   string
	matchRows     []int
	matchPos      int
	inspecting    bool
	inspectScroll int
}

// NewPreviewModel creates a preview pane. maxColWidth caps column widths; 0
// leaves them uncapped.
func NewPreviewModel(p Palette, maxColWidth int) PreviewModel {
	search := textinput.New()
	search.Prompt = ""
	search.CharLimit = 256
	return PreviewModel{
		palette:     p,
		title:       "CSV",
		maxColWidth: maxColWidth,
		search:      search,
	}
}

// SetFocused sets focus state.
func (m *PreviewModel) SetFocused(f bool) {
	m.focused = f
}

// Focused returns focus state.
func (m PreviewModel) Focused() bool {
	return m.focused
}

// SetTitle sets the pane title.
func (m *PreviewModel) SetTitle(t string) {
	m.title = t
}

// SetSize sets the preview dimensions.
func (m *PreviewModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetGrid shows grid. The cursor and scroll position survive re-renders of
// the same document.
func (m *PreviewModel) SetGrid(grid table.Grid) {
	m.grid = grid
	m.hasGrid = true
	m.calcColWidths()

	if m.cursorRow >= len(grid.Rows) {
		m.cursorRow = max(len(grid.Rows)-1, 0)
	}
	if w := grid.Width(); m.cursorCol >= w {
		m.cursorCol = max(w-1, 0)
	}
	if m.firstCol > m.cursorCol {
		m.firstCol = m.cursorCol
	}
	if m.searchQuery != "" {
		m.applyRowFilter()
	}
	m.ensureRowVisible()
}

// SetEmpty shows the empty placeholder.
func (m *PreviewModel) SetEmpty() {
	m.grid = table.Grid{}
	m.hasGrid = false
	m.colWidths = nil
	m.cursorRow = 0
	m.cursorCol = 0
	m.rowOffset = 0
	m.firstCol = 0
	m.matchRows = nil
	m.inspecting = false
}

// Grid returns the grid on display.
func (m PreviewModel) Grid() table.Grid {
	return m.grid
}

// Empty reports whether the placeholder is on display.
func (m PreviewModel) Empty() bool {
	return !m.hasGrid
}

// CursorColumn returns the column under the header cursor.
func (m PreviewModel) CursorColumn() int {
	return m.cursorCol
}

// IsSearching returns whether we're in search mode.
func (m PreviewModel) IsSearching() bool {
	return m.searching
}

// IsInspecting returns whether the cell inspector is open.
func (m PreviewModel) IsInspecting() bool {
	return m.inspecting
}

func (m *PreviewModel) applyRowFilter() {
	if m.searchQuery == "" {
		m.matchRows = nil
		m.matchPos = 0
		return
	}
	m.matchRows = nil
	for ri, row := range m.grid.Rows {
		for _, cell := range row {
			if FuzzyMatch(cell, m.searchQuery) {
				m.matchRows = append(m.matchRows, ri)
				break
			}
		}
	}
	m.matchPos = 0
	if len(m.matchRows) > 0 {
		m.cursorRow = m.matchRows[0]
		m.ensureRowVisible()
	}
}

func headerLabel(h table.HeaderCell) string {
	if ind := h.Indicator(); ind != "" {
		return h.Text + " " + ind
	}
	return h.Text
}

func (m *PreviewModel) calcColWidths() {
	n := m.grid.Width()
	if n == 0 {
		m.colWidths = nil
		return
	}
	m.colWidths = make([]int, n)
	for i := range m.colWidths {
		w := 5
		if i < len(m.grid.Header) {
			// Leave room for an indicator so activating a header doesn't
			// shift the layout.
			w = max(w, runewidth.StringWidth(m.grid.Header[i].Text)+2)
		}
		for ri := range m.grid.Rows {
			w = max(w, runewidth.StringWidth(flattenCell(m.grid.Cell(ri, i))))
		}
		if m.maxColWidth > 0 && w > m.maxColWidth {
			w = m.maxColWidth
		}
		m.colWidths[i] = w
	}
}

// Init satisfies tea.Model.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m PreviewModel) Update(msg tea.Msg) (PreviewModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inspecting {
			return m.updateInspectMode(msg)
		}
		if m.searching {
			return m.updateSearchMode(msg)
		}
		return m.updateNavMode(msg)
	}
	return m, nil
}

func (m PreviewModel) updateNavMode(msg tea.KeyMsg) (PreviewModel, tea.Cmd) {
	if !m.hasGrid {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
			m.ensureRowVisible()
		}
	case "down", "j":
		if m.cursorRow < len(m.grid.Rows)-1 {
			m.cursorRow++
			m.ensureRowVisible()
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
			m.ensureColVisible()
		}
	case "right", "l":
		if m.cursorCol < len(m.colWidths)-1 {
			m.cursorCol++
			m.ensureColVisible()
		}
	case "enter", "s":
		if len(m.colWidths) == 0 {
			return m, nil
		}
		col := m.cursorCol
		return m, func() tea.Msg {
			return SortRequestedMsg{Column: col}
		}
	case "g":
		m.cursorRow = 0
		m.rowOffset = 0
	case "G":
		if len(m.grid.Rows) > 0 {
			m.cursorRow = len(m.grid.Rows) - 1
			m.ensureRowVisible()
		}
	case "pgup":
		m.cursorRow -= m.visibleRowCount()
		if m.cursorRow < 0 {
			m.cursorRow = 0
		}
		m.ensureRowVisible()
	case "pgdown":
		m.cursorRow += m.visibleRowCount()
		if m.cursorRow >= len(m.grid.Rows) {
			m.cursorRow = len(m.grid.Rows) - 1
		}
		if m.cursorRow < 0 {
			m.cursorRow = 0
		}
		m.ensureRowVisible()
	case "/":
		m.searching = true
		m.searchQuery = ""
		m.matchRows = nil
		m.matchPos = 0
		m.search.SetValue("")
		return m, m.search.Focus()
	case "n":
		if len(m.matchRows) > 0 {
			m.matchPos++
			if m.matchPos >= len(m.matchRows) {
				m.matchPos = 0
			}
			m.cursorRow = m.matchRows[m.matchPos]
			m.ensureRowVisible()
		}
	case "N":
		if len(m.matchRows) > 0 {
			m.matchPos--
			if m.matchPos < 0 {
				m.matchPos = len(m.matchRows) - 1
			}
			m.cursorRow = m.matchRows[m.matchPos]
			m.ensureRowVisible()
		}
	case "v":
		if len(m.grid.Rows) > 0 {
			m.inspecting = true
			m.inspectScroll = 0
		}
	}
	return m, nil
}

func (m PreviewModel) updateSearchMode(msg tea.KeyMsg) (PreviewModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchQuery = ""
		m.matchRows = nil
		m.matchPos = 0
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		if len(m.matchRows) > 0 {
			m.cursorRow = m.matchRows[m.matchPos]
			m.ensureRowVisible()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.searchQuery {
		m.searchQuery = q
		m.applyRowFilter()
	}
	return m, cmd
}

func (m PreviewModel) updateInspectMode(msg tea.KeyMsg) (PreviewModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "v":
		m.inspecting = false
		m.inspectScroll = 0
	case "j", "down":
		m.inspectScroll++
	case "k", "up":
		if m.inspectScroll > 0 {
			m.inspectScroll--
		}
	case "G":
		m.inspectScroll = 99999
	case "g":
		m.inspectScroll = 0
	}
	return m, nil
}

func (m PreviewModel) renderInspectOverlay(w, h int) string {
	var b strings.Builder

	colName := ""
	if m.cursorCol < len(m.grid.Header) {
		colName = m.grid.Header[m.cursorCol].Text
	}

	title := HeaderStyle.Render(fmt.Sprintf("%s [row %d]", colName, m.cursorRow+1))
	hint := DimText.Render("j/k scroll | Esc close")
	b.WriteString(title + "  " + hint)
	b.WriteString("\n")
	b.WriteString(DimText.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	val := m.grid.Cell(m.cursorRow, m.cursorCol)
	lines := strings.Split(runewidth.Wrap(val, w), "\n")

	viewH := h - 4
	if viewH < 1 {
		viewH = 1
	}

	scroll := m.inspectScroll
	maxScroll := len(lines) - viewH
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}

	endLine := scroll + viewH
	if endLine > len(lines) {
		endLine = len(lines)
	}

	for i := scroll; i < endLine; i++ {
		b.WriteString(m.palette.Column(m.cursorCol).Render(lines[i]))
		if i < endLine-1 {
			b.WriteString("\n")
		}
	}

	if len(lines) > viewH {
		b.WriteString("\n")
		b.WriteString(DimText.Render(fmt.Sprintf("[lines %d-%d of %d]", scroll+1, endLine, len(lines))))
	}

	return b.String()
}

func (m *PreviewModel) ensureRowVisible() {
	pageRows := m.visibleRowCount()
	if m.cursorRow < m.rowOffset {
		m.rowOffset = m.cursorRow
	} else if m.cursorRow >= m.rowOffset+pageRows {
		m.rowOffset = m.cursorRow - pageRows + 1
	}
}

func (m *PreviewModel) ensureColVisible() {
	if m.cursorCol < m.firstCol {
		m.firstCol = m.cursorCol
	}
	spanW := 0
	for i := m.firstCol; i <= m.cursorCol && i < len(m.colWidths); i++ {
		spanW += m.colWidths[i] + 3 // +3 for padding/separator
	}
	innerW := m.width - 4 // borders + margin
	for spanW > innerW && m.firstCol < m.cursorCol {
		spanW -= m.colWidths[m.firstCol] + 3
		m.firstCol++
	}
}

func (m PreviewModel) visibleRowCount() int {
	// Available height minus border (2) + title (1) + header row (1) + separator (1)
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the preview pane.
func (m PreviewModel) View() string {
	borderStyle := UnfocusedBorder
	if m.focused {
		borderStyle = FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 10 {
		innerW = 10
	}
	innerH := m.height - 2
	if innerH < 3 {
		innerH = 3
	}

	titleLeft := HeaderStyle.Render(m.title)
	titleRight := DimText.Render("Ctrl+P edit | Enter sort | / search")
	gap := innerW - lipgloss.Width(titleLeft) - lipgloss.Width(titleRight)
	if gap < 1 {
		gap = 1
	}
	header := titleLeft + strings.Repeat(" ", gap) + titleRight

	var content string
	switch {
	case !m.hasGrid:
		content = EmptyText.Render(EmptyPlaceholder)
	case m.inspecting:
		content = m.renderInspectOverlay(innerW, innerH-1)
	default:
		content = m.renderTable(innerW, innerH-1)
	}

	return borderStyle.Width(innerW).Height(innerH).MaxHeight(innerH + 2).Render(header + "\n" + content)
}

func (m PreviewModel) isMatchRow(rowIdx int) bool {
	for _, fi := range m.matchRows {
		if fi == rowIdx {
			return true
		}
	}
	return false
}

func (m PreviewModel) renderTable(w, h int) string {
	if len(m.colWidths) == 0 {
		return ""
	}

	var b strings.Builder

	if m.searching || m.searchQuery != "" {
		searchDisp := SearchLabel.Render("/")
		if m.searching {
			searchDisp += m.search.View()
		} else {
			searchDisp += SearchInput.Render(m.searchQuery)
		}
		if len(m.matchRows) > 0 {
			searchDisp += DimText.Render(fmt.Sprintf(" [%d/%d]", m.matchPos+1, len(m.matchRows)))
		} else if m.searchQuery != "" {
			searchDisp += DimText.Render(" [no matches]")
		}
		b.WriteString(searchDisp)
		b.WriteString("\n")
		h--
	}

	visibleCols := m.visibleColumns(w)

	// Header
	heads := make([]string, 0, len(visibleCols))
	for _, ci := range visibleCols {
		colW := m.colWidths[ci]
		label := ""
		if ci < len(m.grid.Header) {
			label = headerLabel(m.grid.Header[ci])
		}
		style := m.palette.Column(ci).Bold(true)
		if ci == m.cursorCol && m.focused {
			style = style.Reverse(true)
		}
		heads = append(heads, style.Render(fitCell(label, colW)))
	}
	b.WriteString(strings.Join(heads, " | "))
	b.WriteString("\n")

	// Separator
	rules := make([]string, 0, len(visibleCols))
	for _, ci := range visibleCols {
		rules = append(rules, strings.Repeat("─", m.colWidths[ci]))
	}
	b.WriteString(DimText.Render(strings.Join(rules, "─┼─")))
	b.WriteString("\n")

	// Data rows
	pageRows := h - 3 // header + sep + padding
	if pageRows < 1 {
		pageRows = 1
	}

	startRow := m.rowOffset
	endRow := startRow + pageRows
	if endRow > len(m.grid.Rows) {
		endRow = len(m.grid.Rows)
	}

	for ri := startRow; ri < endRow; ri++ {
		isMatch := len(m.matchRows) > 0 && m.isMatchRow(ri)
		cells := make([]string, 0, len(visibleCols))
		for _, ci := range visibleCols {
			cell := fitCell(flattenCell(m.grid.Cell(ri, ci)), m.colWidths[ci])

			var style lipgloss.Style
			switch {
			case ri == m.cursorRow && ci == m.cursorCol && m.focused:
				style = CellSelected
			case isMatch:
				style = m.palette.Column(ci).Inherit(SearchMatch)
			default:
				style = m.palette.Column(ci)
			}
			cells = append(cells, style.Render(cell))
		}
		b.WriteString(strings.Join(cells, " | "))
		if ri < endRow-1 {
			b.WriteString("\n")
		}
	}

	// Scroll indicator
	if len(m.grid.Rows) > pageRows {
		scrollInfo := fmt.Sprintf(" [%d-%d of %d]", startRow+1, endRow, len(m.grid.Rows))
		b.WriteString("\n" + DimText.Render(scrollInfo))
	}

	return b.String()
}

func (m PreviewModel) visibleColumns(availWidth int) []int {
	if len(m.colWidths) == 0 {
		return nil
	}
	var cols []int
	spanW := 0
	for i := m.firstCol; i < len(m.colWidths); i++ {
		needed := m.colWidths[i]
		if len(cols) > 0 {
			needed += 3 // " | " separator
		}
		if spanW+needed > availWidth && len(cols) > 0 {
			break
		}
		cols = append(cols, i)
		spanW += needed
	}
	return cols
}

func flattenCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "↵")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

// fitCell truncates s to width display cells and pads it to exactly width.
func fitCell(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

func truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
