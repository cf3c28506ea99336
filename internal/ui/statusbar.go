package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"rainbow-csv/internal/table"
)

// MessageType represents the type of status message.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgSuccess
	MsgError
)

// StatusBarModel is the context-aware status bar at the bottom.
type StatusBarModel struct {
	message     string
	messageType MessageType
	messageTime time.Time
	mode        string
	dirty       bool
	sort        table.SortState
	sortLabel   string
	searching   bool
	hints       string
	width       int
}

// NewStatusBarModel creates a new status bar.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{mode: "edit"}
}

// SetWidth sets the status bar width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// SetMessage sets a status message.
func (m *StatusBarModel) SetMessage(msg string, t MessageType) {
	m.message = msg
	m.messageType = t
	m.messageTime = time.Now()
}

// Message returns the current status message.
func (m StatusBarModel) Message() string {
	return m.message
}

// SetMode sets the mode badge.
func (m *StatusBarModel) SetMode(mode string) {
	m.mode = mode
}

// SetDirty marks unsaved changes.
func (m *StatusBarModel) SetDirty(dirty bool) {
	m.dirty = dirty
}

// SetSort shows the active sort. label is the sorted column's header.
func (m *StatusBarModel) SetSort(s table.SortState, label string) {
	m.sort = s
	m.sortLabel = label
}

// SetSearchMode sets whether the preview search is active.
func (m *StatusBarModel) SetSearchMode(searching bool) {
	m.searching = searching
}

// SetHints replaces the default keybinding hints.
func (m *StatusBarModel) SetHints(hints string) {
	m.hints = hints
}

// ClearExpiredMessage clears success messages after 3 seconds.
func (m *StatusBarModel) ClearExpiredMessage() {
	if m.messageType == MsgSuccess && time.Since(m.messageTime) > 3*time.Second {
		m.message = ""
	}
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	badge := ModeBadgeStyle.Render(strings.ToUpper(m.mode))

	// Left side: keybinding hints
	hints := m.contextHints()

	// Right side: dirty flag + sort info
	var rightParts []string
	if m.dirty {
		rightParts = append(rightParts, ModifiedText.Render("● modified"))
	}
	if m.sort.Sorted() {
		label := m.sortLabel
		if label == "" {
			label = fmt.Sprintf("column %d", m.sort.Column+1)
		}
		rightParts = append(rightParts, fmt.Sprintf("%s %s", label, m.sort.Direction.Indicator()))
	}
	right := strings.Join(rightParts, " | ")

	// Message overlay
	if m.message != "" {
		var msgStyle lipgloss.Style
		switch m.messageType {
		case MsgError:
			msgStyle = StatusErrorStyle
		case MsgSuccess:
			msgStyle = StatusSuccessStyle
		default:
			msgStyle = StatusBarStyle
		}
		hints = msgStyle.Render(m.message)
	}

	w := m.width
	if w < 20 {
		w = 20
	}
	left := badge + " " + hints
	gap := w - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return StatusBarStyle.Width(w).Render(line)
}

func (m StatusBarModel) contextHints() string {
	if m.hints != "" {
		return m.hints
	}
	if m.searching {
		return "Type to search | Enter keep | Esc clear"
	}
	switch m.mode {
	case "preview":
		return "Arrows navigate | Enter/s sort | / search | v inspect | Ctrl+P edit"
	default:
		return "Type to edit | Ctrl+P preview | Ctrl+S save | Ctrl+Q quit"
	}
}
