package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OpenFileMsg asks the app to open Path.
type OpenFileMsg struct {
	Path string
}

// SaveAsMsg asks the app to save the document to Path.
type SaveAsMsg struct {
	Path string
}

// ForgetRecentMsg asks the app to drop Path from the recent files.
type ForgetRecentMsg struct {
	Path string
}

type FilesModalClosedMsg struct{}

type FilesModalMode int

const (
	FilesModalList FilesModalMode = iota
	FilesModalOpen
	FilesModalSaveAs
)

// FilesModalModel lists recent files and prompts for paths to open or save
// to.
type FilesModalModel struct {
	visible       bool
	mode          FilesModalMode
	files         []string
	cursor        int
	input         textinput.Model
	err           string
	width         int
	height        int
	confirmDelete bool
}

func NewFilesModalModel() FilesModalModel {
	input := textinput.New()
	input.Placeholder = "data.csv"
	input.CharLimit = 1024
	input.Width = 40
	return FilesModalModel{input: input}
}

// Open shows the recent files list.
func (m *FilesModalModel) Open(recent []string) tea.Cmd {
	m.visible = true
	m.mode = FilesModalList
	m.files = recent
	m.cursor = 0
	m.err = ""
	m.confirmDelete = false
	m.input.Blur()
	return nil
}

// OpenSaveAs shows the save-as prompt directly.
func (m *FilesModalModel) OpenSaveAs() tea.Cmd {
	m.visible = true
	m.files = nil
	m.confirmDelete = false
	return m.prompt(FilesModalSaveAs)
}

func (m *FilesModalModel) prompt(mode FilesModalMode) tea.Cmd {
	m.mode = mode
	m.err = ""
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *FilesModalModel) Close() {
	m.visible = false
	m.err = ""
	m.confirmDelete = false
	m.input.Blur()
}

func (m FilesModalModel) Visible() bool {
	return m.visible
}

func (m FilesModalModel) Mode() FilesModalMode {
	return m.mode
}

func (m *FilesModalModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// NormalizePath trims a typed path and gives it a .csv extension when it has
// none.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path != "" && filepath.Ext(path) == "" {
		path += ".csv"
	}
	return path
}

func (m FilesModalModel) Update(msg tea.Msg) (FilesModalModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDelete {
			m.confirmDelete = false
			if (msg.String() == "y" || msg.String() == "Y") && m.cursor < len(m.files) {
				path := m.files[m.cursor]
				m.files = append(m.files[:m.cursor:m.cursor], m.files[m.cursor+1:]...)
				if m.cursor >= len(m.files) && m.cursor > 0 {
					m.cursor--
				}
				return m, func() tea.Msg { return ForgetRecentMsg{Path: path} }
			}
			return m, nil
		}

		switch m.mode {
		case FilesModalList:
			return m.updateList(msg)
		case FilesModalOpen, FilesModalSaveAs:
			return m.updateInput(msg)
		}
	}

	if m.mode != FilesModalList {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m FilesModalModel) updateList(msg tea.KeyMsg) (FilesModalModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+o":
		m.Close()
		return m, func() tea.Msg { return FilesModalClosedMsg{} }
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.files) {
			path := m.files[m.cursor]
			m.Close()
			return m, func() tea.Msg { return OpenFileMsg{Path: path} }
		}
	case "o", "n":
		return m, m.prompt(FilesModalOpen)
	case "s":
		return m, m.prompt(FilesModalSaveAs)
	case "d", "x":
		if m.cursor < len(m.files) {
			m.confirmDelete = true
		}
	}
	return m, nil
}

func (m FilesModalModel) updateInput(msg tea.KeyMsg) (FilesModalModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.files == nil {
			m.Close()
			return m, func() tea.Msg { return FilesModalClosedMsg{} }
		}
		m.mode = FilesModalList
		m.err = ""
		m.input.Blur()
		return m, nil
	case "enter":
		path := NormalizePath(m.input.Value())
		if path == "" {
			m.err = "Path cannot be empty"
			return m, nil
		}
		mode := m.mode
		m.Close()
		if mode == FilesModalSaveAs {
			return m, func() tea.Msg { return SaveAsMsg{Path: path} }
		}
		return m, func() tea.Msg { return OpenFileMsg{Path: path} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m FilesModalModel) View() string {
	if !m.visible {
		return ""
	}

	modalW := 60
	if m.width > 0 && modalW > m.width-4 {
		modalW = m.width - 4
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render("CSV Files"))
	b.WriteString("\n")

	if m.confirmDelete && m.cursor < len(m.files) {
		b.WriteString("\n")
		b.WriteString(ErrorText.Render(fmt.Sprintf("  Forget %s?", filepath.Base(m.files[m.cursor]))))
		b.WriteString("\n")
		b.WriteString(DimText.Render("  y confirm | any key cancel"))
		b.WriteString("\n")
	} else if m.mode == FilesModalOpen || m.mode == FilesModalSaveAs {
		label := "Open file"
		if m.mode == FilesModalSaveAs {
			label = "Save as"
		}
		b.WriteString("\n")
		b.WriteString(AccentText.Render("  " + label))
		b.WriteString("\n")
		b.WriteString("  " + m.input.View())
		b.WriteString("\n")

		if m.err != "" {
			b.WriteString(ErrorText.Render("  " + m.err))
			b.WriteString("\n")
		}

		b.WriteString(DimText.Render("  Enter confirm | Esc back"))
		b.WriteString("\n")
	} else {
		b.WriteString(DimText.Render("  Enter open | o open path | s save as | d forget | Esc close"))
		b.WriteString("\n\n")

		if len(m.files) == 0 {
			b.WriteString(DimText.Render("  No recent files"))
			b.WriteString("\n")
		} else {
			maxShow := 15
			if m.height > 0 {
				maxShow = m.height - 10
				if maxShow < 5 {
					maxShow = 5
				}
			}

			start := 0
			if m.cursor >= maxShow {
				start = m.cursor - maxShow + 1
			}
			end := start + maxShow
			if end > len(m.files) {
				end = len(m.files)
			}

			for i := start; i < end; i++ {
				name := truncate(m.files[i], modalW-8)
				if i == m.cursor {
					b.WriteString(ListCursorItem.Width(modalW - 4).Render("  " + name))
				} else {
					b.WriteString(ListItem.Render("  " + name))
				}
				b.WriteString("\n")
			}
		}

		if m.err != "" {
			b.WriteString(ErrorText.Render("  " + m.err))
			b.WriteString("\n")
		}
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 2).
		Width(modalW)

	rendered := modalStyle.Render(b.String())

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, rendered)
	}
	return rendered
}
