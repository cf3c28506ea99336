package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rainbow-csv/internal/config"
	"rainbow-csv/internal/ui"
)

// ---------------------------------------------------------------------------
// pickerModel – choose from recently opened files
// ---------------------------------------------------------------------------

// csvRecent returns the indexes of recent entries that are CSV files.
func csvRecent(cfg *config.Config) []int {
	var idx []int
	for i, r := range cfg.Recent {
		if strings.EqualFold(filepath.Ext(r.Path), ".csv") {
			idx = append(idx, i)
		}
	}
	return idx
}

type pickerModel struct {
	cfg     *config.Config
	entries []int
	cursor  int
	done    bool
	newFile bool
	path    string
	width   int
	height  int
}

func newPickerModel(cfg *config.Config) pickerModel {
	return pickerModel{cfg: cfg, entries: csvRecent(cfg)}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil
		case "n", "o":
			m.done = true
			m.newFile = true
			return m, tea.Quit
		case "d", "x":
			if len(m.entries) > 0 {
				m.cfg.Delete(m.entries[m.cursor])
				m.cfg.Save()
				m.entries = csvRecent(m.cfg)
				if m.cursor >= len(m.entries) && m.cursor > 0 {
					m.cursor--
				}
				if len(m.entries) == 0 {
					m.done = true
					m.newFile = true
					return m, tea.Quit
				}
			}
			return m, nil
		case "enter":
			if len(m.entries) == 0 {
				return m, nil
			}
			m.done = true
			m.path = m.cfg.Recent[m.entries[m.cursor]].Path
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m pickerModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginBottom(1)

	var b strings.Builder

	b.WriteString(titleStyle.Render("rainbow-csv - Recent Files"))
	b.WriteString("\n\n")

	for i, idx := range m.entries {
		r := m.cfg.Recent[idx]
		display := filepath.Base(r.Path)
		detail := "  " + filepath.Dir(r.Path)
		if !r.OpenedAt.IsZero() {
			detail += "  " + r.OpenedAt.Format("2006-01-02 15:04")
		}
		if _, err := os.Stat(r.Path); err != nil {
			detail += "  (missing)"
		}
		display += ui.DimText.Render(detail)

		if i == m.cursor {
			b.WriteString(ui.AccentText.Bold(true).Render("  ▸ " + display))
		} else {
			b.WriteString("    " + display)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.DimText.Render("  Enter to open | n other file | d forget | q quit"))
	b.WriteString("\n")

	return b.String()
}

// ---------------------------------------------------------------------------
// promptModel – type a path to open
// ---------------------------------------------------------------------------

type promptModel struct {
	input  textinput.Model
	err    string
	done   bool
	path   string
	width  int
	height int
}

func newPromptModel() promptModel {
	input := textinput.New()
	input.Placeholder = "data.csv"
	input.CharLimit = 1024
	input.Width = 60
	input.Focus()
	return promptModel{input: input}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// validatePromptPath accepts an empty path (new unsaved document) or a CSV
// file path. A path without extension gets .csv.
func validatePromptPath(raw string) (string, error) {
	path := ui.NormalizePath(raw)
	if path == "" {
		return "", nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return "", fmt.Errorf("%s is not a .csv file", filepath.Base(path))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			path, err := validatePromptPath(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.done = true
			m.path = path
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginBottom(1)

	var b strings.Builder

	b.WriteString(titleStyle.Render("rainbow-csv - Open File"))
	b.WriteString("\n\n")
	b.WriteString(ui.AccentText.Render("  Path"))
	b.WriteString("\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(ui.ErrorText.Render(fmt.Sprintf("  %s", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(ui.DimText.Render("  Enter to open (empty for a new file) | Esc to quit"))
	b.WriteString("\n")

	return b.String()
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
