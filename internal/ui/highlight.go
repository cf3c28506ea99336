package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rainbow-csv/internal/csvparse"
	"rainbow-csv/internal/overlay"
)

// Palette holds one style per column color tag.
type Palette []lipgloss.Style

// NewPalette builds the column styles from hex colors. Fewer than
// csvparse.ColorCount colors cycle.
func NewPalette(colors []string) Palette {
	if len(colors) == 0 {
		return Palette{lipgloss.NewStyle()}
	}
	p := make(Palette, csvparse.ColorCount)
	for i := range p {
		p[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i%len(colors)]))
	}
	return p
}

// Style returns the style for a color tag.
func (p Palette) Style(tag int) lipgloss.Style {
	if len(p) == 0 {
		return lipgloss.NewStyle()
	}
	return p[csvparse.ColorClass(tag)%len(p)]
}

// Column returns the style for column index i.
func (p Palette) Column(i int) lipgloss.Style {
	return p.Style(csvparse.ColorClass(i))
}

// HighlightCSV colors every field of a single line by its column.
func HighlightCSV(line string, p Palette) string {
	if line == "" {
		return line
	}
	return Paint(line, 0, overlay.LineSpans(line, 0), p, -1, -1)[0]
}

// Paint renders text using spans computed for it. base is the document
// offset of text, matching the offsets in spans. cursorLine and cursorCol
// (a rune index) place a reversed cursor cell; pass -1 for none. One string
// is returned per line of text.
func Paint(text string, base int, spans []overlay.Span, p Palette, cursorLine, cursorCol int) []string {
	var out []string
	var b, run strings.Builder
	var line, col, si int
	runTag := -2

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runTag < 0 {
			b.WriteString(run.String())
		} else {
			b.WriteString(p.Style(runTag).Render(run.String()))
		}
		run.Reset()
	}
	endLine := func() {
		flush()
		if line == cursorLine && cursorCol >= col {
			b.WriteString(CursorStyle.Render(" "))
		}
		out = append(out, b.String())
		b.Reset()
		runTag = -2
		line++
		col = 0
	}

	for i, r := range text {
		if r == '\n' {
			endLine()
			continue
		}
		off := base + i
		for si < len(spans) && spans[si].End <= off {
			si++
		}
		tag := -1
		if si < len(spans) && spans[si].Start <= off {
			tag = spans[si].Tag
		}

		if line == cursorLine && col == cursorCol {
			flush()
			b.WriteString(CursorStyle.Render(string(r)))
			runTag = -2
			col++
			continue
		}
		if tag != runTag {
			flush()
			runTag = tag
		}
		run.WriteRune(r)
		col++
	}
	endLine()
	return out
}
