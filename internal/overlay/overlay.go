// Package overlay computes the column-colored spans painted over the live
// editor. It knows nothing about the editor widget: callers pass the visible
// text and get back byte ranges tagged with a color class.
package overlay

import (
	"strings"

	"rainbow-csv/internal/csvparse"
)

// Span is a colored range of the document. Start and End are byte offsets,
// End exclusive.
type Span struct {
	Start int
	End   int
	Tag   int
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Build returns one span per field of every line in visibleText. base is the
// offset of visibleText inside the full document, so the returned offsets
// address the document directly.
func Build(visibleText string, base int) []Span {
	var spans []Span
	lineStart := base
	for _, line := range strings.Split(visibleText, "\n") {
		spans = append(spans, LineSpans(line, lineStart)...)
		lineStart += len(line) + 1
	}
	return spans
}

// LineSpans returns the spans of a single line starting at offset start.
// Each field after the first begins one byte past the end of the previous
// one, accounting for the consumed delimiter.
func LineSpans(line string, start int) []Span {
	fields := csvparse.Tokenize(line)
	spans := make([]Span, 0, len(fields))
	offset := start
	for i, f := range fields {
		spans = append(spans, Span{Start: offset, End: offset + len(f), Tag: csvparse.ColorClass(i)})
		offset += len(f) + 1
	}
	return spans
}

// Lines builds the overlay for text and groups it per line, with offsets
// relative to the start of each line. Renderers that draw line by line use
// this form.
func Lines(text string) [][]Span {
	lines := strings.Split(text, "\n")
	out := make([][]Span, len(lines))
	for i, line := range lines {
		out[i] = LineSpans(line, 0)
	}
	return out
}
