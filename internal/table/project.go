// Package table projects CSV text into a sortable grid for the preview.
package table

import (
	"slices"
	"strings"

	"golang.org/x/text/language"

	"rainbow-csv/internal/csvparse"
)

// HeaderCell is one rendered header.
type HeaderCell struct {
	Text      string
	Direction Direction
}

// Indicator returns the sort marker for the cell, "" when unsorted.
func (h HeaderCell) Indicator() string {
	return h.Direction.Indicator()
}

// Grid is the tabular projection of a document. Rows keep whatever field
// count their line had; they are never padded to the header width.
type Grid struct {
	Header []HeaderCell
	Rows   [][]string
	State  SortState
}

// Width returns the widest row or header length.
func (g Grid) Width() int {
	w := len(g.Header)
	for _, r := range g.Rows {
		w = max(w, len(r))
	}
	return w
}

// Cell returns the display value at row, col or "" when the row is short.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	return csvparse.Field(g.Rows[row], col)
}

type options struct {
	lang language.Tag
}

// Option configures Project.
type Option func(*options)

// WithLanguage selects the collation used for non-numeric values.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// Lines splits a document into preview lines: zero-length lines are dropped,
// whitespace-only lines are kept and a trailing carriage return is removed.
func Lines(doc string) []string {
	raw := strings.Split(doc, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Project builds the preview grid of doc under the sort state s. ok is false
// for a document with nothing to show (empty or whitespace only), which is
// distinct from a grid with a header and no data rows.
func Project(doc string, s SortState, opts ...Option) (grid Grid, ok bool) {
	if strings.TrimSpace(doc) == "" {
		return Grid{}, false
	}
	lines := Lines(doc)
	if len(lines) == 0 {
		return Grid{}, false
	}

	o := options{lang: language.Und}
	for _, opt := range opts {
		opt(&o)
	}

	header := csvparse.Tokenize(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, l := range lines[1:] {
		rows = append(rows, csvparse.Tokenize(l))
	}

	if s.Sorted() {
		SortRows(rows, s, NewComparator(o.lang))
	}

	grid.State = s
	grid.Header = make([]HeaderCell, len(header))
	for i, h := range header {
		grid.Header[i] = HeaderCell{Text: csvparse.DisplayValue(h), Direction: s.DirectionFor(i)}
	}
	grid.Rows = make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(r))
		for j, f := range r {
			cells[j] = csvparse.DisplayValue(f)
		}
		grid.Rows[i] = cells
	}
	return grid, true
}

// SortRows stably reorders tokenized rows in place by the display value of
// the sorted column. Rows missing that column compare as "".
func SortRows(rows [][]string, s SortState, cmp *Comparator) {
	if !s.Sorted() {
		return
	}
	keyed := make([]keyedRow, len(rows))
	for i, r := range rows {
		keyed[i] = keyedRow{key: csvparse.DisplayValue(csvparse.Field(r, s.Column)), row: r}
	}
	slices.SortStableFunc(keyed, func(a, b keyedRow) int {
		c := cmp.Compare(a.key, b.key)
		if s.Direction == Descending {
			return -c
		}
		return c
	})
	for i := range keyed {
		rows[i] = keyed[i].row
	}
}

type keyedRow struct {
	key string
	row []string
}
