// Package csvparse splits single CSV lines into fields and derives the
// presentational values built from them.
package csvparse

import "strings"

const (
	Delimiter = ','
	Quote     = '"'
)

// Tokenize splits one line into its fields. Commas inside a quoted span are
// kept as content and quote characters are preserved in the returned fields.
// An unterminated quote leaves the rest of the line inside the quoted span.
//
// The result always has at least one element: "" yields [""] and ","
// yields ["", ""].
func Tokenize(line string) []string {
	fields := make([]string, 0, strings.Count(line, ",")+1)
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == Quote:
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == Delimiter && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, current.String())
}

// DisplayValue returns the value shown in the preview and used for sorting:
// surrounding whitespace is trimmed and one pair of enclosing double quotes is
// removed.
func DisplayValue(field string) string {
	v := strings.TrimSpace(field)
	if len(v) >= 2 && v[0] == Quote && v[len(v)-1] == Quote {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// Field returns the field at index, or "" when the row is too short.
func Field(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}
