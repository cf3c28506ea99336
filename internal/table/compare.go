package table

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders display values: numerically when both sides start with
// a number, otherwise with the collation rules of its language.
//
// A Comparator wraps a collate.Collator and must not be shared between
// goroutines.
type Comparator struct {
	collator *collate.Collator
}

// NewComparator returns a comparator for the given language. language.Und
// selects the root collation.
func NewComparator(tag language.Tag) *Comparator {
	return &Comparator{collator: collate.New(tag)}
}

// Compare returns a negative number, zero or a positive number when a sorts
// before, equal to or after b.
func (c *Comparator) Compare(a, b string) int {
	if x, ok := parseNumber(a); ok {
		if y, ok := parseNumber(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return c.collator.CompareString(a, b)
}

// parseNumber reads the longest leading decimal number of s, so "10kg" and
// "9%" compare as 10 and 9. Only the exact spelling "Infinity" reads as an
// infinite value; "inf", "NaN" and text without leading digits are not numbers.
func parseNumber(s string) (float64, bool) {
	prefix := numberPrefix(s)
	if prefix == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func numberPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if digits > 0 || j > i+1 {
			digits += j - i - 1
			i = j
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
