package csvparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty line", "", []string{""}},
		{"lone comma", ",", []string{"", ""}},
		{"plain fields", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `a,"b,c",d`, []string{"a", `"b,c"`, "d"}},
		{"trailing comma", "a,b,", []string{"a", "b", ""}},
		{"all commas", ",,,", []string{"", "", "", ""}},
		{"whitespace kept", " a , b ", []string{" a ", " b "}},
		{"unterminated quote", `a,"b,c,d`, []string{"a", `"b,c,d`}},
		{"doubled quote", `"say ""hi"", ok",x`, []string{`"say ""hi"", ok"`, "x"}},
		{"multibyte", "é,ü,ß", []string{"é", "ü", "ß"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestTokenizeWithoutQuotesMatchesSplit(t *testing.T) {
	lines := []string{
		"id,name,price",
		"1,,3",
		",leading",
		"trailing,",
		"no delimiter at all",
		"  spaced  ,  out  ",
	}
	for _, line := range lines {
		got := Tokenize(line)
		assert.Equal(t, strings.Split(line, ","), got, line)
		assert.Len(t, got, strings.Count(line, ",")+1, line)
	}
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{`  "x"  `, "x"},
		{`"x"`, "x"},
		{`" padded "`, "padded"},
		{`"b,c"`, "b,c"},
		{`"`, `"`},
		{`""`, ""},
		{`"open`, `"open`},
		{`close"`, `close"`},
		{"  plain  ", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayValue(tt.field), "field %q", tt.field)
	}
}

func TestDisplayValueDoesNotMutateFields(t *testing.T) {
	fields := Tokenize(`a," b ",c`)
	_ = DisplayValue(fields[1])
	assert.Equal(t, `" b "`, fields[1])
}

func TestField(t *testing.T) {
	fields := []string{"a", "b"}
	assert.Equal(t, "b", Field(fields, 1))
	assert.Equal(t, "", Field(fields, 2))
	assert.Equal(t, "", Field(fields, -1))
	assert.Equal(t, "", Field(nil, 0))
}

func TestColorClass(t *testing.T) {
	for i := 0; i < 40; i++ {
		assert.Equal(t, ColorClass(i), ColorClass(i+ColorCount))
		assert.GreaterOrEqual(t, ColorClass(i), 0)
		assert.Less(t, ColorClass(i), ColorCount)
	}
	assert.Equal(t, 0, ColorClass(0))
	assert.Equal(t, 7, ColorClass(7))
	assert.Equal(t, 1, ColorClass(9))
	assert.Equal(t, 7, ColorClass(-1))
}
