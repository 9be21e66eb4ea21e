package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced json", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n{}\n```", "{}"},
		{"whitespace", "  {}  ", "{}"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONOutput(tt.in))
		})
	}
}

func TestStripWrappingQuotes(t *testing.T) {
	assert.Equal(t, "My Title", stripWrappingQuotes(`"My Title"`))
	assert.Equal(t, "My Title", stripWrappingQuotes("  My Title  "))
	assert.Equal(t, `He said "hi"`, stripWrappingQuotes(`He said "hi"`))
	assert.Equal(t, "", stripWrappingQuotes(`""`))
}
