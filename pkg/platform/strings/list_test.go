package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "empty stays empty", in: []string{}, want: []string{}},
		{name: "scope list with padding", in: []string{" orders", "loyalty ", "orders"}, want: []string{"orders", "loyalty"}},
		{name: "blanks dropped", in: []string{"", "  ", "offers"}, want: []string{"offers"}},
		{name: "order of first occurrence kept", in: []string{"intent:write", "orders", "intent:write", "loyalty"}, want: []string{"intent:write", "orders", "loyalty"}},
		{name: "case sensitive", in: []string{"Orders", "orders"}, want: []string{"Orders", "orders"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimUnique(tt.in))
		})
	}
}

func TestReject(t *testing.T) {
	known := map[string]bool{"orders": true, "loyalty": true}
	isKnown := func(s string) bool { return known[s] }

	assert.Equal(t, []string{"admin", "root"}, Reject([]string{"orders", "admin", "loyalty", "root"}, isKnown))
	assert.Empty(t, Reject([]string{"orders"}, isKnown))
	assert.Empty(t, Reject(nil, isKnown))
}
