// Package strings holds the list helpers used to canonicalize scope sets.
package strings

import (
	"slices"
	"strings"
)

// TrimUnique trims every element, drops blanks and keeps the first
// occurrence of each value. A nil input stays nil.
func TrimUnique(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Reject returns the elements accept refuses, in input order.
func Reject(values []string, accept func(string) bool) []string {
	var rejected []string
	for _, v := range values {
		if !accept(v) {
			rejected = append(rejected, v)
		}
	}
	return rejected
}
