// Package grocery holds the pure logic of the shared grocery list: amount
// arithmetic, week grouping, and name suggestions. Persistence lives in the
// store package.
package grocery

import (
	"strconv"
	"strings"
)

// ParseAmount evaluates a free-form amount string. A string containing "+"
// is treated as a sum expression and each token is parsed independently;
// otherwise the whole string is parsed as a float. Unparsable input (or any
// unparsable token, e.g. "500 גרם") contributes 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "+") {
		var sum float64
		for _, part := range strings.Split(s, "+") {
			if f, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
				sum += f
			}
		}
		return sum
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatAmount normalizes an amount string for display: the parsed value
// stringified, so "1+1+2" renders as "4". The stored value is not rewritten
// here; normalization becomes permanent only when a mutating operation
// writes the formatted value back.
func FormatAmount(s string) string {
	return FormatNumber(ParseAmount(s))
}

// FormatNumber stringifies an amount value without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MergeAmounts sums two amount strings for a merge-add; a blank added
// amount counts as "1".
func MergeAmounts(existing, added string) string {
	if strings.TrimSpace(added) == "" {
		added = "1"
	}
	return FormatNumber(ParseAmount(existing) + ParseAmount(added))
}

// MergeNotes joins the existing and new notes, keeping whichever is
// non-empty when only one is present.
func MergeNotes(existing, added string) string {
	existing = strings.TrimSpace(existing)
	added = strings.TrimSpace(added)
	switch {
	case existing == "":
		return added
	case added == "":
		return existing
	default:
		return existing + ", " + added
	}
}
