// Package listing holds the pure catalog operations: value parsing,
// rating sort, platform and proof filters, and cashout bounds.
package listing

import (
	"strconv"
	"strings"
)

// ParseCashout extracts the numeric amount from a cashout label such as
// "$5", "£25" or "€2.50". Non-string input and garbage yield 0.
func ParseCashout(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return leadingFloat(b.String())
}

// ParseRating reads the leading number of a rating label such as "4.5/5".
// A label that does not start with a digit or '.' yields 0.
func ParseRating(s string) float64 {
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return leadingFloat(s[:end])
}

// leadingFloat parses the longest prefix of s (digits and dots only) that
// forms a decimal number, so "1.2.3" is 1.2 and "." is 0.
func leadingFloat(s string) float64 {
	end, dot, digits := 0, false, 0
	for end < len(s) {
		c := s[end]
		if c == '.' {
			if dot {
				break
			}
			dot = true
		} else {
			digits++
		}
		end++
	}
	if digits == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}
