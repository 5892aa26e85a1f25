package utils

import "strings"

// DigitsOnly strips everything but ASCII digits, so "+1 (415) 555-0100" and
// "14155550100" compare equal.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
