package utils

import "strings"

// maskRune is the placeholder used when secrets are displayed back to clients.
const maskRune = '*'

// LooksMasked reports whether s contains the mask placeholder, i.e. it is most
// likely a redacted value echoed back by a UI rather than a real secret.
//
// A real credential that happens to contain '*' is indistinguishable and will
// be treated as masked.
func LooksMasked(s string) bool {
	return strings.ContainsRune(s, maskRune)
}

// UsableSecret returns the trimmed secret, or "" when it is blank or masked.
func UsableSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || LooksMasked(s) {
		return ""
	}
	return s
}

// MaskSecret redacts s for display, keeping up to 3 leading and 4 trailing
// characters. Short values are fully masked; empty stays empty.
func MaskSecret(s string) string {
	r := []rune(s)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 8:
		return strings.Repeat(string(maskRune), len(r))
	}
	head := 3
	tail := 4
	return string(r[:head]) + strings.Repeat(string(maskRune), len(r)-head-tail) + string(r[len(r)-tail:])
}
