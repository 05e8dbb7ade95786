package utils

import "strings"

// TruncateString shortens s to at most maxLen characters, marking the
// cut with an ellipsis when there is room for one.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// MaskSensitive hides all but the first visibleChars characters of a
// secret. Values shorter than that are fully masked.
func MaskSensitive(s string, visibleChars int) string {
	runes := []rune(s)
	if len(runes) <= visibleChars {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:visibleChars]) + strings.Repeat("*", len(runes)-visibleChars)
}
