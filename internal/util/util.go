package util

// Truncate returns at most max characters of s, counting runes so
// multi-byte characters are never split.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Snippet returns a short prefix of a byte slice for debug logging, with an
// ellipsis marker when the input was cut.
func Snippet(b []byte) string {
	const maxLen = 200
	s := string(b)
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
