package strings

import (
	"strings"
)

// MaxMessageLen is the longest error message printed on one progress line.
const MaxMessageLen = 120

// minLen leaves room for one character and the ellipsis.
const minLen = 4

// OneLine collapses all whitespace runs in s into single spaces and cuts the
// result to at most maxLen runes, ending it with "..." when cut. A maxLen
// below 4 is treated as 4.
func OneLine(s string, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
