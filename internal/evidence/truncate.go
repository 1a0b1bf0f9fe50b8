// internal/evidence/truncate.go
package evidence

import (
	"strings"
	"unicode"
)

// Truncate shortens s to at most max runes, preferring a sentence boundary
// in the back half of the window and falling back to a word boundary, so a
// clipped snippet never ends mid-word. Truncating an already-truncated
// string to the same budget returns it unchanged.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])

	if i := lastSentenceEnd(cut); i >= len(cut)/2 {
		return strings.TrimSpace(cut[:i+1])
	}
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i >= len(cut)/2 {
		return strings.TrimSpace(cut[:i])
	}

	// No usable boundary in the back half; hard cut.
	return strings.TrimSpace(cut)
}

// lastSentenceEnd returns the byte index of the last '.', '!' or '?' that
// terminates a sentence within s, or -1.
func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t' {
				return i
			}
		}
	}
	return -1
}
