package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeGuestName normalizes a guest name before persisting it.
func NormalizeGuestName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeRoomNumber normalizes a room number label.
func NormalizeRoomNumber(number string) string {
	return strings.ToUpper(TrimAndNormalize(number))
}
