package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters and caps it at
// maxRunes runes. maxRunes <= 0 means no cap.
func SanitizeString(input string, maxRunes int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxRunes > 0 {
		n := 0
		for i := range cleaned {
			if n == maxRunes {
				return strings.TrimSpace(cleaned[:i])
			}
			n++
		}
	}
	return cleaned
}
