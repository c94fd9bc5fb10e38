package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bme llamo\s+([\p{L}]+)`),
	regexp.MustCompile(`(?i)\bmi nombre es\s+([\p{L}]+)`),
	regexp.MustCompile(`(?i)\bme llaman\s+([\p{L}]+)`),
	regexp.MustCompile(`(?i)\bsoy\s+([\p{L}]+)`),
}

// References to the assistant itself are never the user's name.
var notNames = map[string]bool{"ecko": true, "eco": true}

// extractName finds a self-introduction in free text ("me llamo Ana") and
// returns the name with its first letter upcased, or empty when the message
// carries none. Matching is case-insensitive but the name keeps the user's
// spelling.
func extractName(text string) string {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if notNames[strings.ToLower(m[1])] {
			continue
		}
		return capitalize(m[1])
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
