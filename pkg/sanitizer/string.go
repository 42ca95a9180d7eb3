package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var reNotUsername = regexp.MustCompile(`[^a-z0-9_]+`)

// TrimAndNormalize trims s and collapses every run of whitespace to a single space.
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

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername lowercases and drops everything but letters, digits and underscores.
func NormalizeUsername(username string) string {
	username = strings.ToLower(strings.TrimSpace(username))
	return reNotUsername.ReplaceAllString(username, "")
}

// NormalizeText trims free text such as notes and descriptions but keeps its line breaks.
func NormalizeText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}

// NormalizeTitle upper-cases the first letter of every word: "golden retriever" becomes
// "Golden Retriever".
func NormalizeTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
