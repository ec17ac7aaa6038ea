// Package strcase converts Go identifiers to the snake_case keys used in API
// error payloads.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts an identifier such as "TrainingID" or "HTTPServer"
// to "training_id" or "http_server". Runs of capitals are kept as one word.
func ToLowerSnake(s string) string {
	words := splitWords([]rune(s))
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "_")
}

func splitWords(rs []rune) []string {
	var (
		words []string
		start int
	)
	for i := 1; i < len(rs); i++ {
		if boundary(rs, i) {
			words = append(words, string(rs[start:i]))
			start = i
		}
	}
	if start < len(rs) {
		words = append(words, string(rs[start:]))
	}
	return words
}

// boundary reports whether a new word starts at rs[i].
func boundary(rs []rune, i int) bool {
	cur, prev := rs[i], rs[i-1]
	if !unicode.IsUpper(cur) {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// "HTTPServer": the S starts a word when a lower-case rune follows.
	return unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
}
