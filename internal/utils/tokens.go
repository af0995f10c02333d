package utils

import "unicode/utf8"

// runesPerToken is the estimate used for prompt sizing: about four
// characters per token for English text and JSON previews.
const runesPerToken = 4

// CountTokens estimates the tokens in text. Any non-empty text counts as at
// least one token.
func CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return max(1, n/runesPerToken)
}

// TruncateToTokenLimit keeps the leading runes of text that fit in limit
// estimated tokens, cutting on a rune boundary.
func TruncateToTokenLimit(text string, limit int) string {
	budget := limit * runesPerToken
	if budget <= 0 {
		return ""
	}
	for i := range text {
		if budget == 0 {
			return text[:i]
		}
		budget--
	}
	return text
}

// TokenBreakdown estimates each named prompt section separately.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for name, body := range sections {
		out[name] = CountTokens(body)
	}
	return out
}
