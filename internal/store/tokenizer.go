package store

import (
	"strings"
	"unicode"
)

// IndexTokens tokenizes verse text for the BM25 index: lowercase, drop every
// rune that is not a word character or whitespace, split on whitespace.
// Word characters are letters, decimal digits, nonspacing marks and
// connector punctuation such as '_'.
func IndexTokens(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Pc, r)
}

// QueryTokens tokenizes a search query: lowercase, split on space and
// . , ; ! ? and drop empty tokens. Other punctuation stays attached.
func QueryTokens(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		switch r {
		case ' ', '.', ',', ';', '!', '?':
			return true
		}
		return false
	})
}
