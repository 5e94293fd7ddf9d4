package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonWordRE = regexp.MustCompile(`[^a-zа-я0-9\s-]`)
	spacesRE  = regexp.MustCompile(`\s+`)
)

// Tokenize lowercases text, replaces everything outside Latin/Cyrillic
// letters, digits, whitespace and hyphens with spaces, and splits. Tokens
// shorter than 3 runes (after trimming hyphens) and stopwords are dropped.
// The surviving tokens keep their original order.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = nonWordRE.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spacesRE.ReplaceAllString(text, " "))

	var out []string
	for _, w := range strings.Split(text, " ") {
		w = strings.Trim(w, "-")
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// normalizeText is the exact-duplicate key: lowercase, collapsed whitespace.
func normalizeText(text string) string {
	return strings.TrimSpace(spacesRE.ReplaceAllString(strings.ToLower(text), " "))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
