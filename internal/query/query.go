// Package query sanitizes free-text recall queries into the OR-of-keywords
// form the store's full-text search expects, and tokenizes content for
// overlap calculations (spreading activation, retrieval-induced forgetting).
package query

import "strings"

// ftsMeta are characters FTS5 treats specially; they are stripped rather
// than escaped since core never needs exact-phrase or prefix queries.
const ftsMeta = `?*-'",`

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "and": true,
	"or": true, "but": true, "of": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "with": true, "about": true, "as": true,
	"this": true, "that": true, "it": true, "i": true, "you": true,
}

// Tokenize lowercases and splits text into whitespace-delimited words with
// FTS metacharacters and stop-words removed.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsMeta, r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))

	fields := strings.Fields(cleaned)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}

// SanitizeFTS turns free text into a sanitized, OR-joined FTS5 MATCH
// expression (spec.md §4.2 step 1a). Returns an empty string when no
// tokens survive, signaling the caller to fall back to a full scan.
func SanitizeFTS(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " OR ")
}

// Overlap computes the fraction of a's tokens that also appear in b, by
// exact match (callers pass Tokenize output, which is already lowercased),
// used by retrieval-induced forgetting and the session-WM recall gate.
func Overlap(a, b []string) float64 {
	if len(a) == 0 {
		return 0
	}
	bSet := make(map[string]bool, len(b))
	for _, t := range b {
		bSet[t] = true
	}
	matches := 0
	for _, t := range a {
		if bSet[t] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// KeywordFraction returns the fraction of keywords whose lowercased form
// appears as a substring of contentLower (spreading activation, §4.2).
func KeywordFraction(contentLower string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if strings.Contains(contentLower, strings.ToLower(k)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}
