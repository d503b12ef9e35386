// Package text turns raw document text into normalized word tokens.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lowercases and trims a search term. Every comparison against candidate
// words happens on the normalized form.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits s into lowercase runs of letters and digits, in document order.
// Punctuation and whitespace separate tokens and are dropped.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// CandidateWords returns the distinct tokens of s longer than one rune,
// in order of first occurrence.
func CandidateWords(s string) []string {
	tokens := Tokenize(s)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Preprocess tokenizes s, drops English stop words and reduces each remaining word
// to its lemma. Repeated words are kept.
func Preprocess(s string) []string {
	tokens := Tokenize(s)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsStopword(t) {
			continue
		}
		out = append(out, Lemma(t))
	}
	return out
}

// CountExact counts case-insensitive whole-word occurrences of term in s.
func CountExact(s, term string) int {
	term = Normalize(term)
	if term == "" {
		return 0
	}
	n := 0
	for _, t := range Tokenize(s) {
		if t == term {
			n++
		}
	}
	return n
}
