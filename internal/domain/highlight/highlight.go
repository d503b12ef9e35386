// Package highlight renders document text as HTML with exact and semantic matches marked.
package highlight

import (
	"html"
	"strings"
	"unicode"

	"github.com/kailas-cloud/smartdoc/internal/domain/text"
)

// CSS classes shared with the web client.
const (
	ExactClass    = "bg-yellow-300"
	SemanticClass = "bg-green-300"
)

// Result is the rendered document and the number of exact hits.
type Result struct {
	HTML       string
	ExactCount int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Render escapes content and wraps every whole-word, case-insensitive occurrence of term
// in an exact-match span and every word listed in semantic in a semantic-match span.
// An exact match wins when a word is both. Line breaks become <br>.
func Render(content, term string, semantic []string) Result {
	term = text.Normalize(term)
	sem := make(map[string]struct{}, len(semantic))
	for _, w := range semantic {
		sem[text.Normalize(w)] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(content) + len(content)/4)
	b.WriteString(`<div class="document">`)

	res := Result{}
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := content[start:end]
		lower := strings.ToLower(word)
		switch {
		case term != "" && lower == term:
			res.ExactCount++
			writeSpan(&b, ExactClass, word)
		case inSet(sem, lower):
			writeSpan(&b, SemanticClass, word)
		default:
			b.WriteString(html.EscapeString(word))
		}
		start = -1
	}

	for i, r := range content {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		switch r {
		case '\n':
			b.WriteString("<br>\n")
		case '\r':
		default:
			b.WriteString(html.EscapeString(string(r)))
		}
	}
	flush(len(content))

	b.WriteString(`</div>`)
	res.HTML = b.String()
	return res
}

func inSet(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

func writeSpan(b *strings.Builder, class, word string) {
	b.WriteString(`<span class="rounded-md px-1 `)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(word))
	b.WriteString(`</span>`)
}
