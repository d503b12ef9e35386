package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type rgb struct{ r, g, b int }

// Highlight fills matching the web client's Tailwind classes.
var classFills = map[string]rgb{
	"bg-yellow-300": {253, 224, 71},
	"bg-green-300":  {134, 239, 172},
}

// run is a piece of text with uniform styling. A run with newline set is a line break.
type run struct {
	text    string
	fill    *rgb
	bold    bool
	newline bool
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true,
}

// voidAtoms never have an end tag, so they must not open a fill scope.
var voidAtoms = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true, atom.Embed: true,
	atom.Hr: true, atom.Img: true, atom.Input: true, atom.Link: true, atom.Meta: true,
	atom.Source: true, atom.Track: true, atom.Wbr: true,
}

var skipAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Title: true,
}

// extractRuns tokenizes an HTML fragment into styled text runs.
// Only the features the highlighter emits, plus common block tags, are understood.
func extractRuns(r io.Reader) ([]run, error) {
	z := html.NewTokenizer(r)

	var (
		runs      []run
		fills     []*rgb // stack per open element
		boldDepth int
		skipDepth int
		afterBr   bool
	)
	currentFill := func() *rgb {
		for i := len(fills) - 1; i >= 0; i-- {
			if fills[i] != nil {
				return fills[i]
			}
		}
		return nil
	}
	lineBreak := func() {
		if len(runs) > 0 && !runs[len(runs)-1].newline {
			runs = append(runs, run{newline: true})
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("tokenize html: %w", err)
			}
			return runs, nil

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := strings.ReplaceAll(string(z.Text()), "\r", "")
			if afterBr {
				// "<br>\n" is one break, not two
				t = strings.TrimPrefix(t, "\n")
			}
			afterBr = false
			for i, line := range strings.Split(t, "\n") {
				if i > 0 {
					runs = append(runs, run{newline: true})
				}
				if line == "" {
					continue
				}
				runs = append(runs, run{text: line, fill: currentFill(), bold: boldDepth > 0})
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Br {
				runs = append(runs, run{newline: true})
				afterBr = true
				continue
			}
			afterBr = false
			if a == atom.Hr {
				lineBreak()
			}
			if tt == html.SelfClosingTagToken || voidAtoms[a] {
				continue
			}
			if skipAtoms[a] {
				skipDepth++
			}
			if blockAtoms[a] {
				lineBreak()
			}
			if a == atom.B || a == atom.Strong || isHeading(a) {
				boldDepth++
			}
			fills = append(fills, fillFromAttrs(z, hasAttr))

		case html.EndTagToken:
			afterBr = false
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if voidAtoms[a] {
				continue
			}
			if skipAtoms[a] && skipDepth > 0 {
				skipDepth--
			}
			if (a == atom.B || a == atom.Strong || isHeading(a)) && boldDepth > 0 {
				boldDepth--
			}
			if len(fills) > 0 {
				fills = fills[:len(fills)-1]
			}
			if blockAtoms[a] {
				lineBreak()
			}
		}
	}
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func fillFromAttrs(z *html.Tokenizer, hasAttr bool) *rgb {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) != "class" {
			continue
		}
		for _, c := range strings.Fields(string(val)) {
			if f, ok := classFills[c]; ok {
				return &f
			}
		}
	}
	return nil
}
