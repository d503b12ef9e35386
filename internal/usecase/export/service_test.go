package export

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/highlight"
)

func mustRuns(t *testing.T, src string) []run {
	t.Helper()
	runs, err := extractRuns(strings.NewReader(src))
	if err != nil {
		t.Fatalf("extractRuns: %v", err)
	}
	return runs
}

func TestExtractRuns_HighlightsAndBreaks(t *testing.T) {
	res := highlight.Render("A fox met a wolf.\nThe end", "fox", []string{"wolf"})

	var fills []string
	breaks := 0
	for _, r := range mustRuns(t, res.HTML) {
		if r.newline {
			breaks++
			continue
		}
		if r.fill != nil {
			fills = append(fills, r.text)
		}
	}
	if !reflect.DeepEqual(fills, []string{"fox", "wolf"}) {
		t.Errorf("filled runs = %v", fills)
	}
	if breaks != 2 { // <br> and closing div
		t.Errorf("breaks = %d, want 2", breaks)
	}
}

func TestExtractRuns_FillColors(t *testing.T) {
	runs := mustRuns(t,
		`<p><span class="rounded-md bg-yellow-300">a</span><span class="bg-green-300">b</span>c</p>`)

	if len(runs) != 4 {
		t.Fatalf("got %d runs, want 4", len(runs))
	}
	if runs[0].fill == nil || *runs[0].fill != (rgb{253, 224, 71}) {
		t.Errorf("run 0 fill = %v", runs[0].fill)
	}
	if runs[1].fill == nil || *runs[1].fill != (rgb{134, 239, 172}) {
		t.Errorf("run 1 fill = %v", runs[1].fill)
	}
	if runs[2].fill != nil {
		t.Errorf("run 2 should be unfilled, got %v", runs[2].fill)
	}
	if !runs[3].newline {
		t.Error("closing </p> should break the line")
	}
}

func TestExtractRuns_VoidElementsKeepFillScope(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"img", `<p><span class="bg-yellow-300">fox<img src="x">es</span> plain</p>`},
		{"input", `<p><span class="bg-yellow-300">fox<input type="checkbox">es</span> plain</p>`},
		{"wbr", `<p><span class="bg-yellow-300">fox<wbr>es</span> plain</p>`},
		{"stray end tag", `<p><span class="bg-yellow-300">fox</img>es</span> plain</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range mustRuns(t, tt.html) {
				if r.newline {
					continue
				}
				filled := r.fill != nil
				want := r.text == "fox" || r.text == "es"
				if filled != want {
					t.Errorf("run %q filled = %v, want %v", r.text, filled, want)
				}
			}
		})
	}
}

func TestExtractRuns_HrBreaksLine(t *testing.T) {
	runs := mustRuns(t, `above<hr>below`)

	if len(runs) != 3 || runs[0].text != "above" || !runs[1].newline || runs[2].text != "below" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestExtractRuns_SkipsScriptsAndBoldsHeadings(t *testing.T) {
	runs := mustRuns(t, `<style>.x{}</style><h1>Title</h1><script>alert(1)</script>body`)

	var texts []string
	for _, r := range runs {
		if !r.newline {
			texts = append(texts, r.text)
		}
	}
	if !reflect.DeepEqual(texts, []string{"Title", "body"}) {
		t.Errorf("texts = %v", texts)
	}
	if !runs[0].bold {
		t.Error("heading text should be bold")
	}
}

func TestSplitKeepSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a  b", []string{"a", " ", "b"}},
		{" a\t", []string{" ", "a", " "}},
		{"   ", []string{" "}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitKeepSpaces(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitKeepSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderPDF(t *testing.T) {
	s := New(Config{}, nil)
	long := strings.Repeat("word ", 2000)
	res := highlight.Render("The fox and the wolf. "+long, "fox", []string{"wolf"})

	out, err := s.RenderPDF(context.Background(), res.HTML)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderPDF_Empty(t *testing.T) {
	s := New(Config{}, nil)
	if _, err := s.RenderPDF(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRenderPDF_PageLimit(t *testing.T) {
	s := New(Config{MaxPages: 1}, nil)
	html := highlight.Render(strings.Repeat("word ", 2000), "fox", nil).HTML

	if _, err := s.RenderPDF(context.Background(), html); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput past the page limit, got %v", err)
	}
	if _, err := s.RenderPDF(context.Background(), "<p>short</p>"); err != nil {
		t.Errorf("one page document should render: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"":             DefaultFilename,
		"notes":        "notes.pdf",
		"a/b.pdf":      "a_b.pdf",
		"x\".pdf":      "x_.pdf",
		"smartdoc.PDF": "smartdoc.PDF",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
