package session

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	before := time.Now().UnixMilli()
	s, err := New("fox", "the quick brown fox", "<p>fox</p>", DefaultSnippetLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UnixMilli()

	if !ValidID(s.ID()) {
		t.Errorf("ID() = %q, want a UUID", s.ID())
	}
	if s.SearchTerm() != "fox" {
		t.Errorf("SearchTerm() = %q, want %q", s.SearchTerm(), "fox")
	}
	if s.ContentSnippet() != "the quick brown fox" {
		t.Errorf("ContentSnippet() = %q", s.ContentSnippet())
	}
	if s.CreatedAt() < before || s.CreatedAt() > after {
		t.Errorf("CreatedAt() = %d, want between %d and %d", s.CreatedAt(), before, after)
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	a, _ := New("t", "c", "h", 0)
	b, _ := New("t", "c", "h", 0)
	if a.ID() == b.ID() {
		t.Error("expected distinct IDs")
	}
}

func TestNew_MissingFields(t *testing.T) {
	cases := []struct{ term, content, html, want string }{
		{"", "c", "h", "search term"},
		{"  ", "c", "h", "search term"},
		{"t", "", "h", "document content"},
		{"t", "c", "", "highlighted html"},
	}
	for _, c := range cases {
		_, err := New(c.term, c.content, c.html, DefaultSnippetLimit)
		if err == nil {
			t.Fatalf("expected error for %+v", c)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("error %q should mention %q", err, c.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("short", 10); got != "short" {
		t.Errorf("Snippet short = %q", got)
	}
	if got := Snippet("abcdef", 3); got != "abc..." {
		t.Errorf("Snippet truncated = %q", got)
	}
	if got := Snippet("abc", 3); got != "abc" {
		t.Errorf("Snippet at limit = %q", got)
	}
	if got := Snippet("ääää", 2); got != "ää..." {
		t.Errorf("Snippet runes = %q", got)
	}
	if got := Snippet("abc", 0); got != "abc" {
		t.Errorf("Snippet no limit = %q", got)
	}
}

func TestNew_TruncatesLongContent(t *testing.T) {
	content := strings.Repeat("a", DefaultSnippetLimit+5)
	s, err := New("a", content, "<p/>", DefaultSnippetLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.ContentSnippet()) != DefaultSnippetLimit+3 {
		t.Errorf("snippet len = %d", len(s.ContentSnippet()))
	}
	if !strings.HasSuffix(s.ContentSnippet(), "...") {
		t.Error("expected ellipsis suffix")
	}
}

func TestValidID(t *testing.T) {
	if ValidID("not-a-uuid") {
		t.Error("expected invalid")
	}
	if ValidID("") {
		t.Error("expected invalid for empty")
	}
}
