package session

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultSnippetLimit caps the stored document content, in runes.
const DefaultSnippetLimit = 10000

const ellipsis = "..."

// Session is a saved search (immutable value object).
type Session struct {
	id              string
	searchTerm      string
	contentSnippet  string
	highlightedHTML string
	createdAt       int64
}

// Snippet truncates content to limit runes, appending "..." when anything was cut.
// limit <= 0 keeps the content whole.
func Snippet(content string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content
	}
	n := 0
	for i := range content {
		if n == limit {
			return content[:i] + ellipsis
		}
		n++
	}
	return content
}

// New validates input and creates a Session with a fresh random ID.
// All three fields are required.
func New(searchTerm, content, highlightedHTML string, snippetLimit int) (Session, error) {
	if strings.TrimSpace(searchTerm) == "" {
		return Session{}, fmt.Errorf("search term is required")
	}
	if content == "" {
		return Session{}, fmt.Errorf("document content is required")
	}
	if highlightedHTML == "" {
		return Session{}, fmt.Errorf("highlighted html is required")
	}

	return Session{
		id:              uuid.NewString(),
		searchTerm:      searchTerm,
		contentSnippet:  Snippet(content, snippetLimit),
		highlightedHTML: highlightedHTML,
		createdAt:       time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Session without validation (storage hydration).
func Reconstruct(id, searchTerm, contentSnippet, highlightedHTML string, createdAt int64) Session {
	return Session{
		id:              id,
		searchTerm:      searchTerm,
		contentSnippet:  contentSnippet,
		highlightedHTML: highlightedHTML,
		createdAt:       createdAt,
	}
}

// ValidID reports whether id is a well-formed session identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ID returns the session identifier (UUIDv4).
func (s Session) ID() string { return s.id }

// SearchTerm returns the saved search term.
func (s Session) SearchTerm() string { return s.searchTerm }

// ContentSnippet returns the possibly truncated document content.
func (s Session) ContentSnippet() string { return s.contentSnippet }

// HighlightedHTML returns the rendered document.
func (s Session) HighlightedHTML() string { return s.highlightedHTML }

// CreatedAt returns the creation timestamp (unix millis).
func (s Session) CreatedAt() int64 { return s.createdAt }
