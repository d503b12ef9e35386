package session

import (
	"encoding/json"
	"fmt"

	domsess "github.com/kailas-cloud/smartdoc/internal/domain/session"
)

// record is the stored form of a session. JSON keys follow the public API.
type record struct {
	ID              string `json:"id"`
	SearchTerm      string `json:"search_term"`
	ContentSnippet  string `json:"document_content_snippet"`
	HighlightedHTML string `json:"highlighted_html"`
	CreatedAt       int64  `json:"created_at"`
}

func marshalSession(s domsess.Session) ([]byte, error) {
	b, err := json.Marshal(record{
		ID:              s.ID(),
		SearchTerm:      s.SearchTerm(),
		ContentSnippet:  s.ContentSnippet(),
		HighlightedHTML: s.HighlightedHTML(),
		CreatedAt:       s.CreatedAt(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return b, nil
}

func unmarshalSession(b []byte) (domsess.Session, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return domsess.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return domsess.Reconstruct(r.ID, r.SearchTerm, r.ContentSnippet, r.HighlightedHTML, r.CreatedAt), nil
}
