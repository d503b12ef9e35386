package matching

import (
	"context"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// SearchRequest is one document search. Nil tunables fall back to the service defaults.
type SearchRequest struct {
	SearchTerm          string
	DocumentContent     string
	MatchThreshold      *float64
	SuggestionThreshold *float64
	NumSuggestions      *int
}

// SearchResult combines exact, semantic and suggested matches with the rendered document.
type SearchResult struct {
	SearchTerm      string
	ExactMatchCount int
	SemanticMatches []string
	SuggestedWords  []string
	HighlightedHTML string
}
