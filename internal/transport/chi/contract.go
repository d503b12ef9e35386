package chi

import (
	"context"

	domsess "github.com/kailas-cloud/smartdoc/internal/domain/session"
	"github.com/kailas-cloud/smartdoc/internal/usecase/definition"
	healthuc "github.com/kailas-cloud/smartdoc/internal/usecase/health"
	"github.com/kailas-cloud/smartdoc/internal/usecase/matching"
)

// Matcher runs semantic matching for the search endpoints.
type Matcher interface {
	Search(ctx context.Context, req matching.SearchRequest) (matching.SearchResult, error)
	FindSemanticMatches(ctx context.Context, documentText, searchTerm string, threshold float64) ([]string, error)
	SuggestRelatedWords(
		ctx context.Context, searchTerm, contextText string, numSuggestions int, threshold float64,
	) ([]string, error)
}

// Exporter renders highlighted HTML to PDF.
type Exporter interface {
	RenderPDF(ctx context.Context, htmlContent string) ([]byte, error)
}

// Sessions stores and loads shareable sessions.
type Sessions interface {
	Save(ctx context.Context, searchTerm, content, highlightedHTML string) (domsess.Session, error)
	Get(ctx context.Context, id string) (domsess.Session, error)
	Delete(ctx context.Context, id string) error
	ShareLink(id string) string
}

// Definer looks up word definitions.
type Definer interface {
	Define(ctx context.Context, word string) (definition.Result, error)
}

// HealthChecker aggregates dependency checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
