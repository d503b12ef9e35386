// Package matching finds words in a document that are semantically close to a search term.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/highlight"
	"github.com/kailas-cloud/smartdoc/internal/domain/similarity"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

const (
	opMatches     = "semantic_matches"
	opSuggestions = "suggestions"
)

// Service scores a document's candidate words against a search term.
//
// Embedding failures degrade to empty results: the caller still gets exact matches
// and a rendered document. Only a vector dimension mismatch is returned as an error.
type Service struct {
	embed  Embedder
	pool   *Pool
	cfg    domain.MatchConfig
	logger *zap.Logger

	unavailableOnce sync.Once
}

// New creates a matching service. pool may be nil, in which case chunks run inline.
func New(embed Embedder, pool *Pool, cfg domain.MatchConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, pool: pool, cfg: cfg, logger: logger}
}

// Defaults returns the configured thresholds and suggestion count.
func (s *Service) Defaults() domain.MatchConfig { return s.cfg }

type scored struct {
	word  string
	score float64
}

// FindSemanticMatches returns the document words whose similarity to searchTerm is at
// least threshold, in order of first occurrence. The term itself is never returned.
func (s *Service) FindSemanticMatches(
	ctx context.Context, documentText, searchTerm string, threshold float64,
) ([]string, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.MatchingDuration.WithLabelValues(opMatches).Observe(time.Since(start).Seconds()) }()

	words, err := s.score(ctx, opMatches, documentText, searchTerm)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		if w.score >= threshold {
			out = append(out, w.word)
		}
	}
	metrics.MatchingResultsTotal.WithLabelValues(opMatches).Add(float64(len(out)))
	return out, nil
}

// SuggestRelatedWords returns up to numSuggestions distinct document words with similarity
// to searchTerm of at least threshold, best first. Equal scores sort lexicographically.
// The list is never padded.
func (s *Service) SuggestRelatedWords(
	ctx context.Context, searchTerm, contextText string, numSuggestions int, threshold float64,
) ([]string, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if numSuggestions <= 0 {
		return []string{}, nil
	}

	start := time.Now()
	defer func() { metrics.MatchingDuration.WithLabelValues(opSuggestions).Observe(time.Since(start).Seconds()) }()

	words, err := s.score(ctx, opSuggestions, contextText, searchTerm)
	if err != nil {
		return nil, err
	}

	eligible := make([]scored, 0, len(words))
	for _, w := range words {
		if w.score >= threshold {
			eligible = append(eligible, w)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].score != eligible[j].score {
			return eligible[i].score > eligible[j].score
		}
		return eligible[i].word < eligible[j].word
	})

	// candidates are already distinct; the set guards the output contract
	out := make([]string, 0, numSuggestions)
	seen := make(map[string]struct{}, numSuggestions)
	for _, w := range eligible {
		if len(out) == numSuggestions {
			break
		}
		if _, dup := seen[w.word]; dup {
			continue
		}
		seen[w.word] = struct{}{}
		out = append(out, w.word)
	}
	metrics.MatchingResultsTotal.WithLabelValues(opSuggestions).Add(float64(len(out)))
	return out, nil
}

// Search runs semantic matching and suggestion concurrently, counts exact matches and
// renders the highlighted document.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	if text.Normalize(req.SearchTerm) == "" || req.DocumentContent == "" {
		return SearchResult{}, fmt.Errorf("%w: searchTerm and documentContent are required", domain.ErrInvalidInput)
	}

	matchThreshold := s.cfg.MatchThreshold
	if req.MatchThreshold != nil {
		matchThreshold = *req.MatchThreshold
	}
	suggestThreshold := s.cfg.SuggestionThreshold
	if req.SuggestionThreshold != nil {
		suggestThreshold = *req.SuggestionThreshold
	}
	n := s.cfg.NumSuggestions
	if req.NumSuggestions != nil {
		n = *req.NumSuggestions
	}

	var matches, suggestions []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.FindSemanticMatches(gctx, req.DocumentContent, req.SearchTerm, matchThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		suggestions, err = s.SuggestRelatedWords(gctx, req.SearchTerm, req.DocumentContent, n, suggestThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, err //nolint:wrapcheck // already wrapped by the operations
	}

	rendered := highlight.Render(req.DocumentContent, req.SearchTerm, matches)
	return SearchResult{
		SearchTerm:      req.SearchTerm,
		ExactMatchCount: rendered.ExactCount,
		SemanticMatches: matches,
		SuggestedWords:  suggestions,
		HighlightedHTML: rendered.HTML,
	}, nil
}

// score embeds the term and every candidate word except the term, and returns the
// candidates with their cosine similarity in first-occurrence order.
// A nil slice with a nil error means the request was degraded.
func (s *Service) score(ctx context.Context, op, documentText, searchTerm string) ([]scored, error) {
	term := text.Normalize(searchTerm)
	if term == "" {
		return nil, nil
	}

	candidates := text.CandidateWords(documentText)
	words := candidates[:0]
	for _, w := range candidates {
		if w != term {
			words = append(words, w)
		}
	}
	metrics.MatchingCandidateWords.Observe(float64(len(words)))
	if len(words) == 0 {
		return nil, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	termVec, err := s.embed.Embed(ctx, term)
	if err != nil {
		return nil, s.degrade(ctx, op, err)
	}

	vecs, err := s.embedWords(ctx, words)
	if err != nil {
		return nil, s.degrade(ctx, op, err)
	}

	out := make([]scored, len(words))
	for i, w := range words {
		sim, err := similarity.Cosine(termVec.Embedding, vecs[i])
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", w, err)
		}
		out[i] = scored{word: w, score: sim}
	}
	return out, nil
}

func (s *Service) embedWords(ctx context.Context, words []string) ([][]float32, error) {
	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if s.pool != nil {
		res, err = s.pool.EmbedChunked(ctx, s.embed, words, s.cfg.BatchSize)
	} else {
		res, err = domain.EmbedAll(ctx, s.embed, words)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(words) {
		return nil, fmt.Errorf("got %d embeddings for %d words: %w",
			len(res.Embeddings), len(words), domain.ErrEmbeddingProviderError)
	}
	return res.Embeddings, nil
}

// degrade turns an embedding failure into an empty result. Dimension mismatches pass
// through because they mean a misconfigured model, not a transient outage.
func (s *Service) degrade(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrVectorDimMismatch) {
		return fmt.Errorf("%s: %w", op, err)
	}

	reason := "provider_error"
	switch {
	case errors.Is(err, domain.ErrEmbedderUnavailable):
		reason = "unavailable"
		s.unavailableOnce.Do(func() {
			s.logger.Error("Embedding model unavailable, semantic results disabled", zap.Error(err))
		})
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
		s.logger.Warn("Semantic scoring timed out", zap.String("operation", op), zap.Error(err))
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		reason = "canceled"
	default:
		s.logger.Warn("Semantic scoring failed", zap.String("operation", op), zap.Error(err))
	}
	metrics.MatchingDegradedTotal.WithLabelValues(op, reason).Inc()
	return nil
}

func validateThreshold(t float64) error {
	if math.IsNaN(t) || t < -1 || t > 1 {
		return fmt.Errorf("%w: threshold %v outside [-1, 1]", domain.ErrInvalidInput, t)
	}
	return nil
}
