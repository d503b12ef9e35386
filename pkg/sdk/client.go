package smartdoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/bootstrap"
	"github.com/kailas-cloud/smartdoc/internal/config"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/highlight"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
	"github.com/kailas-cloud/smartdoc/internal/parser"
	"github.com/kailas-cloud/smartdoc/internal/repository/dictionary"
	"github.com/kailas-cloud/smartdoc/internal/usecase/definition"
	"github.com/kailas-cloud/smartdoc/internal/usecase/export"
	healthuc "github.com/kailas-cloud/smartdoc/internal/usecase/health"
	"github.com/kailas-cloud/smartdoc/internal/usecase/matching"
)

// Internal interfaces, swapped in tests.
type matchUseCase interface {
	Defaults() domain.MatchConfig
	Search(ctx context.Context, req matching.SearchRequest) (matching.SearchResult, error)
	FindSemanticMatches(ctx context.Context, documentText, searchTerm string, threshold float64) ([]string, error)
	SuggestRelatedWords(
		ctx context.Context, searchTerm, contextText string, numSuggestions int, threshold float64,
	) ([]string, error)
}

type exportUseCase interface {
	RenderPDF(ctx context.Context, htmlContent string) ([]byte, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type defineUseCase interface {
	Define(ctx context.Context, word string) (definition.Result, error)
}

// Dictionary looks up word definitions. Define returns ErrDefinitionNotFound for
// words it has no entry for.
type Dictionary interface {
	Define(ctx context.Context, word string) (string, error)
}

// Client is the smartdoc SDK entry point. It is safe for concurrent use.
type Client struct {
	matcher   matchUseCase
	exporter  exportUseCase
	healthSvc healthUseCase
	definer   defineUseCase
	release   func()
	obs       *observer
}

// New creates a Client. No network call is made: the embedding model is loaded on
// first use. Either WithEmbedder, WithOpenAI or WithOllama is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	matcher, pool, err := bootstrap.NewMatcher(emb, matchConfig(cfg), zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("smartdoc: %w", err)
	}

	healthSvc := healthuc.New(nil, emb)
	dict := buildDictionary(cfg)
	if hc, ok := dict.(healthuc.DictionaryChecker); ok {
		healthSvc.WithDictionary(hc)
	}

	return &Client{
		matcher:   matcher,
		exporter:  export.New(export.Config{}, zap.NewNop()),
		healthSvc: healthSvc,
		definer:   definition.New(dict, zap.NewNop()),
		release:   pool.Release,
		obs:       obs,
	}, nil
}

// buildDictionary returns nil when neither WithWordNet nor WithDictionary is set.
func buildDictionary(cfg *clientConfig) domain.Dictionary {
	switch {
	case cfg.dictionary != nil:
		return cfg.dictionary
	case cfg.wordNetPath != "":
		return dictionary.NewWordNet(cfg.wordNetPath, zap.NewNop())
	default:
		return nil
	}
}

func buildEmbedder(cfg *clientConfig) (*domain.LazyEmbedder, error) {
	switch {
	case cfg.embedder != nil:
		inner := adaptEmbedder(cfg.embedder)
		return domain.NewLazyEmbedder(func(context.Context) (domain.Embedder, error) {
			return inner, nil
		}, cfg.dimensions, 0), nil
	case cfg.provider != nil:
		model := cfg.provider.model
		if model == "" && cfg.provider.name == config.ProviderOpenAI {
			model = domain.DefaultVectorConfig().Model
		}
		return bootstrap.NewEmbedder(config.EmbeddingConfig{
			Provider:   cfg.provider.name,
			BaseURL:    cfg.provider.baseURL,
			APIKey:     cfg.provider.apiKey,
			Model:      model,
			Dimensions: cfg.dimensions,
		}, zap.NewNop()), nil
	default:
		return nil, errors.New("smartdoc: embedder required (use WithEmbedder, WithOpenAI or WithOllama)")
	}
}

func matchConfig(cfg *clientConfig) domain.MatchConfig {
	m := domain.DefaultMatchConfig()
	if cfg.matchThreshold != nil {
		m.MatchThreshold = *cfg.matchThreshold
	}
	if cfg.suggestionThreshold != nil {
		m.SuggestionThreshold = *cfg.suggestionThreshold
	}
	if cfg.numSuggestions > 0 {
		m.NumSuggestions = cfg.numSuggestions
	}
	if cfg.timeout > 0 {
		m.Timeout = cfg.timeout
	}
	m.PoolSize = cfg.poolSize
	return m
}

// Close releases the embedding worker pool.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
}

// CallOption overrides a default for a single call.
type CallOption func(*callConfig)

type callConfig struct {
	threshold *float64
	limit     *int
}

// Threshold overrides the similarity threshold, in [-1, 1].
func Threshold(t float64) CallOption {
	return func(c *callConfig) { c.threshold = &t }
}

// Limit overrides the number of suggestions.
func Limit(n int) CallOption {
	return func(c *callConfig) { c.limit = &n }
}

func applyCall(opts []CallOption) callConfig {
	var cc callConfig
	for _, o := range opts {
		o(&cc)
	}
	return cc
}

// FindSemanticMatches returns the document words semantically similar to term,
// in order of first occurrence.
func (c *Client) FindSemanticMatches(
	ctx context.Context, documentText, term string, opts ...CallOption,
) (matches []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("semantic_matches", start, len(matches), err) }()

	cc := applyCall(opts)
	threshold := c.matcher.Defaults().MatchThreshold
	if cc.threshold != nil {
		threshold = *cc.threshold
	}
	matches, err = c.matcher.FindSemanticMatches(ctx, documentText, term, threshold)
	if err != nil {
		return nil, fmt.Errorf("semantic matches: %w", err)
	}
	return matches, nil
}

// SuggestRelatedWords returns the document words most related to term, best first.
func (c *Client) SuggestRelatedWords(
	ctx context.Context, term, contextText string, opts ...CallOption,
) (suggestions []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggestions", start, len(suggestions), err) }()

	cc := applyCall(opts)
	defaults := c.matcher.Defaults()
	threshold, limit := defaults.SuggestionThreshold, defaults.NumSuggestions
	if cc.threshold != nil {
		threshold = *cc.threshold
	}
	if cc.limit != nil {
		limit = *cc.limit
	}
	suggestions, err = c.matcher.SuggestRelatedWords(ctx, term, contextText, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	return suggestions, nil
}

// Search runs exact matching, semantic matching and suggestion in one call and
// renders the highlighted document. Threshold applies to semantic matches, Limit to
// suggestions.
func (c *Client) Search(
	ctx context.Context, term, documentText string, opts ...CallOption,
) (res SearchResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, len(res.SemanticMatches)+len(res.SuggestedWords), err)
	}()

	cc := applyCall(opts)
	r, err := c.matcher.Search(ctx, matching.SearchRequest{
		SearchTerm:      term,
		DocumentContent: documentText,
		MatchThreshold:  cc.threshold,
		NumSuggestions:  cc.limit,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return SearchResult{
		SearchTerm:      r.SearchTerm,
		ExactMatchCount: r.ExactMatchCount,
		SemanticMatches: r.SemanticMatches,
		SuggestedWords:  r.SuggestedWords,
		HighlightedHTML: r.HighlightedHTML,
	}, nil
}

// RenderPDF renders highlighted HTML (as returned by Search or Highlight) to PDF.
func (c *Client) RenderPDF(ctx context.Context, highlightedHTML string) (pdf []byte, err error) {
	start := time.Now()
	defer func() { c.obs.observe("render_pdf", start, 0, err) }()

	pdf, err = c.exporter.RenderPDF(ctx, highlightedHTML)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// Definition is the outcome of Client.Define. When Found is false Text holds a
// not-found notice instead of a gloss.
type Definition struct {
	Word  string
	Text  string
	Found bool
}

// Define looks up the first dictionary sense of word, falling back to its lemma.
// It fails with ErrDictionaryUnavailable unless WithWordNet or WithDictionary was
// given.
func (c *Client) Define(ctx context.Context, word string) (def Definition, err error) {
	start := time.Now()
	defer func() { c.obs.observe("define", start, 0, err) }()

	r, err := c.definer.Define(ctx, word)
	if err != nil {
		return Definition{}, fmt.Errorf("define: %w", err)
	}
	return Definition{Word: r.Word, Text: r.Definition, Found: r.Found}, nil
}

// HealthStatus represents the health of the embedding backend and dictionary.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}

// Health loads the embedding model if needed and checks that it answers. A
// configured WordNet dictionary is checked too.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// SearchResult is the outcome of Client.Search.
type SearchResult struct {
	SearchTerm      string
	ExactMatchCount int
	SemanticMatches []string
	SuggestedWords  []string
	HighlightedHTML string
}

// Parse extracts plain text from a .pdf or .docx file, choosing the parser by name.
func Parse(filename string, data []byte) (string, error) {
	content, err := parser.Parse(filename, data)
	if err != nil {
		return "", fmt.Errorf("smartdoc: %w", err)
	}
	return content, nil
}

// Preprocess lowercases and tokenizes text, drops English stop words and reduces
// the remaining words to their lemmas.
func Preprocess(s string) []string {
	return text.Preprocess(s)
}

// Highlight renders content as HTML with exact matches of term and the given
// semantic matches marked. It returns the HTML and the exact match count.
func Highlight(content, term string, semanticMatches []string) (string, int) {
	r := highlight.Render(content, term, semanticMatches)
	return r.HTML, r.ExactCount
}
