package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// probeText is embedded once at load time to learn the model dimension.
const probeText = "dimension probe"

// EmbedderFactory builds a ready-to-use embedder. LazyEmbedder calls it at most once.
type EmbedderFactory func(ctx context.Context) (Embedder, error)

// LazyEmbedder defers building the model-backed embedder until first use.
//
// The load runs exactly once per process under sync.Once; concurrent first callers
// block until it finishes and never observe a partial state. A failed load is
// permanent: every later call returns ErrEmbedderUnavailable without retrying.
//
// Empty or whitespace-only input yields a zero vector of the model dimension
// without reaching the backend.
type LazyEmbedder struct {
	factory     EmbedderFactory
	pinnedDim   int
	loadTimeout time.Duration

	onLoad func(dim int, err error)

	once  sync.Once
	inner Embedder
	dim   int
	err   error
}

// NewLazyEmbedder creates a lazy embedder. pinnedDim > 0 makes a model returning any
// other dimension a load failure; 0 accepts whatever the model returns.
func NewLazyEmbedder(factory EmbedderFactory, pinnedDim int, loadTimeout time.Duration) *LazyEmbedder {
	return &LazyEmbedder{factory: factory, pinnedDim: pinnedDim, loadTimeout: loadTimeout}
}

// OnLoad registers fn to run once the load finishes, successful or not.
// Must be called before first use.
func (l *LazyEmbedder) OnLoad(fn func(dim int, err error)) *LazyEmbedder {
	l.onLoad = fn
	return l
}

func (l *LazyEmbedder) load(ctx context.Context) (Embedder, int, error) {
	l.once.Do(func() {
		if l.onLoad != nil {
			defer func() { l.onLoad(l.dim, l.err) }()
		}
		// The first caller's cancellation must not poison the process-wide load.
		loadCtx := context.WithoutCancel(ctx)
		if l.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, l.loadTimeout)
			defer cancel()
		}

		inner, err := l.factory(loadCtx)
		if err != nil {
			l.err = fmt.Errorf("build embedder: %w", err)
			return
		}

		probe, err := inner.Embed(loadCtx, probeText)
		if err != nil {
			l.err = fmt.Errorf("probe embedding: %w", err)
			return
		}
		dim := len(probe.Embedding)
		if dim == 0 {
			l.err = fmt.Errorf("probe embedding: model returned an empty vector")
			return
		}
		if l.pinnedDim > 0 && dim != l.pinnedDim {
			l.err = fmt.Errorf("model returned %d dimensions, configured %d", dim, l.pinnedDim)
			return
		}
		l.inner, l.dim = inner, dim
	})
	if l.err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEmbedderUnavailable, l.err)
	}
	return l.inner, l.dim, nil
}

// Warm forces the load. Useful at startup to fail early in logs.
func (l *LazyEmbedder) Warm(ctx context.Context) error {
	_, _, err := l.load(ctx)
	return err
}

// Dimensions returns the model dimension, loading the model if needed.
func (l *LazyEmbedder) Dimensions(ctx context.Context) (int, error) {
	_, dim, err := l.load(ctx)
	return dim, err
}

// Embed implements Embedder.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	inner, dim, err := l.load(ctx)
	if err != nil {
		return EmbeddingResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return EmbeddingResult{Embedding: make([]float32, dim)}, nil
	}
	res, err := inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("lazy embed: %w", err)
	}
	return res, nil
}

// BatchEmbed implements BatchEmbedder. Blank entries get zero vectors in place.
func (l *LazyEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	inner, dim, err := l.load(ctx)
	if err != nil {
		return BatchEmbeddingResult{}, err
	}
	if len(texts) == 0 {
		return BatchEmbeddingResult{}, nil
	}

	out := make([][]float32, len(texts))
	send := make([]string, 0, len(texts))
	pos := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		send = append(send, t)
		pos = append(pos, i)
	}
	if len(send) == 0 {
		return BatchEmbeddingResult{Embeddings: out}, nil
	}

	res, err := EmbedAll(ctx, inner, send)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("lazy batch embed: %w", err)
	}
	for j, i := range pos {
		out[i] = res.Embeddings[j]
	}
	return BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// HealthCheck loads the model if needed and delegates to the backend when it can check itself.
func (l *LazyEmbedder) HealthCheck(ctx context.Context) error {
	inner, _, err := l.load(ctx)
	if err != nil {
		return err
	}
	if hc, ok := inner.(HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
