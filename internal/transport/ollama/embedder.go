// Package ollama adapts a local Ollama server to domain.Embedder through langchaingo.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

const provider = "ollama"

// Config holds the Ollama connection settings.
type Config struct {
	ServerURL string
	Model     string
	BatchSize int
	Logger    *zap.Logger
}

// Embedder is an embedding provider backed by an Ollama model (e.g. all-minilm).
// Ollama reports no token usage, so results carry zero token counts.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *zap.Logger
}

// NewEmbedder creates an Ollama-backed embedder. No network call is made here.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	embOpts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.BatchSize > 0 {
		embOpts = append(embOpts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	emb, err := embeddings.NewEmbedder(client, embOpts...)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: %w", err)
	}
	return newWithEmbedder(emb, cfg.Model, cfg.Logger), nil
}

func newWithEmbedder(emb embeddings.Embedder, model string, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{embedder: emb, model: model, logger: logger}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(vecs) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "count_mismatch").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama returned %d embeddings for %d texts: %w",
			len(vecs), len(texts), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())
	metrics.EmbeddingTextsTotal.WithLabelValues(provider, e.model).Add(float64(len(texts)))

	e.logger.Debug("Ollama batch embedded",
		zap.Int("texts", len(texts)),
		zap.Duration("duration", duration),
	)
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// HealthCheck embeds a short probe text.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.embedder.EmbedQuery(ctx, "ping"); err != nil {
		return fmt.Errorf("ollama health: %w", err)
	}
	return nil
}
