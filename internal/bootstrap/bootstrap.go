// Package bootstrap builds the shared runtime components (session store, embedding
// chain, matching engine, dictionary) for the server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/config"
	"github.com/kailas-cloud/smartdoc/internal/db"
	dbBadger "github.com/kailas-cloud/smartdoc/internal/db/badger"
	dbRedis "github.com/kailas-cloud/smartdoc/internal/db/redis"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
	"github.com/kailas-cloud/smartdoc/internal/repository/dictionary"
	ollamaEmb "github.com/kailas-cloud/smartdoc/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/smartdoc/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/smartdoc/internal/usecase/embedding"
	"github.com/kailas-cloud/smartdoc/internal/usecase/matching"
)

// OpenStore connects the configured session store and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverBadger:
		store, err = dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.Path,
			InMemory: cfg.InMemory,
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// NewEmbedder assembles the decorator chain: provider -> Instrumented -> Instruction,
// built lazily behind a LazyEmbedder on first use.
func NewEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) *domain.LazyEmbedder {
	factory := func(context.Context) (domain.Embedder, error) {
		base, err := newProvider(cfg, logger)
		if err != nil {
			return nil, err
		}

		var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
			base, cfg.Provider, cfg.Model, logger,
			embeddinguc.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
			embeddinguc.WithMaxBatchSize(cfg.MaxBatch),
		)
		if cfg.Instruction != "" {
			embedder = domain.NewInstructionEmbedder(embedder, cfg.Instruction)
		}
		return embedder, nil
	}

	loadTimeout := time.Duration(cfg.LoadTimeoutSec) * time.Second
	return domain.NewLazyEmbedder(factory, cfg.Dimensions, loadTimeout).
		OnLoad(func(dim int, err error) {
			if err != nil {
				metrics.EmbeddingModelLoadsTotal.WithLabelValues("error").Inc()
				logger.Error("embedding model unavailable",
					zap.String("provider", cfg.Provider),
					zap.String("model", cfg.Model),
					zap.Error(err),
				)
				return
			}
			metrics.EmbeddingModelLoadsTotal.WithLabelValues("ok").Inc()
			logger.Info("embedding model loaded",
				zap.String("provider", cfg.Provider),
				zap.String("model", cfg.Model),
				zap.Int("dimensions", dim),
			)
		})
}

func newProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case config.ProviderOllama:
		emb, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			ServerURL: cfg.BaseURL,
			Model:     cfg.Model,
			BatchSize: cfg.MaxBatch,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama provider: %w", err)
		}
		return emb, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewMatcher creates the inference pool and the matching engine. The caller releases
// the pool on shutdown.
func NewMatcher(
	emb matching.Embedder, cfg domain.MatchConfig, logger *zap.Logger,
) (*matching.Service, *matching.Pool, error) {
	pool, err := matching.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("inference pool: %w", err)
	}
	return matching.New(emb, pool, cfg, logger), pool, nil
}

// NewDictionary opens the WordNet dictionary, or returns nil when no path is
// configured. With EagerLoad the database is parsed in the background.
func NewDictionary(cfg config.DictionaryConfig, logger *zap.Logger) *dictionary.WordNet {
	if cfg.WordNetPath == "" {
		logger.Info("no wordnet path configured, definitions disabled")
		return nil
	}
	wn := dictionary.NewWordNet(cfg.WordNetPath, logger)
	if cfg.EagerLoad {
		go func() { _ = wn.Warm() }()
	}
	return wn
}
