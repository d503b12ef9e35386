package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/bootstrap"
	"github.com/kailas-cloud/smartdoc/internal/config"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
	logpkg "github.com/kailas-cloud/smartdoc/internal/logger"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
	sessionrepo "github.com/kailas-cloud/smartdoc/internal/repository/session"
	chiTransport "github.com/kailas-cloud/smartdoc/internal/transport/chi"
	"github.com/kailas-cloud/smartdoc/internal/usecase/definition"
	"github.com/kailas-cloud/smartdoc/internal/usecase/export"
	healthuc "github.com/kailas-cloud/smartdoc/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/smartdoc/internal/usecase/session"
	"github.com/kailas-cloud/smartdoc/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting smartdoc API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	if err := text.LemmatizerErr(); err != nil {
		logger.Warn("English lemmatizer unavailable, preprocessing keeps surface forms", zap.Error(err))
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Session store unavailable", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to session store")

	sessRepo, err := sessionrepo.New(store, cfg.SessionTTL())
	if err != nil {
		logger.Fatal("Failed to create session repository", zap.Error(err))
	}
	defer sessRepo.Close()

	embedder := bootstrap.NewEmbedder(cfg.Embedding, logger)
	if cfg.Embedding.EagerLoad {
		// load failures are logged by the embedder; matching degrades to empty results
		_ = embedder.Warm(ctx)
	}

	matchCfg := cfg.MatchConfig()
	matcher, pool, err := bootstrap.NewMatcher(embedder, matchCfg, logger)
	if err != nil {
		logger.Fatal("Failed to create matching engine", zap.Error(err))
	}
	defer pool.Release()

	exportSvc := export.New(export.Config{
		FontSize: cfg.Export.FontSize,
		Title:    cfg.Export.Title,
		MaxPages: cfg.Export.MaxPages,
	}, logger)
	sessionSvc := sessionuc.New(sessRepo, sessionuc.Config{
		SnippetLimit: cfg.Session.SnippetLimit,
		ShareBaseURL: cfg.Session.ShareBaseURL,
	})
	healthSvc := healthuc.New(store, embedder)

	var dict domain.Dictionary
	if wn := bootstrap.NewDictionary(cfg.Dictionary, logger); wn != nil {
		dict = wn
		healthSvc.WithDictionary(wn)
	}
	definitionSvc := definition.New(dict, logger)

	server := chiTransport.NewServer(matcher, matchCfg, exportSvc, sessionSvc, healthSvc, logger).
		WithMaxUploadBytes(int64(cfg.HTTP.MaxUploadMB) << 20).
		WithDefiner(definitionSvc)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
