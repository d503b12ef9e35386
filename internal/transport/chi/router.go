package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

// RouterConfig configures the cross-cutting middleware.
type RouterConfig struct {
	APIKeys     []string
	CORSOrigins []string
}

// NewRouter mounts the server's handlers behind the standard middleware stack.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/status", s.Status)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Post("/upload", s.Upload)
	r.Post("/search", s.Search)
	r.Post("/semantic-matches", s.SemanticMatches)
	r.Post("/suggestions", s.Suggestions)
	r.Post("/preprocess", s.Preprocess)
	r.Post("/definitions", s.Definitions)
	r.Post("/download_pdf", s.DownloadPDF)

	r.Post("/session/save", s.SaveSession)
	r.Get("/session/{id}", s.GetSession)
	r.Delete("/session/{id}", s.DeleteSession)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}
