package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
	logpkg "github.com/kailas-cloud/smartdoc/internal/logger"
	"github.com/kailas-cloud/smartdoc/internal/parser"
	"github.com/kailas-cloud/smartdoc/internal/usecase/export"
	healthuc "github.com/kailas-cloud/smartdoc/internal/usecase/health"
	"github.com/kailas-cloud/smartdoc/internal/usecase/matching"
)

const (
	// DefaultMaxUploadBytes caps multipart uploads.
	DefaultMaxUploadBytes = 32 << 20
	maxJSONBodyBytes      = 16 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the document search API.
type Server struct {
	matcher        Matcher
	defaults       domain.MatchConfig
	exporter       Exporter
	sessions       Sessions
	definer        Definer
	health         HealthChecker
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. defaults supplies thresholds and counts
// for requests that omit them.
func NewServer(
	matcher Matcher,
	defaults domain.MatchConfig,
	exporter Exporter,
	sessions Sessions,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		matcher:        matcher,
		defaults:       defaults,
		exporter:       exporter,
		sessions:       sessions,
		health:         health,
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, CodeUnsupportedFormat),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrExportFailed, http.StatusInternalServerError, CodeExportFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, CodeDimMismatch),
		sentinelHandler(domain.ErrDictionaryUnavailable, http.StatusServiceUnavailable, CodeDictUnavailable),
	}
	return s
}

// WithDefiner enables POST /definitions. Without one the route answers 503.
func (s *Server) WithDefiner(d Definer) *Server {
	s.definer = d
	return s
}

// WithMaxUploadBytes overrides the multipart upload cap.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Status handles GET /status.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "Backend is running!"})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Upload handles POST /upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "file too large")
		default:
			writeError(w, http.StatusBadRequest, CodeBadRequest, "No file part in the request")
		}
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "No selected file")
		return
	}
	if _, err := parser.FormatOf(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, CodeUnsupportedFormat,
			"Unsupported file type. Please upload .docx or .pdf files.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	content, err := parser.Parse(header.Filename, data)
	if err != nil {
		logpkg.FromContext(r.Context()).Warn("document parse failed",
			zap.String("filename", header.Filename), zap.Error(err))
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid or corrupt document")
			return
		}
		writeError(w, http.StatusInternalServerError, CodeInternalError, "Failed to process file")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message: "File uploaded and parsed successfully",
		Content: content,
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SearchTerm == "" || req.DocumentContent == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing 'searchTerm' or 'documentContent' in request")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.matcher.Search(ctx, matching.SearchRequest{
		SearchTerm:          req.SearchTerm,
		DocumentContent:     req.DocumentContent,
		MatchThreshold:      req.MatchThreshold,
		SuggestionThreshold: req.SuggestionThreshold,
		NumSuggestions:      req.NumSuggestions,
	})
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Message:         "Search processed successfully",
		SearchTerm:      res.SearchTerm,
		ExactMatchCount: res.ExactMatchCount,
		SemanticMatches: nonNil(res.SemanticMatches),
		SuggestedWords:  nonNil(res.SuggestedWords),
		HighlightedHTML: res.HighlightedHTML,
	})
}

// SemanticMatches handles POST /semantic-matches.
func (s *Server) SemanticMatches(w http.ResponseWriter, r *http.Request) {
	var threshold *float64
	if err := runtime.BindQueryParameter("form", true, false, "threshold", r.URL.Query(), &threshold); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid threshold")
		return
	}

	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t := s.defaults.MatchThreshold
	if threshold != nil {
		t = *threshold
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	matches, err := s.matcher.FindSemanticMatches(ctx, req.DocumentContent, req.SearchTerm, t)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: nonNil(matches)})
}

// Suggestions handles POST /suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	var (
		n         *int
		threshold *float64
	)
	if err := runtime.BindQueryParameter("form", true, false, "n", r.URL.Query(), &n); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid n")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "threshold", r.URL.Query(), &threshold); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid threshold")
		return
	}

	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	count := s.defaults.NumSuggestions
	if n != nil {
		count = *n
	}
	t := s.defaults.SuggestionThreshold
	if threshold != nil {
		t = *threshold
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	suggestions, err := s.matcher.SuggestRelatedWords(ctx, req.SearchTerm, req.DocumentContent, count, t)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: nonNil(suggestions)})
}

// Preprocess handles POST /preprocess.
func (s *Server) Preprocess(w http.ResponseWriter, r *http.Request) {
	var req preprocessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing 'text' in request body")
		return
	}
	writeJSON(w, http.StatusOK, preprocessResponse{ProcessedText: nonNil(text.Preprocess(*req.Text))})
}

// Definitions handles POST /definitions.
func (s *Server) Definitions(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing 'word' in request body")
		return
	}
	if s.definer == nil {
		writeError(w, http.StatusServiceUnavailable, CodeDictUnavailable, domain.ErrDictionaryUnavailable.Error())
		return
	}

	res, err := s.definer.Define(r.Context(), req.Word)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, definitionResponse{Word: res.Word, Definition: res.Definition, Found: res.Found})
}

// DownloadPDF handles POST /download_pdf.
func (s *Server) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.HighlightedHTML == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "No highlighted HTML content provided")
		return
	}

	pdf, err := s.exporter.RenderPDF(r.Context(), req.HighlightedHTML)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	filename := export.SanitizeFilename(req.Filename)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// SaveSession handles POST /session/save.
func (s *Server) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SearchTerm == "" || req.DocumentContent == "" || req.HighlightedHTML == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing session data (searchTerm, documentContent, highlightedHtml)")
		return
	}

	sess, err := s.sessions.Save(r.Context(), req.SearchTerm, req.DocumentContent, req.HighlightedHTML)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveSessionResponse{
		Message:       "Session saved successfully",
		SessionID:     sess.ID(),
		ShareableLink: s.sessions.ShareLink(sess.ID()),
	})
}

// GetSession handles GET /session/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid session id")
		return
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, CodeSessionNotFound, "Session not found")
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		ID:                     sess.ID(),
		SearchTerm:             sess.SearchTerm(),
		DocumentContentSnippet: sess.ContentSnippet(),
		HighlightedHTML:        sess.HighlightedHTML(),
		Timestamp:              time.UnixMilli(sess.CreatedAt()).UTC().Format(time.RFC3339),
	})
}

// DeleteSession handles DELETE /session/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid session id")
		return
	}

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, CodeSessionNotFound, "Session not found")
			return
		}
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	tokens, texts := usage.Snapshot()
	if texts > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
		w.Header().Set("X-Embedding-Texts", strconv.Itoa(texts))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Error:   message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrInvalidInput,
		domain.ErrSessionNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrExportFailed,
		domain.ErrVectorDimMismatch,
		domain.ErrDictionaryUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
