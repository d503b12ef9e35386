// Package session saves searches so they can be shared by link.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	domsess "github.com/kailas-cloud/smartdoc/internal/domain/session"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

// Repository persists sessions.
type Repository interface {
	Save(ctx context.Context, s domsess.Session) error
	Get(ctx context.Context, id string) (domsess.Session, error)
	Delete(ctx context.Context, id string) error
}

// Config controls snippet size and share links.
type Config struct {
	SnippetLimit int
	// ShareBaseURL is the web client's origin; links are ShareBaseURL + "/session/" + id.
	ShareBaseURL string
}

// Service manages saved sessions.
type Service struct {
	repo Repository
	cfg  Config
}

// New creates a session service.
func New(repo Repository, cfg Config) *Service {
	if cfg.SnippetLimit == 0 {
		cfg.SnippetLimit = domsess.DefaultSnippetLimit
	}
	cfg.ShareBaseURL = strings.TrimRight(cfg.ShareBaseURL, "/")
	return &Service{repo: repo, cfg: cfg}
}

// Save validates and stores a new session.
func (s *Service) Save(ctx context.Context, searchTerm, content, highlightedHTML string) (domsess.Session, error) {
	sess, err := domsess.New(searchTerm, content, highlightedHTML, s.cfg.SnippetLimit)
	if err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("save", "invalid").Inc()
		return domsess.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("save", "error").Inc()
		return domsess.Session{}, fmt.Errorf("save session: %w", err)
	}
	metrics.SessionOperationsTotal.WithLabelValues("save", "ok").Inc()
	return sess, nil
}

// Get loads a session by ID. Malformed IDs are rejected before touching storage.
func (s *Service) Get(ctx context.Context, id string) (domsess.Session, error) {
	if !domsess.ValidID(id) {
		metrics.SessionOperationsTotal.WithLabelValues("load", "invalid").Inc()
		return domsess.Session{}, fmt.Errorf("%w: malformed session id", domain.ErrInvalidInput)
	}
	sess, err := s.repo.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		metrics.SessionOperationsTotal.WithLabelValues("load", "not_found").Inc()
		return domsess.Session{}, err //nolint:wrapcheck // sentinel
	case err != nil:
		metrics.SessionOperationsTotal.WithLabelValues("load", "error").Inc()
		return domsess.Session{}, fmt.Errorf("load session: %w", err)
	}
	metrics.SessionOperationsTotal.WithLabelValues("load", "ok").Inc()
	return sess, nil
}

// Delete removes a session by ID, revoking its share link.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !domsess.ValidID(id) {
		metrics.SessionOperationsTotal.WithLabelValues("delete", "invalid").Inc()
		return fmt.Errorf("%w: malformed session id", domain.ErrInvalidInput)
	}
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		metrics.SessionOperationsTotal.WithLabelValues("delete", "not_found").Inc()
		return err //nolint:wrapcheck // sentinel
	case err != nil:
		metrics.SessionOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.SessionOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// ShareLink builds the client URL for a session.
func (s *Service) ShareLink(id string) string {
	return s.cfg.ShareBaseURL + "/session/" + id
}
