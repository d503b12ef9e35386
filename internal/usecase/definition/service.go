// Package definition answers word definition lookups for the reading view.
package definition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

// Result is one lookup. Found is false when the dictionary has no entry, in which
// case Definition holds a readable notice.
type Result struct {
	Word       string
	Definition string
	Found      bool
}

// Service wraps a dictionary with validation and the not-found fallback text.
type Service struct {
	dict   domain.Dictionary
	logger *zap.Logger
}

// New creates a definition service. A nil dictionary makes every lookup
// return domain.ErrDictionaryUnavailable.
func New(dict domain.Dictionary, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dict: dict, logger: logger}
}

// NotFoundText is the definition returned for words without an entry.
func NotFoundText(word string) string {
	return fmt.Sprintf("Definition for '%s' not found via WordNet.", word)
}

// Define looks up word. The returned Word echoes the caller's input, trimmed.
func (s *Service) Define(ctx context.Context, word string) (Result, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Result{}, fmt.Errorf("%w: missing word", domain.ErrInvalidInput)
	}
	if s.dict == nil {
		metrics.DefinitionLookupsTotal.WithLabelValues("unavailable").Inc()
		return Result{}, fmt.Errorf("%w: no dictionary configured", domain.ErrDictionaryUnavailable)
	}

	def, err := s.dict.Define(ctx, word)
	switch {
	case errors.Is(err, domain.ErrDefinitionNotFound):
		metrics.DefinitionLookupsTotal.WithLabelValues("not_found").Inc()
		return Result{Word: word, Definition: NotFoundText(word)}, nil
	case errors.Is(err, domain.ErrDictionaryUnavailable):
		metrics.DefinitionLookupsTotal.WithLabelValues("unavailable").Inc()
		return Result{}, err //nolint:wrapcheck // sentinel
	case err != nil:
		metrics.DefinitionLookupsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Definition lookup failed", zap.String("word", word), zap.Error(err))
		return Result{}, fmt.Errorf("define %q: %w", word, err)
	}
	metrics.DefinitionLookupsTotal.WithLabelValues("found").Inc()
	return Result{Word: word, Definition: def, Found: true}, nil
}
