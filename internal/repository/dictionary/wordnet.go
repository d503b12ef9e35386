// Package dictionary looks up word definitions in a local WordNet database.
package dictionary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fluhus/gostuff/nlp/wordnet"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
)

// posOrder ranks parts of speech the way WordNet's own lookup lists them.
var posOrder = []string{"n", "v", "a", "s", "r"}

// index is the part of *wordnet.WordNet the repository reads.
type index interface {
	Search(word string) map[string][]*wordnet.Synset
}

func parseWordNet(path string) (index, error) {
	wn, err := wordnet.Parse(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by load
	}
	return wn, nil
}

// WordNet serves definitions from a WordNet 3.x dict directory. The database is
// parsed once, on first use; a failed parse is remembered.
type WordNet struct {
	path   string
	open   func(path string) (index, error)
	logger *zap.Logger

	once sync.Once
	idx  index
	err  error
}

// NewWordNet creates a dictionary over the WordNet dict directory at path.
func NewWordNet(path string, logger *zap.Logger) *WordNet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordNet{path: path, open: parseWordNet, logger: logger}
}

func (w *WordNet) load() (index, error) {
	w.once.Do(func() {
		if w.path == "" {
			w.err = fmt.Errorf("%w: no wordnet path configured", domain.ErrDictionaryUnavailable)
			return
		}
		start := time.Now()
		idx, err := w.open(w.path)
		if err != nil {
			w.err = fmt.Errorf("%w: parse wordnet at %s: %w", domain.ErrDictionaryUnavailable, w.path, err)
			w.logger.Error("WordNet unavailable, definitions disabled", zap.Error(err))
			return
		}
		w.idx = idx
		w.logger.Info("WordNet loaded",
			zap.String("path", w.path),
			zap.Duration("duration", time.Since(start)),
		)
	})
	return w.idx, w.err
}

// Warm parses the database now instead of on the first lookup.
func (w *WordNet) Warm() error {
	_, err := w.load()
	return err
}

// HealthCheck reports whether the database loaded.
func (w *WordNet) HealthCheck(context.Context) error {
	_, err := w.load()
	return err
}

// Define returns the gloss of the first sense of word, trying its lemma when the
// surface form has no entry.
func (w *WordNet) Define(ctx context.Context, word string) (string, error) {
	idx, err := w.load()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("define: %w", err)
	}

	// multi-word entries are stored with underscores ("ice_cream")
	key := strings.Join(strings.Fields(text.Normalize(word)), "_")
	if key == "" {
		return "", fmt.Errorf("%w: empty word", domain.ErrInvalidInput)
	}
	if def, ok := firstGloss(idx.Search(key)); ok {
		return def, nil
	}
	if lemma := text.Lemma(key); lemma != key {
		if def, ok := firstGloss(idx.Search(lemma)); ok {
			return def, nil
		}
	}
	return "", fmt.Errorf("%q: %w", word, domain.ErrDefinitionNotFound)
}

func firstGloss(byPos map[string][]*wordnet.Synset) (string, bool) {
	for _, pos := range posOrder {
		for _, ss := range byPos[pos] {
			if ss == nil {
				continue
			}
			if def := definition(ss.Gloss); def != "" {
				return def, true
			}
		}
	}
	return "", false
}

// definition strips the quoted usage examples WordNet appends to a gloss.
func definition(gloss string) string {
	if i := strings.Index(gloss, `; "`); i >= 0 {
		gloss = gloss[:i]
	}
	return strings.TrimSpace(gloss)
}
