package domain

import (
	"context"
	"sync"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding usage for a single HTTP request.
// The handler puts a pointer into the context before calling the engine; the engine
// records after each embedding call (possibly from pool workers); the handler reads it
// for response headers.
type EmbeddingUsage struct {
	mu          sync.Mutex
	totalTokens int
	texts       int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Add records consumed tokens and the number of texts embedded. Safe on a nil receiver.
func (u *EmbeddingUsage) Add(tokens, texts int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += tokens
	u.texts += texts
	u.mu.Unlock()
}

// Snapshot returns the totals recorded so far.
func (u *EmbeddingUsage) Snapshot() (tokens, texts int) {
	if u == nil {
		return 0, 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens, u.texts
}
