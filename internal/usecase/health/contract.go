package health

import "context"

// Pinger checks session store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// DictionaryChecker checks that word definitions can be served.
type DictionaryChecker interface {
	HealthCheck(ctx context.Context) error
}
