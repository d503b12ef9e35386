// Package health aggregates dependency checks for the /health endpoint.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Service runs component checks concurrently.
type Service struct {
	checks  []check
	timeout time.Duration
}

// New creates a Service. Either dependency may be nil and is then skipped.
func New(store Pinger, embedding EmbeddingChecker) *Service {
	s := &Service{timeout: DefaultCheckTimeout}
	if store != nil {
		s.checks = append(s.checks, check{name: "session_store", fn: store.Ping})
	}
	if embedding != nil {
		s.checks = append(s.checks, check{name: "embedding", fn: embedding.HealthCheck})
	}
	return s
}

// WithDictionary adds a "dictionary" check. A nil checker is ignored.
func (s *Service) WithDictionary(d DictionaryChecker) *Service {
	if d != nil {
		s.checks = append(s.checks, check{name: "dictionary", fn: d.HealthCheck})
	}
	return s
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every component check and aggregates the result.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.checks))

	var wg sync.WaitGroup
	for i, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			if err := c.fn(cctx); err != nil {
				results[i] = CheckError
				return
			}
			results[i] = CheckOK
		}()
	}
	wg.Wait()

	checks := make(map[string]CheckResult, len(s.checks))
	failed := 0
	for i, c := range s.checks {
		checks[c.name] = results[i]
		if results[i] == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
