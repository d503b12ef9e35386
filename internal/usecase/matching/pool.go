package matching

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

// Pool runs embedding chunks on a bounded set of workers shared by all requests,
// so one large document cannot occupy an unbounded number of goroutines.
type Pool struct {
	pool *ants.Pool
}

// NewPool creates an inference pool. size <= 0 means one worker per CPU.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create inference pool: %w", err)
	}
	metrics.SetPoolRunningFunc(p.Running)
	return &Pool{pool: p}, nil
}

// Release stops the workers. The pool must not be used afterwards.
func (p *Pool) Release() {
	p.pool.Release()
}

// Cap returns the worker count.
func (p *Pool) Cap() int { return p.pool.Cap() }

// EmbedChunked splits texts into chunks of chunkSize, embeds them on the pool and
// returns the vectors in input order. It returns when every chunk is done or ctx ends.
func (p *Pool) EmbedChunked(
	ctx context.Context, e domain.Embedder, texts []string, chunkSize int,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if chunkSize <= 0 {
		chunkSize = len(texts)
	}

	n := (len(texts) + chunkSize - 1) / chunkSize
	parts := make([]domain.BatchEmbeddingResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(texts))
		chunk := texts[lo:hi]
		idx := i

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			parts[idx], errs[idx] = domain.EmbedAll(ctx, e, chunk)
		})
		if err != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("submit chunk %d: %w", idx, err)
			break
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed chunks: %w", ctx.Err())
	}

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for i := range parts {
		if errs[i] != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embed chunk %d: %w", i, errs[i])
		}
		out.Embeddings = append(out.Embeddings, parts[i].Embeddings...)
		out.PromptTokens += parts[i].PromptTokens
		out.TotalTokens += parts[i].TotalTokens
	}
	return out, nil
}
