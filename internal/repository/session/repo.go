package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/kailas-cloud/smartdoc/internal/db"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	domsess "github.com/kailas-cloud/smartdoc/internal/domain/session"
)

// KeyPrefix namespaces session keys in a shared store.
const KeyPrefix = "smartdoc:session:"

// store is the consumer interface for sessions (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
}

// Repo stores sessions as zstd-compressed JSON. Highlighted HTML repeats the same
// span markup many times and compresses well.
type Repo struct {
	store store
	ttl   time.Duration
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// New creates a session repository. ttl <= 0 stores sessions without expiry.
func New(s store, ttl time.Duration) (*Repo, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Repo{store: s, ttl: ttl, enc: enc, dec: dec}, nil
}

func key(id string) string { return KeyPrefix + id }

// Save writes a session under its ID.
func (r *Repo) Save(ctx context.Context, s domsess.Session) error {
	raw, err := marshalSession(s)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, key(s.ID()), r.enc.EncodeAll(raw, nil), r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID(), err)
	}
	return nil
}

// Get loads a session. Unknown or expired IDs return domain.ErrSessionNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domsess.Session, error) {
	blob, err := r.store.Get(ctx, key(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return domsess.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domsess.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}

	raw, err := r.dec.DecodeAll(blob, nil)
	if err != nil {
		return domsess.Session{}, fmt.Errorf("decompress session %s: %w", id, err)
	}
	return unmarshalSession(raw)
}

// Delete removes a session. Unknown or expired IDs return domain.ErrSessionNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	ok, err := r.store.Exists(ctx, key(id))
	if err != nil {
		return fmt.Errorf("check session %s: %w", id, err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := r.store.Del(ctx, key(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Close releases the decoder.
func (r *Repo) Close() {
	r.dec.Close()
	_ = r.enc.Close()
}
