package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/smartdoc/internal/db"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	domsess "github.com/kailas-cloud/smartdoc/internal/domain/session"
)

func newRepo(t *testing.T, s store, ttl time.Duration) *Repo {
	t.Helper()
	r, err := New(s, ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRepo_SaveGetRoundTrip(t *testing.T) {
	ms := newMemStore()
	r := newRepo(t, ms, time.Hour)

	html := strings.Repeat(`<span class="rounded-md px-1 bg-green-300">wolf</span> `, 200)
	s, err := domsess.New("fox", "the fox and the wolf", html, domsess.DefaultSnippetLimit)
	if err != nil {
		t.Fatalf("New session: %v", err)
	}

	if err := r.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored := ms.data[KeyPrefix+s.ID()]
	if len(stored) == 0 || len(stored) >= len(html) {
		t.Errorf("expected compressed blob smaller than html, got %d bytes", len(stored))
	}
	if bytes.Contains(stored, []byte("bg-green-300")) {
		t.Error("blob should not contain plain html")
	}
	if ms.ttls[KeyPrefix+s.ID()] != time.Hour {
		t.Errorf("ttl = %v, want 1h", ms.ttls[KeyPrefix+s.ID()])
	}

	got, err := r.Get(context.Background(), s.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID() != s.ID() || got.SearchTerm() != "fox" || got.HighlightedHTML() != html {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.ContentSnippet() != s.ContentSnippet() || got.CreatedAt() != s.CreatedAt() {
		t.Errorf("round trip mismatch on snippet/created_at")
	}
}

func TestRepo_GetNotFound(t *testing.T) {
	r := newRepo(t, newMemStore(), 0)

	_, err := r.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRepo_StoreErrors(t *testing.T) {
	ms := newMemStore()
	ms.getErr = &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}
	ms.setErr = errors.New("read only replica")
	r := newRepo(t, ms, 0)

	s, _ := domsess.New("t", "c", "h", 0)
	if err := r.Save(context.Background(), s); err == nil {
		t.Error("expected save error")
	}
	_, err := r.Get(context.Background(), s.ID())
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestRepo_CorruptBlob(t *testing.T) {
	ms := newMemStore()
	ms.data[KeyPrefix+"x"] = []byte("not zstd")
	r := newRepo(t, ms, 0)

	if _, err := r.Get(context.Background(), "x"); err == nil {
		t.Error("expected decompress error")
	}
}

func TestRepo_Delete(t *testing.T) {
	ms := newMemStore()
	r := newRepo(t, ms, 0)

	s, _ := domsess.New("fox", "the fox", "<b>fox</b>", 0)
	if err := r.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := r.Delete(context.Background(), s.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := ms.data[KeyPrefix+s.ID()]; ok {
		t.Error("blob still stored after delete")
	}
	if _, err := r.Get(context.Background(), s.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get after delete: expected ErrSessionNotFound, got %v", err)
	}
	if err := r.Delete(context.Background(), s.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Delete: expected ErrSessionNotFound, got %v", err)
	}
}

func TestRepo_DeleteStoreError(t *testing.T) {
	ms := newMemStore()
	ms.getErr = errors.New("connection reset")
	r := newRepo(t, ms, 0)

	err := r.Delete(context.Background(), "x")
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
