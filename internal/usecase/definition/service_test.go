package definition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterMatchingMetrics()
	os.Exit(m.Run())
}

type mapDictionary struct {
	entries map[string]string
	err     error
	calls   int
}

func (m *mapDictionary) Define(_ context.Context, word string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	def, ok := m.entries[word]
	if !ok {
		return "", fmt.Errorf("%q: %w", word, domain.ErrDefinitionNotFound)
	}
	return def, nil
}

func TestService_DefineKnownWord(t *testing.T) {
	dict := &mapDictionary{entries: map[string]string{"fox": "alert carnivorous mammal"}}
	svc := New(dict, nil)
	before := testutil.ToFloat64(metrics.DefinitionLookupsTotal.WithLabelValues("found"))

	got, err := svc.Define(context.Background(), " fox ")
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	want := Result{Word: "fox", Definition: "alert carnivorous mammal", Found: true}
	if got != want {
		t.Errorf("Define = %+v, want %+v", got, want)
	}
	if d := testutil.ToFloat64(metrics.DefinitionLookupsTotal.WithLabelValues("found")) - before; d != 1 {
		t.Errorf("found counter delta = %v", d)
	}
}

func TestService_DefineUnknownWord(t *testing.T) {
	svc := New(&mapDictionary{}, nil)

	got, err := svc.Define(context.Background(), "qwxzzy")
	if err != nil {
		t.Fatalf("unknown word should not fail: %v", err)
	}
	if got.Found {
		t.Error("Found should be false")
	}
	if got.Definition != "Definition for 'qwxzzy' not found via WordNet." {
		t.Errorf("Definition = %q", got.Definition)
	}
}

func TestService_DefineValidation(t *testing.T) {
	dict := &mapDictionary{}
	svc := New(dict, nil)

	if _, err := svc.Define(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if dict.calls != 0 {
		t.Error("dictionary should not be called for a blank word")
	}
}

func TestService_DefineUnavailable(t *testing.T) {
	if _, err := New(nil, nil).Define(context.Background(), "fox"); !errors.Is(err, domain.ErrDictionaryUnavailable) {
		t.Errorf("nil dictionary: expected ErrDictionaryUnavailable, got %v", err)
	}

	dict := &mapDictionary{err: fmt.Errorf("%w: parse failed", domain.ErrDictionaryUnavailable)}
	if _, err := New(dict, nil).Define(context.Background(), "fox"); !errors.Is(err, domain.ErrDictionaryUnavailable) {
		t.Errorf("failed load: expected ErrDictionaryUnavailable, got %v", err)
	}
}

func TestService_DefineBackendError(t *testing.T) {
	backendErr := errors.New("disk read failed")
	_, err := New(&mapDictionary{err: backendErr}, nil).Define(context.Background(), "fox")
	if !errors.Is(err, backendErr) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}
