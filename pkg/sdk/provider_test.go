package smartdoc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// wordServer is an OpenAI-compatible /embeddings endpoint backed by newWords.
func wordServer(t *testing.T) *httptest.Server {
	t.Helper()
	words := newWords()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, len(req.Input))
		for i, in := range req.Input {
			vec, _ := words.Embed(r.Context(), in)
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec.Embedding}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": len(req.Input), "total_tokens": len(req.Input)},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_OpenAIProvider(t *testing.T) {
	srv := wordServer(t)

	c, err := New(WithOpenAI(srv.URL, "test-key", ""), WithDimensions(3))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := c.Search(context.Background(), "Happy", "Happy people. Glad people. Sad people.", Limit(2))
	if err != nil {
		t.Fatal(err)
	}
	if res.ExactMatchCount != 1 {
		t.Errorf("exact count = %d", res.ExactMatchCount)
	}
	if len(res.SemanticMatches) != 1 || res.SemanticMatches[0] != "glad" {
		t.Errorf("semantic matches = %v", res.SemanticMatches)
	}
	if len(res.SuggestedWords) != 1 || res.SuggestedWords[0] != "glad" {
		t.Errorf("suggestions = %v", res.SuggestedWords)
	}

	if h := c.Health(context.Background()); h.Status != "ok" || h.Checks["embedding"] != "ok" {
		t.Errorf("health = %+v", h)
	}
}
