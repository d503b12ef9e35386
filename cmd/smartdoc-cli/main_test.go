package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

func writeDOCX(t *testing.T, dir, body string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + body + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "doc.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// wordVectors serves an OpenAI-compatible /embeddings endpoint where "happy" and
// "glad" share a direction and every other word is orthogonal to them.
func wordVectors(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]any, len(req.Input))
		for i, in := range req.Input {
			vec := []float32{0, 1, 0}
			switch in {
			case "happy", "glad":
				vec = []float32{1, 0, 0}
			case "joyful":
				vec = []float32{0.8, 0.6, 0}
			}
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "cli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: badger
  in_memory: true
embedding:
  provider: openai
  model: test-words
`), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"smartdoc-cli"}, args...))
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	doc := writeDOCX(t, t.TempDir(), "The quick brown fox")

	out, err := run(t, "parse", doc)
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox\n", out)
}

func TestParseCommand_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o600))

	_, err := run(t, "parse", path)
	assert.ErrorContains(t, err, "unsupported")
}

func TestPreprocessCommand(t *testing.T) {
	doc := writeDOCX(t, t.TempDir(), "The quick brown fox")

	out, err := run(t, "preprocess", doc)
	require.NoError(t, err)
	assert.Equal(t, "quick brown fox\n", out)
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	srv := wordVectors(t)
	doc := writeDOCX(t, dir, "A happy and glad day")

	out, err := run(t, "--config", writeConfig(t, dir), "--base-url", srv.URL,
		"match", "--term", "happy", doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"glad"}, strings.Fields(out))
}

func TestSuggestCommand_Limit(t *testing.T) {
	dir := t.TempDir()
	srv := wordVectors(t)
	doc := writeDOCX(t, dir, "joyful glad day")

	out, err := run(t, "--config", writeConfig(t, dir), "--base-url", srv.URL,
		"suggest", "--term", "happy", "-n", "1", doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"glad"}, strings.Fields(out))
}

func TestSearchCommand_WritesPDF(t *testing.T) {
	dir := t.TempDir()
	srv := wordVectors(t)
	doc := writeDOCX(t, dir, "happy people are glad")
	pdfPath := filepath.Join(dir, "out.pdf")

	out, err := run(t, "--config", writeConfig(t, dir), "--base-url", srv.URL,
		"search", "--term", "happy", "--pdf", pdfPath, doc)
	require.NoError(t, err)

	var res searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.ExactMatchCount)
	assert.Contains(t, res.SemanticMatches, "glad")

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestDefineCommand_MissingWord(t *testing.T) {
	_, err := run(t, "define")
	assert.ErrorContains(t, err, "WORD")
}

func TestDefineCommand_NoDictionary(t *testing.T) {
	t.Setenv("WORDNET_PATH", "")
	dir := t.TempDir()

	_, err := run(t, "--config", writeConfig(t, dir), "define", "dog")
	assert.ErrorIs(t, err, domain.ErrDictionaryUnavailable)

	_, err = run(t, "--config", writeConfig(t, dir), "define", "--wordnet", filepath.Join(dir, "missing"), "dog")
	assert.ErrorIs(t, err, domain.ErrDictionaryUnavailable)
}

func TestMissingFileArgument(t *testing.T) {
	_, err := run(t, "parse")
	assert.Error(t, err)
}
