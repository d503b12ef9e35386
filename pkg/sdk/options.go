package smartdoc

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type providerConfig struct {
	name    string // "openai" or "ollama"
	baseURL string
	apiKey  string
	model   string
}

type clientConfig struct {
	embedder   Embedder
	provider   *providerConfig
	dimensions int

	matchThreshold      *float64
	suggestionThreshold *float64
	numSuggestions      int
	poolSize            int
	timeout             time.Duration

	dictionary  Dictionary
	wordNetPath string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.provider = nil
	})
}

// WithOpenAI embeds through an OpenAI-compatible /embeddings endpoint
// (OpenAI, vLLM, text-embeddings-inference, LocalAI).
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = nil
		c.provider = &providerConfig{name: "openai", baseURL: baseURL, apiKey: apiKey, model: model}
	})
}

// WithOllama embeds through a local Ollama server, e.g. model "all-minilm".
func WithOllama(serverURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = nil
		c.provider = &providerConfig{name: "ollama", baseURL: serverURL, model: model}
	})
}

// WithDimensions pins the model's vector dimension. A model returning any other
// dimension is treated as unavailable.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithMatchThreshold sets the default similarity threshold for semantic matches.
// Defaults to 0.4.
func WithMatchThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.matchThreshold = &t
	})
}

// WithSuggestionThreshold sets the default similarity threshold for suggestions.
// Defaults to 0.25.
func WithSuggestionThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestionThreshold = &t
	})
}

// WithNumSuggestions sets the default number of suggestions. Defaults to 5.
func WithNumSuggestions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.numSuggestions = n
	})
}

// WithPoolSize sets the number of concurrent embedding workers. Defaults to one per CPU.
func WithPoolSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.poolSize = n
	})
}

// WithTimeout bounds each matching operation. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithWordNet serves Client.Define from the WordNet 3.x dict directory at path.
// The database is parsed on the first lookup.
func WithWordNet(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.wordNetPath = path
		c.dictionary = nil
	})
}

// WithDictionary serves Client.Define from a custom dictionary.
func WithDictionary(d Dictionary) Option {
	return optionFunc(func(c *clientConfig) {
		c.dictionary = d
		c.wordNetPath = ""
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
