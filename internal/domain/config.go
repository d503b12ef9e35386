package domain

import "time"

// MatchConfig holds the tunables of the semantic matching engine.
type MatchConfig struct {
	MatchThreshold      float64
	SuggestionThreshold float64
	NumSuggestions      int
	// BatchSize is the number of candidate words sent per embedding call.
	BatchSize int
	// PoolSize is the inference worker count; zero means one per CPU.
	PoolSize int
	// Timeout bounds one engine operation; zero disables it.
	Timeout time.Duration
}

// DefaultMatchConfig returns the defaults tuned for all-MiniLM-L6-v2 word embeddings.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MatchThreshold:      0.4,
		SuggestionThreshold: 0.25,
		NumSuggestions:      5,
		BatchSize:           64,
		Timeout:             30 * time.Second,
	}
}

// VectorConfig holds the pinned embedding model settings.
type VectorConfig struct {
	Model      string
	Dimensions int
}

// DefaultVectorConfig returns the default model: sentence-transformers all-MiniLM-L6-v2.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions: 384,
	}
}
