package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound signals a missing or expired session.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrInvalidInput signals a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat signals an uploaded file type we cannot parse.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrVectorDimMismatch signals two embeddings of different dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderUnavailable signals that the embedding model could not be loaded.
	ErrEmbedderUnavailable = errors.New("embedding model unavailable")
	// ErrDefinitionNotFound signals a word missing from the dictionary.
	ErrDefinitionNotFound = fmt.Errorf("definition %w", ErrNotFound)
	// ErrDictionaryUnavailable signals that no dictionary is configured or it failed to load.
	ErrDictionaryUnavailable = errors.New("dictionary unavailable")
	// ErrExportFailed signals a PDF rendering failure.
	ErrExportFailed = errors.New("pdf export failed")
)
