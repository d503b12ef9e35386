package smartdoc

import "github.com/kailas-cloud/smartdoc/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrUnsupportedFormat      = domain.ErrUnsupportedFormat
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbedderUnavailable    = domain.ErrEmbedderUnavailable
	ErrExportFailed           = domain.ErrExportFailed
	ErrDefinitionNotFound     = domain.ErrDefinitionNotFound
	ErrDictionaryUnavailable  = domain.ErrDictionaryUnavailable
)
