package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"
	CodeSessionNotFound   ErrorCode = "session_not_found"
	CodeRateLimited       ErrorCode = "rate_limited"
	CodeProviderError     ErrorCode = "embedding_provider_error"
	CodeExportFailed      ErrorCode = "export_failed"
	CodeDimMismatch       ErrorCode = "vector_dim_mismatch"
	CodeDictUnavailable   ErrorCode = "dictionary_unavailable"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response. Error repeats Message
// for clients that only read the "error" key.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

type searchRequest struct {
	SearchTerm          string   `json:"searchTerm"`
	DocumentContent     string   `json:"documentContent"`
	MatchThreshold      *float64 `json:"matchThreshold,omitempty"`
	SuggestionThreshold *float64 `json:"suggestionThreshold,omitempty"`
	NumSuggestions      *int     `json:"numSuggestions,omitempty"`
}

type searchResponse struct {
	Message         string   `json:"message"`
	SearchTerm      string   `json:"searchTerm"`
	ExactMatchCount int      `json:"exactMatchCount"`
	SemanticMatches []string `json:"semanticMatches"`
	SuggestedWords  []string `json:"suggestedWords"`
	HighlightedHTML string   `json:"highlightedHtml"`
}

type matchesResponse struct {
	Matches []string `json:"matches"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type preprocessRequest struct {
	Text *string `json:"text"`
}

type preprocessResponse struct {
	ProcessedText []string `json:"processed_text"`
}

type definitionRequest struct {
	Word string `json:"word"`
}

type definitionResponse struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Found      bool   `json:"found"`
}

type downloadRequest struct {
	HighlightedHTML string `json:"highlightedHtml"`
	Filename        string `json:"filename"`
}

type saveSessionRequest struct {
	SearchTerm      string `json:"searchTerm"`
	DocumentContent string `json:"documentContent"`
	HighlightedHTML string `json:"highlightedHtml"`
}

type saveSessionResponse struct {
	Message       string `json:"message"`
	SessionID     string `json:"sessionId"`
	ShareableLink string `json:"shareableLink"`
}

type sessionResponse struct {
	ID                     string `json:"id"`
	SearchTerm             string `json:"search_term"`
	DocumentContentSnippet string `json:"document_content_snippet"`
	HighlightedHTML        string `json:"highlighted_html"`
	Timestamp              string `json:"timestamp"`
}
