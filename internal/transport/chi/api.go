package chi

import "github.com/kailas-cloud/moviesearch/internal/domain/movie"

// ErrorCode is the machine-readable error category returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeEmbeddingFailed   ErrorCode = "embedding_failed"
	ErrorCodeSearchUnavailable ErrorCode = "search_unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
	ErrorCodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	ErrorCodeRouteNotFound     ErrorCode = "not_found"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Query string   `json:"query"`
	Limit *int     `json:"limit,omitempty"`
	Mode  *string  `json:"mode,omitempty"`
	Alpha *float64 `json:"alpha,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	ResultType    string          `json:"resultType"`
	MatchedMovies []movie.Summary `json:"matchedMovies"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
