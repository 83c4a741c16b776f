package chi

import "time"

// ErrorCode is the machine-readable reason carried by every error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeDocumentNotFound       ErrorCode = "document_not_found"
	CodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeNotReady               ErrorCode = "not_ready"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DocumentSummary is one entry of GET /documents.
type DocumentSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// DocumentList is the body of GET /documents.
type DocumentList struct {
	Items []DocumentSummary `json:"items"`
	Total int               `json:"total"`
}

// DocumentDetail is the body of GET /documents/{id}.
type DocumentDetail struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Body     string  `json:"body"`
	Source   *string `json:"source,omitempty"`
}

// Recommendation is one ranked article.
type Recommendation struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
	Preview    string  `json:"preview"`
}

// RecommendationList answers one strategy.
// Available is false when the strategy was never fitted; Items is then empty.
// MatchedTerms is set for lexical text queries only.
type RecommendationList struct {
	Strategy     string           `json:"strategy"`
	Available    bool             `json:"available"`
	Items        []Recommendation `json:"items"`
	MatchedTerms *[]string        `json:"matched_terms,omitempty"`
}

// Comparison is the body of GET /compare. Exactly one of Query and DocumentID is set.
type Comparison struct {
	Query      *string            `json:"query,omitempty"`
	DocumentID *int               `json:"document_id,omitempty"`
	Lexical    RecommendationList `json:"lexical"`
	Semantic   RecommendationList `json:"semantic"`
}

// BudgetStatus reports token consumption; limit and remaining are -1 when unlimited.
type BudgetStatus struct {
	TokensUsed      int64 `json:"tokens_used"`
	TokensLimit     int64 `json:"tokens_limit"`
	TokensRemaining int64 `json:"tokens_remaining"`
	IsExhausted     bool  `json:"is_exhausted"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Budget        BudgetStatus `json:"budget"`
}

// CorpusStatus summarizes the loaded engine in GET /health.
type CorpusStatus struct {
	Documents      int      `json:"documents"`
	Skipped        int      `json:"skipped"`
	VocabularySize int      `json:"vocabulary_size"`
	Strategies     []string `json:"strategies"`
	SemanticReason *string  `json:"semantic_reason,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Corpus *CorpusStatus     `json:"corpus,omitempty"`
}

// ListParams are the query parameters of GET /documents.
type ListParams struct {
	// Q filters by case-insensitive substring of title or body.
	Q *string
}

// SimilarParams are the query parameters of GET /documents/{id}/similar.
type SimilarParams struct {
	Strategy *string
	TopN     *int
}

// RecommendParams are the query parameters of GET /recommendations.
type RecommendParams struct {
	Q        string
	Strategy *string
	TopN     *int
}

// CompareParams are the query parameters of GET /compare.
type CompareParams struct {
	Q    *string
	ID   *int
	TopN *int
}

// UsageParams are the query parameters of GET /usage.
type UsageParams struct {
	Period *string
}
