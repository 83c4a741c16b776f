package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	domusage "github.com/kailas-cloud/newsrec/internal/domain/usage"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	"github.com/kailas-cloud/newsrec/internal/usecase/recommend"
	usageuc "github.com/kailas-cloud/newsrec/internal/usecase/usage"
)

// Default result limits.
const (
	DefaultTopN = 5
	MaxTopN     = 15
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds the top_n query parameter.
type Limits struct {
	DefaultTopN int
	MaxTopN     int
}

// Server serves the recommendation API. Mount it with Routes.
type Server struct {
	engine        *recommend.Handle
	usage         *usageuc.Service
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Zero limits fall back to DefaultTopN and MaxTopN.
func NewServer(
	engine *recommend.Handle,
	usage *usageuc.Service,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.MaxTopN <= 0 {
		limits.MaxTopN = MaxTopN
	}
	if limits.DefaultTopN <= 0 {
		limits.DefaultTopN = DefaultTopN
	}
	if limits.DefaultTopN > limits.MaxTopN {
		limits.DefaultTopN = limits.MaxTopN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		usage:  usage,
		health: health,
		limits: limits,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusTooManyRequests, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrNotInitialized, http.StatusServiceUnavailable, CodeNotReady),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusServiceUnavailable, CodeNotReady),
	}
	return s
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request, params ListParams) {
	e, ok := s.ready(w)
	if !ok {
		return
	}

	var docs []domdoc.Document
	if params.Q != nil && *params.Q != "" {
		docs = e.Filter(*params.Q)
	} else {
		docs = e.Documents()
	}

	items := make([]DocumentSummary, len(docs))
	for i := range docs {
		items[i] = DocumentSummary{
			ID:       docs[i].ID(),
			Title:    docs[i].Title(),
			Category: docs[i].Category(),
			Date:     docs[i].Date(),
		}
	}

	writeJSON(w, http.StatusOK, DocumentList{Items: items, Total: len(items)})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, id int) {
	e, ok := s.ready(w)
	if !ok {
		return
	}

	doc, err := e.Document(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := DocumentDetail{
		ID:       doc.ID(),
		Title:    doc.Title(),
		Category: doc.Category(),
		Date:     doc.Date(),
		Body:     doc.Body(),
	}
	if src := doc.Source(); src != "" {
		resp.Source = &src
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSimilarDocuments handles GET /documents/{id}/similar.
func (s *Server) GetSimilarDocuments(
	w http.ResponseWriter,
	r *http.Request,
	id int,
	params SimilarParams,
) {
	st, topN, err := s.queryOptions(params.Strategy, params.TopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	e, ok := s.ready(w)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := e.RecommendByDocument(ctx, id, st, topN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, toList(st, e.Capabilities().Has(st), results))
}

// GetRecommendations handles GET /recommendations.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request, params RecommendParams) {
	st, topN, err := s.queryOptions(params.Strategy, params.TopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	e, ok := s.ready(w)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := e.RecommendByText(ctx, params.Q, st, topN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := toList(st, e.Capabilities().Has(st), results)
	if st == strategy.Lexical {
		terms, err := e.MatchedTerms(ctx, params.Q)
		if err == nil {
			resp.MatchedTerms = &terms
		}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// CompareStrategies handles GET /compare.
func (s *Server) CompareStrategies(w http.ResponseWriter, r *http.Request, params CompareParams) {
	if (params.Q == nil) == (params.ID == nil) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"exactly one of q and id is required")
		return
	}
	_, topN, err := s.queryOptions(nil, params.TopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	e, ok := s.ready(w)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	var cmp recommendation.Comparison
	if params.Q != nil {
		cmp, err = e.CompareText(ctx, *params.Q, topN)
	} else {
		cmp, err = e.CompareDocument(ctx, *params.ID, topN)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	caps := e.Capabilities()
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, Comparison{
		Query:      params.Q,
		DocumentID: params.ID,
		Lexical:    toList(strategy.Lexical, caps.Has(strategy.Lexical), cmp.Lexical),
		Semantic:   toList(strategy.Semantic, caps.Has(strategy.Semantic), cmp.Semantic),
	})
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params UsageParams) {
	raw := ""
	if params.Period != nil {
		raw = *params.Period
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period: string(report.Period()),
		Budget: BudgetStatus{
			TokensUsed:      report.TokensUsed(),
			TokensLimit:     -1,
			TokensRemaining: report.TokensRemaining(),
			IsExhausted:     report.IsExhausted(),
		},
	}
	if !report.Unlimited() {
		resp.Budget.TokensLimit = report.TokensLimit()
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	resp := HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	}
	if c := report.Corpus; c != nil {
		cs := &CorpusStatus{
			Documents:      c.Documents,
			Skipped:        c.Skipped,
			VocabularySize: c.VocabularySize,
			Strategies:     make([]string, len(c.Strategies)),
		}
		for i, st := range c.Strategies {
			cs.Strategies[i] = string(st)
		}
		if c.SemanticReason != "" {
			reason := c.SemanticReason
			cs.SemanticReason = &reason
		}
		resp.Corpus = cs
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy || report.Checks["engine"] != healthuc.CheckOK {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ready returns the engine or writes 503 while it is building or after a failed build.
func (s *Server) ready(w http.ResponseWriter) (*recommend.Engine, bool) {
	e, err := s.engine.Ready()
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return e, true
}

// queryOptions resolves strategy and top_n defaults. top_n above the maximum is clamped.
func (s *Server) queryOptions(st *string, topN *int) (strategy.Strategy, int, error) {
	resolved := strategy.Lexical
	if st != nil {
		parsed, err := strategy.Parse(*st)
		if err != nil {
			return "", 0, err //nolint:wrapcheck // message goes to the client
		}
		resolved = parsed
	}

	n := s.limits.DefaultTopN
	if topN != nil {
		n = *topN
	}
	if n < 1 {
		return "", 0, errors.New("top_n must be at least 1")
	}
	if n > s.limits.MaxTopN {
		n = s.limits.MaxTopN
	}
	return resolved, n, nil
}

func toList(st strategy.Strategy, available bool, results []recommendation.Result) RecommendationList {
	items := make([]Recommendation, len(results))
	for i := range results {
		items[i] = Recommendation{
			ID:         results[i].ID(),
			Title:      results[i].Title(),
			Category:   results[i].Category(),
			Similarity: results[i].Similarity(),
			Preview:    results[i].Preview(),
		}
	}
	return RecommendationList{
		Strategy:  string(st),
		Available: available,
		Items:     items,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var dnf *domain.DocumentNotFoundError
	if errors.As(err, &dnf) {
		return dnf.Error()
	}
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrNotInitialized,
		domain.ErrEmptyCorpus,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
