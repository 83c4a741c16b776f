package health

import (
	"context"
	"errors"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers with reduced capability.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine could not be built.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK           CheckResult = "ok"
	CheckError        CheckResult = "error"
	CheckInitializing CheckResult = "initializing"
	CheckUnavailable  CheckResult = "unavailable"
)

// Corpus summarizes the loaded corpus.
type Corpus struct {
	Documents      int
	Skipped        int
	VocabularySize int
	Strategies     []strategy.Strategy
	SemanticReason string
}

// Report aggregates health check results. Corpus is nil until the engine is ready.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Corpus *Corpus
}

// Service coordinates health checks.
type Service struct {
	engine    EngineReader
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. cache and embedding can be nil.
func New(engine EngineReader, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{engine: engine, cache: cache, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	e, err := s.engine.Ready()
	switch {
	case errors.Is(err, domain.ErrNotInitialized):
		r.Checks["engine"] = CheckInitializing
	case err != nil:
		r.Checks["engine"] = CheckError
	default:
		r.Checks["engine"] = CheckOK
		caps := e.Capabilities()
		if caps.Has(strategy.Semantic) {
			r.Checks["semantic"] = CheckOK
		} else {
			r.Checks["semantic"] = CheckUnavailable
		}
		r.Corpus = &Corpus{
			Documents:      e.Size(),
			Skipped:        len(e.LoadReport().Skipped),
			VocabularySize: caps.VocabularySize,
			Strategies:     caps.Strategies,
			SemanticReason: caps.SemanticReason,
		}
	}

	if s.cache != nil {
		r.Checks["cache"] = checkResult(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		r.Checks["embedding"] = checkResult(s.embedding.HealthCheck(ctx))
	}

	if r.Checks["engine"] == CheckError {
		r.Status = Unhealthy
		return r
	}
	for _, v := range r.Checks {
		if v != CheckOK {
			r.Status = Degraded
			break
		}
	}
	return r
}

func checkResult(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
