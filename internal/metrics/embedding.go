package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedding call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Embedding metrics. Provider calls are counted in transport/openai, billed
// tokens per role in the budget decorator, cache lookups per layer in embcache.
var (
	EmbeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "embedding_calls_total",
			Help:      "Calls to the embedding provider",
		},
		[]string{"model", "outcome"}, // outcome: ok, or the failure kind (rate_limit, count_mismatch, ...)
	)

	EmbeddingCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsrec",
			Name:      "embedding_call_duration_seconds",
			Help:      "Embedding provider call latency in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCallTexts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsrec",
			Name:      "embedding_call_texts",
			Help:      "Texts sent per embedding provider call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		},
	)

	EmbeddingTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "embedding_tokens_total",
			Help:      "Embedding tokens billed, by role (document / query)",
		},
		[]string{"role"},
	)

	EmbeddingBudgetRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "embedding_budget_tokens_remaining",
			Help:      "Tokens left in the current budget period",
		},
		[]string{"period"},
	)

	EmbeddingCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups by layer (redis / memory) and result (hit / miss)",
		},
		[]string{"layer", "result"},
	)

	SemanticFitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsrec",
			Name:      "semantic_fit_duration_seconds",
			Help:      "Time to embed the whole corpus at engine build",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s .. ~3.4min
		},
	)
)

// ObserveEmbeddingCall records one provider call of n texts.
func ObserveEmbeddingCall(model string, n int, took time.Duration, outcome string) {
	EmbeddingCalls.WithLabelValues(model, outcome).Inc()
	if outcome == OutcomeOK {
		EmbeddingCallDuration.WithLabelValues(model).Observe(took.Seconds())
		EmbeddingCallTexts.Observe(float64(n))
	}
}

// CacheLookups returns the lookup counter of one cache layer, keyed by result.
func CacheLookups(layer string) *prometheus.CounterVec {
	return EmbeddingCacheLookups.MustCurryWith(prometheus.Labels{"layer": layer})
}

var registerEmbedding sync.Once

// RegisterEmbeddingMetrics registers embedding metrics with the default registry.
// Safe to call more than once.
func RegisterEmbeddingMetrics() {
	registerEmbedding.Do(func() {
		prometheus.MustRegister(
			EmbeddingCalls,
			EmbeddingCallDuration,
			EmbeddingCallTexts,
			EmbeddingTokens,
			EmbeddingBudgetRemaining,
			EmbeddingCacheLookups,
			SemanticFitDuration,
		)
	})
}
