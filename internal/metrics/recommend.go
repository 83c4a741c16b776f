package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation engine Prometheus metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"strategy", "kind", "outcome"}, // kind: text / document; outcome: ok / empty / unavailable / not_found / error
	)

	RecommendationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsrec",
			Name:      "recommendation_duration_seconds",
			Help:      "Recommendation latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy", "kind"},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "corpus_documents",
			Help:      "Documents loaded into the engine",
		},
	)

	CorpusSkipped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "corpus_skipped_sources",
			Help:      "Corpus files or rows skipped at load",
		},
	)

	VocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "lexical_vocabulary_size",
			Help:      "Number of terms in the fitted lexical vocabulary",
		},
	)

	SemanticAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "semantic_available",
			Help:      "1 when the semantic strategy is fitted, 0 otherwise",
		},
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(RecommendationDuration)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(CorpusSkipped)
	prometheus.MustRegister(VocabularySize)
	prometheus.MustRegister(SemanticAvailable)
	recMetricsRegistered = true
}
