package embcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// DefaultMemorySize is the default number of query embeddings kept in process.
const DefaultMemorySize = 1024

// MemoryEmbedder keeps the most recent embeddings in an in-process LRU.
// It sits in front of the query embedder, where the same text recurs.
type MemoryEmbedder struct {
	inner      domain.Embedder
	cache      *lru.Cache[string, []float32]
	cacheTotal *prometheus.CounterVec
}

var _ domain.Embedder = (*MemoryEmbedder)(nil)

// NewMemory creates an LRU decorator holding up to size vectors.
// lookups is keyed by "result" like the Redis layer's; nil disables counting.
func NewMemory(inner domain.Embedder, size int, lookups *prometheus.CounterVec) (*MemoryEmbedder, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryEmbedder{inner: inner, cache: cache, cacheTotal: lookups}, nil
}

// Embed returns a remembered vector or delegates; hits report zero tokens.
// Returned slices are shared and must not be modified.
func (m *MemoryEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if vec, ok := m.cache.Get(text); ok {
		m.inc("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	m.inc("miss")

	res, err := m.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	m.cache.Add(text, res.Embedding)
	return res, nil
}

// Len returns the number of remembered vectors.
func (m *MemoryEmbedder) Len() int { return m.cache.Len() }

func (m *MemoryEmbedder) inc(result string) {
	if m.cacheTotal != nil {
		m.cacheTotal.WithLabelValues(result).Inc()
	}
}
