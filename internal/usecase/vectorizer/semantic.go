package vectorizer

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/domain/vector"
)

// Default batching for corpus embedding.
const (
	DefaultBatchSize   = 64
	DefaultConcurrency = 4
)

// SemanticOptions tunes corpus embedding.
type SemanticOptions struct {
	BatchSize   int
	Concurrency int
}

// Semantic maps raw text to dense sentence embeddings produced by an
// external backend. Documents and queries may go through different
// embedders (instruction-tuned models expect different prefixes).
type Semantic struct {
	docs    domain.Embedder
	queries domain.Embedder
	opts    SemanticOptions
	space   atomic.Pointer[vector.Space]
}

var _ Vectorizer = (*Semantic)(nil)

// NewSemantic creates an unfitted semantic vectorizer. queries defaults to docs.
// A nil docs embedder yields a vectorizer whose Fit reports ErrCapabilityUnavailable.
func NewSemantic(docs, queries domain.Embedder, opts SemanticOptions) *Semantic {
	if queries == nil {
		queries = docs
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Semantic{docs: docs, queries: queries, opts: opts}
}

// Strategy returns strategy.Semantic.
func (s *Semantic) Strategy() strategy.Strategy { return strategy.Semantic }

// Fit embeds every text in batches and returns one dense row per text.
func (s *Semantic) Fit(ctx context.Context, texts []string) (vector.Matrix, error) {
	if s.docs == nil {
		return vector.Matrix{}, fmt.Errorf("semantic fit: no embedding backend: %w", domain.ErrCapabilityUnavailable)
	}
	if len(texts) == 0 {
		return vector.Matrix{}, fmt.Errorf("semantic fit: %w", domain.ErrEmptyCorpus)
	}

	embeddings := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for offset := 0; offset < len(texts); offset += s.opts.BatchSize {
		end := min(offset+s.opts.BatchSize, len(texts))
		g.Go(func() error {
			res, err := domain.EmbedAll(gctx, s.docs, texts[offset:end])
			if err != nil {
				return fmt.Errorf("batch [%d:%d]: %w", offset, end, err)
			}
			copy(embeddings[offset:end], res.Embeddings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return vector.Matrix{}, fmt.Errorf("semantic fit: %w", err)
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return vector.Matrix{}, fmt.Errorf("semantic fit: zero-dimension embeddings: %w", domain.ErrEmbeddingProviderError)
	}
	space := vector.NewSpace(string(strategy.Semantic), dim)
	rows := make([]vector.Vector, len(embeddings))
	for i, emb := range embeddings {
		row, err := vector.FromFloat32(space, emb)
		if err != nil {
			return vector.Matrix{}, fmt.Errorf("semantic fit row %d: %w", i, err)
		}
		rows[i] = row
	}

	matrix, err := vector.NewMatrix(space, rows)
	if err != nil {
		return vector.Matrix{}, fmt.Errorf("semantic fit: %w", err)
	}
	s.space.Store(space)
	return matrix, nil
}

// Encode embeds a raw query in the fitted space.
func (s *Semantic) Encode(ctx context.Context, text string) (vector.Vector, error) {
	space := s.space.Load()
	if space == nil {
		return vector.Vector{}, fmt.Errorf("semantic encode: %w", domain.ErrNotInitialized)
	}
	res, err := s.queries.Embed(ctx, text)
	if err != nil {
		return vector.Vector{}, fmt.Errorf("semantic encode: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	v, err := vector.FromFloat32(space, res.Embedding)
	if err != nil {
		return vector.Vector{}, fmt.Errorf("semantic encode: %w", err)
	}
	return v, nil
}

// Dimensions returns the fitted embedding size, 0 before Fit.
func (s *Semantic) Dimensions() int {
	if space := s.space.Load(); space != nil {
		return space.Dim()
	}
	return 0
}
