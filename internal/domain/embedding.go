package domain

import (
	"context"
	"fmt"
)

// Role tells which side of a comparison a text sits on. Instruction-tuned
// sentence models (e5, bge) are trained with different prefixes for the
// corpus and for the query.
type Role string

// Embedding roles.
const (
	RoleDocument Role = "document"
	RoleQuery    Role = "query"
)

// Embedder turns one text into a sentence embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is implemented by embedders that send many texts in one call.
// Use EmbedAll instead of calling it directly.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is one embedding and the tokens billed for it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds one embedding per input text, in input order.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

func (r *BatchEmbeddingResult) add(res EmbeddingResult) {
	r.Embeddings = append(r.Embeddings, res.Embedding)
	r.PromptTokens += res.PromptTokens
	r.TotalTokens += res.TotalTokens
}

// EmbedAll embeds texts through e's batch API when it has one and one text at
// a time otherwise. The result always has exactly len(texts) embeddings; a
// backend that answers with a different count is a provider error.
func EmbedAll(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return BatchEmbeddingResult{}, nil
	}

	be, ok := e.(BatchEmbedder)
	if !ok {
		out := BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
		for i, text := range texts {
			res, err := e.Embed(ctx, text)
			if err != nil {
				return BatchEmbeddingResult{}, fmt.Errorf("embed text %d: %w", i, err)
			}
			out.add(res)
		}
		return out, nil
	}

	out, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return BatchEmbeddingResult{}, err //nolint:wrapcheck // callers add the batch position
	}
	if len(out.Embeddings) != len(texts) {
		return BatchEmbeddingResult{}, fmt.Errorf("sent %d texts, got %d embeddings: %w",
			len(texts), len(out.Embeddings), ErrEmbeddingProviderError)
	}
	return out, nil
}

// WithPrefix returns an embedder that prepends prefix to every text, e.g.
// "passage: " for documents and "query: " for queries. An empty prefix
// returns e unchanged.
func WithPrefix(e Embedder, prefix string) Embedder {
	if prefix == "" {
		return e
	}
	return &prefixed{inner: e, prefix: prefix}
}

type prefixed struct {
	inner  Embedder
	prefix string
}

func (p *prefixed) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := p.inner.Embed(ctx, p.prefix+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("prefixed embed: %w", err)
	}
	return res, nil
}

func (p *prefixed) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	withPrefix := make([]string, len(texts))
	for i, t := range texts {
		withPrefix[i] = p.prefix + t
	}
	res, err := EmbedAll(ctx, p.inner, withPrefix)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("prefixed batch embed: %w", err)
	}
	return res, nil
}
