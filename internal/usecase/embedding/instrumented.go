// Package embedding decorates embedding providers with token budgets and
// operational logging.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/usage"
	"github.com/kailas-cloud/newsrec/internal/metrics"
)

// DefaultMaxAPIBatchSize caps the number of texts sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	Remaining(period usage.Period) int64
}

// InstrumentedEmbedder wraps the document or query side of the embedding
// chain with budget enforcement, per-role token accounting and logging.
// Provider call metrics are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	role     domain.Role
	model    string
	maxBatch int
	budget   BudgetChecker
	logger   *zap.Logger
}

var (
	_ domain.Embedder      = (*InstrumentedEmbedder)(nil)
	_ domain.BatchEmbedder = (*InstrumentedEmbedder)(nil)
)

// NewInstrumentedEmbedder wraps an embedder serving role. budget may be nil (unlimited).
func NewInstrumentedEmbedder(
	inner domain.Embedder, role domain.Role, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		role:     role,
		model:    model,
		maxBatch: DefaultMaxAPIBatchSize,
		budget:   budget,
		logger:   logger,
	}
}

// WithMaxBatch overrides the per-request chunk size.
func (p *InstrumentedEmbedder) WithMaxBatch(n int) *InstrumentedEmbedder {
	if n > 0 {
		p.maxBatch = n
	}
	return p
}

// Embed checks the budget, delegates, and records usage.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := p.checkBudget(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("role", string(p.role)),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.record(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("role", string(p.role)),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed splits texts into provider-sized chunks, re-checking the budget between chunks.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		if err := p.checkBudget(ctx, end-offset); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk %d: %w", offset, err)
		}

		chunk, err := domain.EmbedAll(ctx, p.inner, texts[offset:end])
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("role", string(p.role)),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", end-offset),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}

		p.record(chunk.TotalTokens)
		out.Embeddings = append(out.Embeddings, chunk.Embeddings...)
		out.PromptTokens += chunk.PromptTokens
		out.TotalTokens += chunk.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("role", string(p.role)),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (p *InstrumentedEmbedder) checkBudget(ctx context.Context, inputs int) error {
	if p.budget == nil {
		return nil
	}
	if err := p.budget.Check(ctx); err != nil {
		p.logger.Error("Budget exceeded",
			zap.String("role", string(p.role)),
			zap.String("model", p.model),
			zap.Int("inputs", inputs),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

// record charges billed tokens to the role and the budget. Cache hits bill nothing.
func (p *InstrumentedEmbedder) record(totalTokens int) {
	if totalTokens <= 0 {
		return
	}
	metrics.EmbeddingTokens.WithLabelValues(string(p.role)).Add(float64(totalTokens))
	if p.budget == nil {
		return
	}
	p.budget.Record(int64(totalTokens))
	for _, period := range []usage.Period{usage.PeriodDay, usage.PeriodMonth} {
		metrics.EmbeddingBudgetRemaining.WithLabelValues(string(period)).Set(float64(p.budget.Remaining(period)))
	}
}
