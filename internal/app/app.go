// Package app wires configuration into the recommendation engine and its
// embedding chain. Both the API server and the CLI build through it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/config"
	"github.com/kailas-cloud/newsrec/internal/db"
	"github.com/kailas-cloud/newsrec/internal/domain"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
	"github.com/kailas-cloud/newsrec/internal/metrics"
	"github.com/kailas-cloud/newsrec/internal/normalizer"
	budgetrepo "github.com/kailas-cloud/newsrec/internal/repository/budget"
	"github.com/kailas-cloud/newsrec/internal/repository/corpus"
	"github.com/kailas-cloud/newsrec/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/newsrec/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/newsrec/internal/usecase/embedding"
	"github.com/kailas-cloud/newsrec/internal/usecase/recommend"
	"github.com/kailas-cloud/newsrec/internal/usecase/vectorizer"
)

// NewLoader returns the corpus source selected by cfg.
func NewLoader(cfg config.CorpusConfig) (recommend.Loader, error) {
	switch {
	case cfg.Dir != "" && cfg.CSV != "":
		return nil, fmt.Errorf("corpus: dir and csv are mutually exclusive")
	case cfg.CSV != "":
		return corpus.NewCSV(cfg.CSV), nil
	case cfg.Dir != "":
		return corpus.NewDir(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("corpus: dir or csv is required")
	}
}

// Embedders is the semantic backend as seen by the engine.
// All fields are nil when semantic search is disabled.
type Embedders struct {
	Documents recommend.Embedder
	Queries   recommend.Embedder
	Health    domain.HealthChecker
}

// NewBudget creates the token budget shared by both embedding chains.
// It returns nil when no limit is configured. store may be nil.
func NewBudget(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) *embeddinguc.BudgetTracker {
	b := cfg.Semantic.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if b.Action == string(embeddinguc.BudgetActionReject) {
		action = embeddinguc.BudgetActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(embeddinguc.BudgetConfig{
		Provider:     cfg.Semantic.Provider,
		KeyPrefix:    cfg.Cache.KeyPrefix,
		DailyLimit:   b.DailyTokenLimit,
		MonthlyLimit: b.MonthlyTokenLimit,
		Action:       action,
	}, logger)
	if store != nil {
		tracker.WithStore(ctx, budgetrepo.New(store, 0, 0))
	}
	return tracker
}

// NewEmbedders assembles the document and query chains:
// OpenAI -> Cached(Redis) -> Instrumented(role) -> prefix, with an in-process
// LRU in front of the query chain. store and budget may be nil.
func NewEmbedders(
	cfg config.Config,
	store db.Store,
	budget *embeddinguc.BudgetTracker,
	logger *zap.Logger,
) (Embedders, error) {
	if !cfg.Semantic.Enabled {
		return Embedders{}, nil
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Semantic.APIKey,
		BaseURL:    cfg.Semantic.BaseURL,
		Model:      cfg.Semantic.Model,
		Dimensions: cfg.Semantic.Dimensions,
		Provider:   cfg.Semantic.Provider,
		Logger:     logger,
	})

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var checker embeddinguc.BudgetChecker
	if budget != nil {
		checker = budget
	}

	chain := func(role domain.Role, prefix string) domain.Embedder {
		var e domain.Embedder = base
		if store != nil {
			e = embcache.New(base, store, embcache.Options{
				Prefix: cfg.Cache.KeyPrefix,
				Model:  cfg.Semantic.Model,
				TTL:    time.Duration(cfg.Cache.TTLHours) * time.Hour,
			}, metrics.CacheLookups("redis"), logger)
		}
		e = embeddinguc.NewInstrumentedEmbedder(e, role, cfg.Semantic.Model, checker, logger).
			WithMaxBatch(cfg.Semantic.BatchSize)
		return domain.WithPrefix(e, prefix)
	}

	queries, err := embcache.NewMemory(chain(domain.RoleQuery, cfg.Semantic.QueryInstruction),
		cfg.Semantic.QueryCacheSize, metrics.CacheLookups("memory"))
	if err != nil {
		return Embedders{}, fmt.Errorf("query cache: %w", err)
	}

	return Embedders{
		Documents: chain(domain.RoleDocument, cfg.Semantic.DocumentInstruction),
		Queries:   queries,
		Health:    base,
	}, nil
}

// EngineBuilder returns the build function for recommend.NewHandle.
func EngineBuilder(cfg config.Config, emb Embedders, logger *zap.Logger) recommend.BuildFunc {
	return func(ctx context.Context) (*recommend.Engine, error) {
		loader, err := NewLoader(cfg.Corpus)
		if err != nil {
			return nil, err
		}
		norm, err := normalizer.New(cfg.Corpus.Language)
		if err != nil {
			return nil, fmt.Errorf("normalizer: %w", err)
		}

		deps := recommend.Deps{Loader: loader, Normalizer: norm}
		if emb.Documents != nil {
			deps.Documents = emb.Documents
			deps.Queries = emb.Queries
		}

		if logger != nil {
			ctx = logpkg.ContextWithLogger(ctx, logger)
		}
		e, err := recommend.New(ctx, deps, recommend.Options{
			SemanticEnabled: cfg.Semantic.Enabled,
			Semantic: vectorizer.SemanticOptions{
				BatchSize:   cfg.Semantic.BatchSize,
				Concurrency: cfg.Semantic.Concurrency,
			},
			SemanticTimeout: time.Duration(cfg.Semantic.InitTimeoutSec) * time.Second,
			PreviewChars:    cfg.Recommend.PreviewChars,
		})
		if err != nil {
			return nil, fmt.Errorf("recommend engine: %w", err)
		}
		return e, nil
	}
}
