// Package recommend builds the news recommendation engine: it loads the
// corpus once, fits every available vectorizer, and answers similarity
// queries against the fitted matrices.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/domain/vector"
	"github.com/kailas-cloud/newsrec/internal/logger"
	"github.com/kailas-cloud/newsrec/internal/metrics"
	"github.com/kailas-cloud/newsrec/internal/repository/corpus"
	"github.com/kailas-cloud/newsrec/internal/usecase/ranker"
	"github.com/kailas-cloud/newsrec/internal/usecase/vectorizer"
)

// Deps are the collaborators an Engine is built from.
// Documents and Queries are optional; without Documents the semantic strategy is unavailable.
type Deps struct {
	Loader     Loader
	Normalizer Normalizer
	Documents  Embedder
	Queries    Embedder
}

// Options tune engine construction.
type Options struct {
	// SemanticEnabled turns on the semantic fit when an embedder is configured.
	SemanticEnabled bool
	Semantic        vectorizer.SemanticOptions
	// SemanticTimeout bounds corpus embedding; zero means no limit.
	SemanticTimeout time.Duration
	// PreviewChars is the preview length of results; defaults to recommendation.PreviewChars.
	PreviewChars int
}

// Capabilities describes what a built engine can serve.
type Capabilities struct {
	Strategies     []strategy.Strategy
	VocabularySize int
	Dimensions     int
	// SemanticReason explains why the semantic strategy is missing.
	SemanticReason string
}

// Has reports whether s is served.
func (c Capabilities) Has(s strategy.Strategy) bool {
	for _, have := range c.Strategies {
		if have == s {
			return true
		}
	}
	return false
}

type fitted struct {
	vec    vectorizer.Vectorizer
	matrix vector.Matrix
}

// Engine is immutable after New and safe for concurrent use.
type Engine struct {
	docs           []domdoc.Document
	report         corpus.Report
	normalizer     Normalizer
	lexical        *vectorizer.Lexical
	semantic       *vectorizer.Semantic
	fitted         map[strategy.Strategy]fitted
	semanticReason string
	previewChars   int
}

// New loads the corpus and fits the vectorizers.
// The lexical fit is mandatory; a semantic failure only removes that strategy.
func New(ctx context.Context, deps Deps, opts Options) (*Engine, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if deps.Loader == nil || deps.Normalizer == nil {
		return nil, errors.New("recommend engine requires a loader and a normalizer")
	}

	docs, report, err := deps.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(report.Skipped) > 0 {
		log.Warn("corpus sources skipped",
			zap.Int("skipped", len(report.Skipped)),
			zap.String("first_path", report.Skipped[0].Path),
			zap.String("first_reason", report.Skipped[0].Reason),
		)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("load corpus %s: %w", report.Source, domain.ErrEmptyCorpus)
	}
	for i := range docs {
		if docs[i].ID() != i {
			return nil, fmt.Errorf("document at position %d has id %d: ids must be dense", i, docs[i].ID())
		}
	}

	previewChars := opts.PreviewChars
	if previewChars <= 0 {
		previewChars = recommendation.PreviewChars
	}
	e := &Engine{
		docs:         docs,
		report:       report,
		normalizer:   deps.Normalizer,
		lexical:      vectorizer.NewLexical(),
		fitted:       make(map[strategy.Strategy]fitted, len(strategy.All)),
		previewChars: previewChars,
	}

	raw := make([]string, len(docs))
	normalized := make([]string, len(docs))
	for i := range docs {
		raw[i] = docs[i].Text()
		normalized[i] = e.normalizer.Normalize(raw[i])
	}

	lexMatrix, err := e.lexical.Fit(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("fit lexical: %w", err)
	}
	e.fitted[strategy.Lexical] = fitted{vec: e.lexical, matrix: lexMatrix}

	e.fitSemantic(ctx, deps, opts, raw)

	metrics.CorpusDocuments.Set(float64(len(docs)))
	metrics.CorpusSkipped.Set(float64(len(report.Skipped)))
	metrics.VocabularySize.Set(float64(e.lexical.VocabularySize()))
	if _, ok := e.fitted[strategy.Semantic]; ok {
		metrics.SemanticAvailable.Set(1)
	} else {
		metrics.SemanticAvailable.Set(0)
	}

	log.Info("recommendation engine ready",
		zap.String("source", report.Source),
		zap.Int("documents", len(docs)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("vocabulary", e.lexical.VocabularySize()),
		zap.Bool("semantic", e.semanticReason == ""),
		zap.Duration("took", time.Since(start)),
	)
	return e, nil
}

func (e *Engine) fitSemantic(ctx context.Context, deps Deps, opts Options, texts []string) {
	log := logger.FromContext(ctx)

	switch {
	case !opts.SemanticEnabled:
		e.semanticReason = "disabled by configuration"
		return
	case deps.Documents == nil:
		e.semanticReason = "no embedding backend configured"
		return
	}

	if opts.SemanticTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.SemanticTimeout)
		defer cancel()
	}

	sem := vectorizer.NewSemantic(deps.Documents, deps.Queries, opts.Semantic)
	start := time.Now()
	matrix, err := sem.Fit(ctx, texts)
	metrics.SemanticFitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		e.semanticReason = err.Error()
		log.Warn("semantic strategy unavailable", zap.Error(err))
		return
	}
	e.semantic = sem
	e.fitted[strategy.Semantic] = fitted{vec: sem, matrix: matrix}
	log.Info("semantic strategy fitted",
		zap.Int("dimensions", sem.Dimensions()),
		zap.Duration("took", time.Since(start)),
	)
}

// RecommendByText ranks the corpus against a free-text query.
// The query is normalized only for the lexical strategy. An unavailable
// semantic strategy yields an empty result, not an error.
func (e *Engine) RecommendByText(
	ctx context.Context, query string, s strategy.Strategy, topN int,
) (res []recommendation.Result, err error) {
	defer e.observe(s, "text", time.Now(), &res, &err)

	if err := validate(s, topN); err != nil {
		return nil, err
	}
	f, ok := e.fitted[s]
	if !ok {
		return []recommendation.Result{}, nil
	}

	text := query
	if s == strategy.Lexical {
		text = e.normalizer.Normalize(query)
	}
	q, err := f.vec.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return e.rank(q, f.matrix, topN, ranker.NoExclusion)
}

// RecommendByDocument ranks the corpus against document id, excluding the document itself.
func (e *Engine) RecommendByDocument(
	_ context.Context, id int, s strategy.Strategy, topN int,
) (res []recommendation.Result, err error) {
	defer e.observe(s, "document", time.Now(), &res, &err)

	if err := validate(s, topN); err != nil {
		return nil, err
	}
	if id < 0 || id >= len(e.docs) {
		return nil, domain.NewDocumentNotFound(id)
	}
	f, ok := e.fitted[s]
	if !ok {
		return []recommendation.Result{}, nil
	}

	q, err := f.matrix.Row(id)
	if err != nil {
		return nil, fmt.Errorf("document vector: %w", err)
	}
	return e.rank(q, f.matrix, topN, id)
}

// CompareText answers the same text query with every strategy.
func (e *Engine) CompareText(ctx context.Context, query string, topN int) (recommendation.Comparison, error) {
	return e.compare(func(s strategy.Strategy) ([]recommendation.Result, error) {
		return e.RecommendByText(ctx, query, s, topN)
	})
}

// CompareDocument answers the same document query with every strategy.
func (e *Engine) CompareDocument(ctx context.Context, id, topN int) (recommendation.Comparison, error) {
	return e.compare(func(s strategy.Strategy) ([]recommendation.Result, error) {
		return e.RecommendByDocument(ctx, id, s, topN)
	})
}

func (e *Engine) compare(run func(strategy.Strategy) ([]recommendation.Result, error)) (recommendation.Comparison, error) {
	lex, err := run(strategy.Lexical)
	if err != nil {
		return recommendation.Comparison{}, err
	}
	sem, err := run(strategy.Semantic)
	if err != nil {
		return recommendation.Comparison{}, err
	}
	return recommendation.Comparison{Lexical: lex, Semantic: sem}, nil
}

// Documents returns a copy of the corpus in id order.
func (e *Engine) Documents() []domdoc.Document {
	out := make([]domdoc.Document, len(e.docs))
	copy(out, e.docs)
	return out
}

// Document returns the document with the given id.
func (e *Engine) Document(id int) (domdoc.Document, error) {
	if id < 0 || id >= len(e.docs) {
		return domdoc.Document{}, domain.NewDocumentNotFound(id)
	}
	return e.docs[id], nil
}

// Filter returns documents whose title or body contains substr, ignoring case.
func (e *Engine) Filter(substr string) []domdoc.Document {
	out := make([]domdoc.Document, 0)
	for i := range e.docs {
		if e.docs[i].Matches(substr) {
			out = append(out, e.docs[i])
		}
	}
	return out
}

// Size returns the number of documents.
func (e *Engine) Size() int { return len(e.docs) }

// LoadReport returns the corpus load summary.
func (e *Engine) LoadReport() corpus.Report { return e.report }

// Capabilities lists the fitted strategies in canonical order.
func (e *Engine) Capabilities() Capabilities {
	c := Capabilities{
		VocabularySize: e.lexical.VocabularySize(),
		SemanticReason: e.semanticReason,
	}
	for _, s := range strategy.All {
		if _, ok := e.fitted[s]; ok {
			c.Strategies = append(c.Strategies, s)
		}
	}
	if e.semantic != nil {
		c.Dimensions = e.semantic.Dimensions()
	}
	return c
}

// MatchedTerms returns the vocabulary terms a text query hits under the lexical strategy.
func (e *Engine) MatchedTerms(ctx context.Context, query string) ([]string, error) {
	q, err := e.lexical.Encode(ctx, e.normalizer.Normalize(query))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return e.lexical.Terms(q), nil
}

func (e *Engine) rank(q vector.Vector, m vector.Matrix, topN, exclude int) ([]recommendation.Result, error) {
	hits, err := ranker.Rank(q, m, topN, exclude)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	out := make([]recommendation.Result, len(hits))
	for i, h := range hits {
		d := &e.docs[h.Row]
		out[i] = recommendation.New(d.ID(), d.Title(), d.Category(), h.Score, d.Preview(e.previewChars))
	}
	return out, nil
}

func (e *Engine) observe(
	s strategy.Strategy, kind string, start time.Time, res *[]recommendation.Result, err *error,
) {
	outcome := "ok"
	switch {
	case errors.Is(*err, domain.ErrDocumentNotFound):
		outcome = "not_found"
	case *err != nil:
		outcome = "error"
	case !e.hasStrategy(s):
		outcome = "unavailable"
	case len(*res) == 0:
		outcome = "empty"
	}
	label := string(s)
	if !s.IsValid() {
		label = "invalid"
	}
	metrics.RecommendationsTotal.WithLabelValues(label, kind, outcome).Inc()
	metrics.RecommendationDuration.WithLabelValues(label, kind).Observe(time.Since(start).Seconds())
}

func (e *Engine) hasStrategy(s strategy.Strategy) bool {
	_, ok := e.fitted[s]
	return ok
}

func validate(s strategy.Strategy, topN int) error {
	if !s.IsValid() {
		return fmt.Errorf("unknown strategy %q: %w", s, domain.ErrInvalidArgument)
	}
	if topN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d: %w", topN, domain.ErrInvalidArgument)
	}
	return nil
}
