package vectorizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/domain/vector"
)

// minTokenRunes drops single-character tokens from the vocabulary.
const minTokenRunes = 2

// Lexical is a TF-IDF vectorizer over whitespace-separated normalized text.
// Weights are raw term counts times smoothed IDF, L2-normalized per row.
// Query terms outside the fitted vocabulary are ignored.
type Lexical struct {
	model atomic.Pointer[lexicalModel]
}

type lexicalModel struct {
	space      *vector.Space
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

var _ Vectorizer = (*Lexical)(nil)

// NewLexical creates an unfitted lexical vectorizer.
func NewLexical() *Lexical { return &Lexical{} }

// Strategy returns strategy.Lexical.
func (l *Lexical) Strategy() strategy.Strategy { return strategy.Lexical }

// Fit builds the vocabulary and IDF table from texts and returns one row per text.
func (l *Lexical) Fit(_ context.Context, texts []string) (vector.Matrix, error) {
	if len(texts) == 0 {
		return vector.Matrix{}, fmt.Errorf("lexical fit: %w", domain.ErrEmptyCorpus)
	}

	tokenized := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		tokens := tokenize(text)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return vector.Matrix{}, fmt.Errorf("lexical fit: no indexable terms in %d documents: %w",
			len(texts), domain.ErrEmptyCorpus)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	m := &lexicalModel{
		space:      vector.NewSpace(string(strategy.Lexical), len(terms)),
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]vector.Vector, len(tokenized))
	for i, tokens := range tokenized {
		row, err := m.weigh(tokens)
		if err != nil {
			return vector.Matrix{}, fmt.Errorf("lexical fit row %d: %w", i, err)
		}
		rows[i] = row
	}

	matrix, err := vector.NewMatrix(m.space, rows)
	if err != nil {
		return vector.Matrix{}, fmt.Errorf("lexical fit: %w", err)
	}
	l.model.Store(m)
	return matrix, nil
}

// Encode weighs an already normalized query against the fitted vocabulary.
func (l *Lexical) Encode(_ context.Context, text string) (vector.Vector, error) {
	m := l.model.Load()
	if m == nil {
		return vector.Vector{}, fmt.Errorf("lexical encode: %w", domain.ErrNotInitialized)
	}
	return m.weigh(tokenize(text))
}

// VocabularySize returns the number of fitted terms, 0 before Fit.
func (l *Lexical) VocabularySize() int {
	if m := l.model.Load(); m != nil {
		return len(m.terms)
	}
	return 0
}

// Terms returns the non-zero terms of v in feature order.
func (l *Lexical) Terms(v vector.Vector) []string {
	m := l.model.Load()
	if m == nil || v.Space() != m.space {
		return nil
	}
	var out []string
	for i, term := range m.terms {
		if v.At(i) != 0 {
			out = append(out, term)
		}
	}
	return out
}

func (m *lexicalModel) weigh(tokens []string) (vector.Vector, error) {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := m.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for k, idx := range indices {
		values[k] = float64(counts[idx]) * m.idf[idx]
	}

	raw, err := vector.Sparse(m.space, indices, values)
	if err != nil {
		return vector.Vector{}, err //nolint:wrapcheck // caller adds context
	}
	if norm := raw.Norm(); norm > 0 {
		for k := range values {
			values[k] /= norm
		}
	}
	return vector.Sparse(m.space, indices, values) //nolint:wrapcheck // caller adds context
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			out = append(out, f)
		}
	}
	return out
}
