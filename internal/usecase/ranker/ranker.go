// Package ranker scores a query vector against a corpus matrix and selects
// the top-N rows.
package ranker

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/domain/vector"
)

// NoExclusion disables the self-exclusion row.
const NoExclusion = -1

// Hit is a scored corpus row. Score is rounded the same way as the
// similarity callers see.
type Hit struct {
	Row   int
	Score float64
}

// Rank returns at most topN rows ordered by descending cosine similarity
// rounded to 4 decimals; equal rounded scores keep ascending row order. The exclude row never appears in
// the result. Fewer than topN hits are returned when the corpus runs out.
func Rank(q vector.Vector, m vector.Matrix, topN, exclude int) ([]Hit, error) {
	if topN < 1 {
		return nil, fmt.Errorf("top_n must be >= 1, got %d: %w", topN, domain.ErrInvalidArgument)
	}
	if q.Space() == nil || q.Space() != m.Space() {
		return nil, fmt.Errorf("rank: query and corpus come from different vectorizers: %w", domain.ErrSpaceMismatch)
	}

	scores, err := Scores(q, m)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i] = recommendation.Round(scores[i])
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	hits := make([]Hit, 0, min(topN, len(order)))
	for _, row := range order {
		if len(hits) == topN {
			break
		}
		if row == exclude {
			continue
		}
		hits = append(hits, Hit{Row: row, Score: scores[row]})
	}
	return hits, nil
}

// Scores returns the cosine similarity of q with every row of m, in row order.
func Scores(q vector.Vector, m vector.Matrix) ([]float64, error) {
	scores := make([]float64, m.Rows())
	for i := range scores {
		row, err := m.Row(i)
		if err != nil {
			return nil, fmt.Errorf("score row %d: %w", i, err)
		}
		s, err := vector.Cosine(q, row)
		if err != nil {
			return nil, fmt.Errorf("score row %d: %w", i, err)
		}
		scores[i] = s
	}
	return scores, nil
}
