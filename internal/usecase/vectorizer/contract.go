package vectorizer

import (
	"context"

	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/domain/vector"
)

// Vectorizer turns a corpus into a row matrix and queries into vectors of
// the same feature space. Fit must be called once before Encode.
type Vectorizer interface {
	Strategy() strategy.Strategy
	Fit(ctx context.Context, texts []string) (vector.Matrix, error)
	Encode(ctx context.Context, text string) (vector.Vector, error)
}
