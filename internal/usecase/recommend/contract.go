package recommend

import (
	"context"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	"github.com/kailas-cloud/newsrec/internal/repository/corpus"
)

// Loader reads the corpus. Documents must carry dense ids 0..n-1 in order.
type Loader interface {
	Load(ctx context.Context) ([]domdoc.Document, corpus.Report, error)
}

// Normalizer prepares text for the lexical strategy.
type Normalizer interface {
	Normalize(text string) string
}

// Embedder vectorizes text for the semantic strategy.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
