package health

import (
	"context"

	"github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// EngineReader exposes the engine without waiting for its build.
type EngineReader interface {
	Ready() (*recommend.Engine, error)
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
