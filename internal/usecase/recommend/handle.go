package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// BuildFunc constructs the engine.
type BuildFunc func(ctx context.Context) (*Engine, error)

// Handle builds the engine at most once and shares it afterwards.
// Callers waiting on Get give up when their own context ends; the build keeps running.
type Handle struct {
	build  BuildFunc
	once   sync.Once
	done   chan struct{}
	engine *Engine
	err    error
}

// NewHandle creates a handle; nothing is built until Start or Get.
func NewHandle(build BuildFunc) *Handle {
	return &Handle{build: build, done: make(chan struct{})}
}

// NewReadyHandle wraps an already built engine.
func NewReadyHandle(e *Engine) *Handle {
	h := &Handle{done: make(chan struct{}), engine: e}
	h.once.Do(func() { close(h.done) })
	return h
}

// Start triggers the build in the background. Repeated calls are no-ops.
func (h *Handle) Start(ctx context.Context) {
	h.once.Do(func() {
		go h.run(context.WithoutCancel(ctx))
	})
}

// Get starts the build if needed and waits for its result.
// A failed build is not retried; every caller observes the same error.
func (h *Handle) Get(ctx context.Context) (*Engine, error) {
	h.Start(ctx)
	select {
	case <-h.done:
		return h.engine, h.err
	case <-ctx.Done():
		return nil, fmt.Errorf("await engine: %w", ctx.Err())
	}
}

// Ready returns the engine without waiting. It reports ErrNotInitialized
// while the build is in progress or was never started.
func (h *Handle) Ready() (*Engine, error) {
	select {
	case <-h.done:
		return h.engine, h.err
	default:
		return nil, fmt.Errorf("recommendation engine: %w", domain.ErrNotInitialized)
	}
}

func (h *Handle) run(ctx context.Context) {
	defer close(h.done)
	e, err := h.build(ctx)
	if err != nil {
		h.err = fmt.Errorf("build engine: %w", err)
		return
	}
	h.engine = e
}
