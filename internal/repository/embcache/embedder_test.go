package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{tokensEach: 7}
	ce, ms := newTestCachedEmbedder(t, inner, Options{Model: "e5", TTL: time.Hour})
	ctx := context.Background()

	first, err := ce.Embed(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 7 || first.Embedding[0] != 7 {
		t.Fatalf("unexpected miss result %+v", first)
	}
	if len(ms.setKeys) != 1 || ms.ttls[ms.setKeys[0]] != time.Hour {
		t.Fatalf("expected one put with TTL, got %v", ms.ttls)
	}

	second, err := ce.Embed(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalTokens != 0 || second.Embedding[0] != 7 {
		t.Fatalf("expected cached vector with zero tokens, got %+v", second)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestEmbed_KeysScopedByPrefixAndModel(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{Prefix: "test:", Model: "e5"})

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.keysWithPrefix("test:emb:e5:") != 1 {
		t.Errorf("expected key under test:emb:e5:, got %v", ms.setKeys)
	}

	other := New(inner, ms, Options{Prefix: "test:", Model: "bge"}, nil, ce.logger)
	if _, err := other.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("different models must not share entries, got %d inner calls", inner.calls)
	}
}

func TestEmbed_DefaultPrefix(t *testing.T) {
	ce, ms := newTestCachedEmbedder(t, &mockEmbedder{}, Options{})

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.keysWithPrefix(DefaultPrefix+"emb:") != 1 {
		t.Errorf("expected default prefix, got %v", ms.setKeys)
	}
}

func TestEmbed_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getErr = errors.New("connection reset")
	ms.setErr = errors.New("connection reset")

	res, err := ce.Embed(context.Background(), "abc")
	if err != nil {
		t.Fatalf("cache failures must not fail Embed: %v", err)
	}
	if res.Embedding[0] != 3 {
		t.Errorf("unexpected vector %v", res.Embedding)
	}
}

func TestEmbed_CorruptEntryTreatedAsMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.data[ce.cacheKey("abc")] = []byte{1, 2, 3}

	if _, err := ce.Embed(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner call for corrupt entry, got %d", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	if _, err := ce.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(ms.setKeys) != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

// --- BatchEmbed ---

func TestBatchEmbed_AllMisses(t *testing.T) {
	inner := &mockEmbedder{tokensEach: 5}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[1][0] != 2 {
		t.Fatalf("unexpected embeddings %v", res.Embeddings)
	}
	if inner.batchCalls != 1 || len(ms.setKeys) != 2 {
		t.Errorf("expected 1 batch call and 2 puts, got %d and %d", inner.batchCalls, len(ms.setKeys))
	}
	if res.TotalTokens != 10 {
		t.Errorf("expected TotalTokens=10, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &mockEmbedder{tokensEach: 5}
	ce, _ := newTestCachedEmbedder(t, inner, Options{})
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"a", "bb"}); err != nil {
		t.Fatalf("warm: %v", err)
	}
	res, err := ce.BatchEmbed(ctx, []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 0 || inner.batchCalls != 1 {
		t.Errorf("expected cached answer, tokens=%d batchCalls=%d", res.TotalTokens, inner.batchCalls)
	}
}

func TestBatchEmbed_MixedHitsMisses(t *testing.T) {
	inner := &mockEmbedder{tokensEach: 3}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.data[ce.cacheKey("hit")] = vectorToCacheBytes([]float32{0.9, 0.9})

	res, err := ce.BatchEmbed(context.Background(), []string{"miss1", "hit", "miss22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings[1][0] != 0.9 {
		t.Errorf("expected cached vector at index 1, got %v", res.Embeddings[1])
	}
	if res.Embeddings[0][0] != 5 || res.Embeddings[2][0] != 6 {
		t.Errorf("expected fresh vectors for misses, got %v and %v", res.Embeddings[0], res.Embeddings[2])
	}
	if len(inner.batchInputs) != 1 || len(inner.batchInputs[0]) != 2 {
		t.Fatalf("expected only misses sent to inner, got %v", inner.batchInputs)
	}
	if res.TotalTokens != 6 {
		t.Errorf("expected TotalTokens=6, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_ReadFailureEmbedsEverything(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getErr = errors.New("timeout")

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || len(inner.batchInputs[0]) != 2 {
		t.Errorf("expected full batch embedded, got %v", inner.batchInputs)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: errors.New("api down")}
	ce, _ := newTestCachedEmbedder(t, inner, Options{})

	if _, err := ce.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error from inner batch embedder")
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{})

	res, err := ce.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil for empty input")
	}
}

func TestCacheBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("value %d: %v != %v", i, in[i], out[i])
		}
	}
	if _, err := bytesToVector([]byte{1, 2}); err == nil {
		t.Error("expected error for truncated data")
	}
}
