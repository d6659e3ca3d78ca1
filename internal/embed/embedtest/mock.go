// Package embedtest provides test doubles for embed.Embedder.
package embedtest

import (
	"context"
	"sync"
)

// MockEmbedder implements embed.Embedder with overridable functions.
// Unset functions fall back to a zero vector of Dims length.
type MockEmbedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
	Dims         int
	Model        string

	mu    sync.Mutex
	calls []string
}

// Embed records text and delegates to EmbedFn.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.EmbedFn != nil {
		return m.EmbedFn(ctx, text)
	}
	return make([]float32, m.Dimensions()), nil
}

// EmbedBatch delegates to EmbedBatchFn or calls Embed per text.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedBatchFn != nil {
		return m.EmbedBatchFn(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns Dims, or 4 when unset.
func (m *MockEmbedder) Dimensions() int {
	if m.Dims == 0 {
		return 4
	}
	return m.Dims
}

// ModelName returns Model, or "mock" when unset.
func (m *MockEmbedder) ModelName() string {
	if m.Model == "" {
		return "mock"
	}
	return m.Model
}

// Available always reports true.
func (m *MockEmbedder) Available(context.Context) bool { return true }

// Close is a no-op.
func (m *MockEmbedder) Close() error { return nil }

// Calls returns the texts passed to Embed, in call order.
func (m *MockEmbedder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// VectorMap returns an EmbedFn that looks text up in vectors and returns
// fallback for unknown text.
func VectorMap(vectors map[string][]float32, fallback []float32) func(context.Context, string) ([]float32, error) {
	return func(_ context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return fallback, nil
	}
}
