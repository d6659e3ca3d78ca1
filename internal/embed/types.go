// Package embed maps text to fixed-length vectors for the semantic index.
//
// Two providers exist: a deterministic hash-based [StaticEmbedder] that needs
// no network or model download, and an [OllamaEmbedder] that calls a local
// Ollama server. Query vectors are memoised by [CachedEmbedder].
package embed

import (
	"context"
	"errors"
	"math"
	"time"
)

// Common embedding constants.
const (
	// StaticDimensions is the default vector length of the static embedder.
	StaticDimensions = 384

	// DefaultTimeout bounds one Ollama request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for one chunk during indexing.
	DefaultMaxRetries = 3
)

// ErrClosed is returned by an embedder after Close.
var ErrClosed = errors.New("embedder is closed")

// Embedder generates vector embeddings from text.
//
// Implementations must be deterministic for identical input and model, and
// safe for concurrent use.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier recorded in index_state.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector scales v to unit length. A zero vector is returned as is.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
