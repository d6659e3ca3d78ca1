// Package chunk splits verse text into sentence-aligned chunks for embedding.
package chunk

// Chunk size defaults.
const (
	DefaultMaxTokens = 128
	DefaultOverlap   = 16
)

// Chunker is the interface for splitting a document's text into chunks.
// Implementations must be deterministic: the same text and options always
// give the same chunks in source order.
type Chunker interface {
	// Chunk splits text into ordered chunk strings.
	Chunk(text string) []string
}

// Options configures the sentence chunker.
type Options struct {
	// MaxTokens bounds the whitespace-token count of a chunk. A single
	// sentence longer than MaxTokens becomes its own oversized chunk.
	MaxTokens int
	// Overlap is carried for index naming and state only. Chunks never
	// share sentences.
	Overlap int
}
