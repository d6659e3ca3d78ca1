package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/Aman-CERP/versio/internal/store"
)

// ErrNilStore is returned when an indexer is created without a store.
var ErrNilStore = errors.New("store is required")

// ErrNilEmbedder is returned when an EmbeddingIndexer is created without an embedder.
var ErrNilEmbedder = errors.New("embedder is required")

// Builder rebuilds one index table from the corpus.
//
// Build replaces the whole table. On error the previous table is left
// untouched.
type Builder interface {
	Build(ctx context.Context) (BuildStats, error)
}

// BuildStats summarises one Build.
type BuildStats struct {
	// Documents is the number of verses read.
	Documents int

	// Rows is the number of rows written (term scores or chunks).
	Rows int

	// Duration is the wall time of the build.
	Duration time.Duration
}

// BM25Store is the storage a BM25Indexer reads from and writes to.
type BM25Store interface {
	store.CorpusReader
	store.TermScoreStore
}

// ChunkStore is the storage an EmbeddingIndexer reads from and writes to.
type ChunkStore interface {
	store.CorpusReader
	store.ChunkStore
}

// ProgressFunc receives (completed, total) document counts during a build.
type ProgressFunc func(completed, total int)
