package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/versio/internal/chunk"
	"github.com/Aman-CERP/versio/internal/embed"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
)

// documentsPerWorker sizes a window: workers*documentsPerWorker documents
// are embedded concurrently before their chunks are written in order.
const documentsPerWorker = 16

// EmbeddingIndexer chunks every verse, embeds each chunk once and replaces
// the verse_chunks table with the result.
//
// Documents are embedded by a bounded worker pool, but chunks are written
// in document order, so chunk ids are deterministic for a given corpus and
// chunk size. Each embed call is retried with exponential backoff; a chunk
// that still fails aborts the build and the previous table is kept.
type EmbeddingIndexer struct {
	store    ChunkStore
	embedder embed.Embedder
	chunker  chunk.Chunker
	workers  int
	retry    verrors.RetryConfig
	progress ProgressFunc
}

var _ Builder = (*EmbeddingIndexer)(nil)

// EmbeddingOption configures an EmbeddingIndexer.
type EmbeddingOption func(*EmbeddingIndexer)

// WithChunkStore sets the corpus and chunk store. Required.
func WithChunkStore(s ChunkStore) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.store = s
	}
}

// WithEmbedder sets the embedder. Required.
func WithEmbedder(em embed.Embedder) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.embedder = em
	}
}

// WithChunker replaces the default sentence chunker.
func WithChunker(c chunk.Chunker) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.chunker = c
	}
}

// WithWorkers sets the number of documents embedded concurrently.
func WithWorkers(n int) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.workers = n
	}
}

// WithRetry sets the per-chunk retry policy.
func WithRetry(cfg verrors.RetryConfig) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.retry = cfg
	}
}

// WithProgress sets a callback invoked after each window is written.
func WithProgress(fn ProgressFunc) EmbeddingOption {
	return func(e *EmbeddingIndexer) {
		e.progress = fn
	}
}

// NewEmbeddingIndexer creates an embedding indexer.
//
// Returns ErrNilStore or ErrNilEmbedder when a required option is missing.
func NewEmbeddingIndexer(opts ...EmbeddingOption) (*EmbeddingIndexer, error) {
	e := &EmbeddingIndexer{
		chunker: chunk.NewSentenceChunker(),
		workers: runtime.NumCPU(),
		retry:   verrors.DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		return nil, ErrNilStore
	}
	if e.embedder == nil {
		return nil, ErrNilEmbedder
	}
	if e.workers < 1 {
		e.workers = 1
	}

	return e, nil
}

// Build recomputes the verse_chunks table.
func (e *EmbeddingIndexer) Build(ctx context.Context) (BuildStats, error) {
	start := time.Now()

	// Read everything first: the store has one connection and ReplaceChunks
	// holds it for the whole write.
	var docs []store.Document
	for doc, err := range e.store.Documents(ctx) {
		if err != nil {
			return BuildStats{}, fmt.Errorf("read documents: %w", err)
		}
		docs = append(docs, doc)
	}

	slog.Info("embedding_build_started",
		slog.Int("documents", len(docs)),
		slog.Int("workers", e.workers),
		slog.String("model", e.embedder.ModelName()),
		slog.Int("dimensions", e.embedder.Dimensions()))

	rows, err := e.store.ReplaceChunks(ctx, func(write func(store.Chunk) error) error {
		window := e.workers * documentsPerWorker
		for lo := 0; lo < len(docs); lo += window {
			hi := min(lo+window, len(docs))

			chunks, err := e.embedWindow(ctx, docs[lo:hi])
			if err != nil {
				return err
			}
			for _, perDoc := range chunks {
				for _, c := range perDoc {
					if err := write(c); err != nil {
						return err
					}
				}
			}

			if e.progress != nil {
				e.progress(hi, len(docs))
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("embedding_build_failed", slog.String("error", err.Error()))
		return BuildStats{}, err
	}

	stats := BuildStats{Documents: len(docs), Rows: rows, Duration: time.Since(start)}
	slog.Info("embedding_build_complete",
		slog.Int("documents", stats.Documents),
		slog.Int("chunks", stats.Rows),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// embedWindow chunks and embeds docs concurrently. The result is indexed
// like docs.
func (e *EmbeddingIndexer) embedWindow(ctx context.Context, docs []store.Document) ([][]store.Chunk, error) {
	out := make([][]store.Chunk, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, doc := range docs {
		g.Go(func() error {
			texts := e.chunker.Chunk(doc.Text)
			chunks := make([]store.Chunk, 0, len(texts))
			for j, text := range texts {
				vec, err := e.embedChunk(gctx, doc.ID, j, text)
				if err != nil {
					return err
				}
				chunks = append(chunks, store.Chunk{VerseID: doc.ID, Text: text, Embedding: vec})
			}
			out[i] = chunks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedChunk embeds one chunk under the retry policy and checks its width.
func (e *EmbeddingIndexer) embedChunk(ctx context.Context, verseID int64, ordinal int, text string) ([]float32, error) {
	cfg := e.retry
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		slog.Warn("embedding_chunk_retry",
			slog.Int64("verse_id", verseID),
			slog.Int("chunk", ordinal),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	vec, err := verrors.RetryWithResult(ctx, cfg, func() ([]float32, error) {
		return e.embedder.Embed(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("embed verse %d chunk %d: %w", verseID, ordinal, err)
	}

	if want := e.embedder.Dimensions(); len(vec) != want {
		return nil, verrors.New(verrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("verse %d chunk %d: embedding has %d dimensions, expected %d", verseID, ordinal, len(vec), want), nil)
	}
	return vec, nil
}
