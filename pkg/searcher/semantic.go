package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Aman-CERP/versio/internal/embed"
	"github.com/Aman-CERP/versio/internal/store"
)

// SemanticSearcher ranks verses by the cosine similarity between the query
// embedding and the verse's chunk embeddings.
//
// Every chunk that passes the volume and phrase filter is compared. Chunks
// at or below Options.Threshold are dropped; a verse scores the maximum
// similarity among its remaining chunks, and verses with none are excluded.
type SemanticSearcher struct {
	store        store.ChunkStore
	embedder     embed.Embedder
	phraseFilter bool
}

var _ Searcher = (*SemanticSearcher)(nil)

// SemanticOption configures a SemanticSearcher.
type SemanticOption func(*SemanticSearcher)

// WithChunkStore sets the chunk store. Required.
func WithChunkStore(s store.ChunkStore) SemanticOption {
	return func(v *SemanticSearcher) {
		v.store = s
	}
}

// WithEmbedder sets the query embedder. Required. It must be the model the
// index was built with.
func WithEmbedder(e embed.Embedder) SemanticOption {
	return func(v *SemanticSearcher) {
		v.embedder = e
	}
}

// WithSemanticPhraseFilter controls quoted-phrase filtering. Defaults to true.
func WithSemanticPhraseFilter(enabled bool) SemanticOption {
	return func(v *SemanticSearcher) {
		v.phraseFilter = enabled
	}
}

// NewSemanticSearcher creates a semantic searcher.
//
// Returns ErrNilStore or ErrNilEmbedder when a required option is missing.
func NewSemanticSearcher(opts ...SemanticOption) (*SemanticSearcher, error) {
	v := &SemanticSearcher{phraseFilter: true}

	for _, opt := range opts {
		opt(v)
	}

	if v.store == nil {
		return nil, ErrNilStore
	}
	if v.embedder == nil {
		return nil, ErrNilEmbedder
	}

	return v, nil
}

// Search embeds the query once and scans all chunks.
func (v *SemanticSearcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	start := time.Now()

	q, err := ParseQuery(query, v.phraseFilter)
	if err != nil {
		return nil, err
	}

	vec, err := v.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]Result, 0)
	index := make(map[int64]int)
	scanned := 0
	for row, err := range v.store.ScanChunks(ctx, q.Filter(opts.Volumes)) {
		if err != nil {
			return nil, fmt.Errorf("scan chunks: %w", err)
		}
		scanned++

		sim, err := CosineSimilarity(vec, row.Chunk.Embedding)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of verse %d: %w", row.Chunk.ID, row.VerseID, err)
		}
		if sim <= opts.Threshold {
			continue
		}

		if i, ok := index[row.VerseID]; ok {
			results[i].Score = max(results[i].Score, sim)
			results[i].Chunks = append(results[i].Chunks, row.Chunk.Text)
			continue
		}
		index[row.VerseID] = len(results)
		results = append(results, Result{
			Verse:  row.Verse,
			Score:  sim,
			Chunks: []string{row.Chunk.Text},
			Source: SourceSemantic,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit := opts.maxResults(); len(results) > limit {
		results = results[:limit]
	}

	slog.Debug("semantic_search_complete",
		slog.Int("chunks_scanned", scanned),
		slog.Float64("threshold", opts.Threshold),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}
