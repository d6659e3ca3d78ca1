package searcher

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/store/storetest"
	"github.com/Aman-CERP/versio/pkg/indexer"
)

// MockSearcher implements Searcher for testing.
type MockSearcher struct {
	SearchFn     func(ctx context.Context, query string, opts Options) ([]Result, error)
	searchCalled atomic.Int32
}

func (m *MockSearcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	m.searchCalled.Add(1)
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, opts)
	}
	return nil, nil
}

// newBM25Store seeds verses and builds their term scores.
func newBM25Store(t testing.TB, verses ...store.Verse) *store.SQLiteStore {
	t.Helper()
	s := storetest.NewStore(t, verses...)
	idx, err := indexer.NewBM25Indexer(indexer.WithStore(s))
	require.NoError(t, err)
	_, err = idx.Build(context.Background())
	require.NoError(t, err)
	return s
}

// seedChunks replaces the chunk table with chunks, in order.
func seedChunks(t testing.TB, s store.ChunkStore, chunks ...store.Chunk) {
	t.Helper()
	_, err := s.ReplaceChunks(context.Background(), func(write func(store.Chunk) error) error {
		for _, c := range chunks {
			if err := write(c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func verseIDs(results []Result) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.VerseID
	}
	return ids
}
