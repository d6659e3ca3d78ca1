package searcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/embed"
	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/store/storetest"
	"github.com/Aman-CERP/versio/pkg/indexer"
)

var benchQueries = []string{
	"faith hope charity",
	"the lord spoke unto the prophet",
	`"living water"`,
	"covenant mercy",
	"shepherd",
}

// setupBenchStore builds both indexes over n synthetic verses.
func setupBenchStore(b *testing.B, n int) (*store.SQLiteStore, embed.Embedder) {
	b.Helper()
	s := newBM25Store(b, storetest.Synthetic(n, 42)...)
	embedder := embed.NewStaticEmbedder()

	idx, err := indexer.NewEmbeddingIndexer(indexer.WithChunkStore(s), indexer.WithEmbedder(embedder))
	require.NoError(b, err)
	_, err = idx.Build(context.Background())
	require.NoError(b, err)

	return s, embedder
}

func benchmarkSearcher(b *testing.B, s Searcher) {
	ctx := context.Background()
	opts := DefaultOptions()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Search(ctx, benchQueries[i%len(benchQueries)], opts); err != nil {
			b.Fatalf("search failed: %v", err)
		}
	}
}

func BenchmarkSearch_Scale(b *testing.B) {
	for _, scale := range []int{1000, 10000} {
		st, embedder := setupBenchStore(b, scale)
		deps := Dependencies{Store: st, Embedder: embedder}

		for _, strategy := range Strategies() {
			b.Run(fmt.Sprintf("%s_%d", strategy, scale), func(b *testing.B) {
				s, err := New(strategy, deps)
				require.NoError(b, err)
				benchmarkSearcher(b, s)
			})
		}
	}
}
