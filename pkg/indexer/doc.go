// Package indexer builds the two retrieval indexes of a scripture database.
//
// # Components
//
//   - [BM25Indexer] precomputes the BM25 contribution of every (verse, term)
//     pair into the term_scores table.
//   - [EmbeddingIndexer] splits every verse into sentence-aligned chunks,
//     embeds each chunk once and stores the vectors in verse_chunks.
//   - [Pipeline] copies a source corpus to the derived index database, runs
//     both builds under a file lock and records the build in index_state.
//
// Both indexers replace their table atomically: readers see the previous
// complete index or the new one, never a partial rebuild.
//
// # Usage
//
//	bm25, err := indexer.NewBM25Indexer(indexer.WithStore(s))
//	if err != nil {
//	    return err
//	}
//	stats, err := bm25.Build(ctx)
package indexer
