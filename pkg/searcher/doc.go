// Package searcher ranks scripture verses against a free-text query.
//
// Three engines implement [Searcher]:
//
//   - [LexicalSearcher]: per-term top-K over the precomputed BM25 term
//     scores, summed per verse.
//   - [SemanticSearcher]: embeds the query, scans every chunk embedding,
//     keeps chunks above a cosine threshold and scores each verse by its
//     best chunk.
//   - [FusionSearcher]: runs both and returns the lexical list followed by
//     the semantic list, unmerged.
//
// # Usage
//
//	s, err := searcher.New(searcher.StrategyFusion, searcher.Dependencies{
//	    Store:    st,
//	    Embedder: embedder,
//	})
//	if err != nil {
//	    return err
//	}
//	results, err := s.Search(ctx, `"love one another"`, searcher.DefaultOptions())
//
// Text in double quotes is also a phrase filter: every result must contain
// each quoted phrase, ignoring case.
//
// # Thread Safety
//
// All Searcher implementations are safe for concurrent use.
package searcher
