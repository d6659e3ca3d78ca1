package searcher

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// FusionSearcher runs the lexical and semantic engines concurrently and
// returns both lists back to back: lexical results first, then semantic.
//
// The lists are not merged or re-ranked. Their scores are on different
// scales, and a verse found by both engines appears twice with a
// different Source on each entry. A failure in either engine fails the
// search.
type FusionSearcher struct {
	lexical  Searcher
	semantic Searcher
}

var _ Searcher = (*FusionSearcher)(nil)

// FusionOption configures a FusionSearcher.
type FusionOption func(*FusionSearcher)

// WithLexicalSearcher sets the lexical engine. Required.
func WithLexicalSearcher(s Searcher) FusionOption {
	return func(f *FusionSearcher) {
		f.lexical = s
	}
}

// WithSemanticSearcher sets the semantic engine. Required.
func WithSemanticSearcher(s Searcher) FusionOption {
	return func(f *FusionSearcher) {
		f.semantic = s
	}
}

// NewFusionSearcher creates a fusion searcher.
//
// Returns ErrNoSearchers unless both engines are set.
func NewFusionSearcher(opts ...FusionOption) (*FusionSearcher, error) {
	f := &FusionSearcher{}

	for _, opt := range opts {
		opt(f)
	}

	if f.lexical == nil || f.semantic == nil {
		return nil, ErrNoSearchers
	}

	return f, nil
}

// Search returns len(lexical)+len(semantic) results.
func (f *FusionSearcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	start := time.Now()

	// Reject a blank query before starting either engine.
	if _, err := ParseQuery(query, false); err != nil {
		return nil, err
	}

	var lexical, semantic []Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lexical, err = f.lexical.Search(gctx, query, opts)
		return err
	})
	g.Go(func() error {
		var err error
		semantic, err = f.semantic.Search(gctx, query, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(lexical)+len(semantic))
	results = append(results, lexical...)
	results = append(results, semantic...)

	slog.Debug("fusion_search_complete",
		slog.Int("lexical", len(lexical)),
		slog.Int("semantic", len(semantic)),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}
