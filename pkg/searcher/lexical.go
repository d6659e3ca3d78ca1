package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Aman-CERP/versio/internal/store"
)

// LexicalSearcher ranks verses by summing precomputed BM25 term scores.
//
// For each distinct query term it reads the MaxResults best-scoring verses
// for that term, then sums the per-term scores per verse. A verse only
// contributes for terms where it made that term's top list.
type LexicalSearcher struct {
	store        store.TermScoreStore
	volumeFilter bool
	phraseFilter bool
}

var _ Searcher = (*LexicalSearcher)(nil)

// LexicalOption configures a LexicalSearcher.
type LexicalOption func(*LexicalSearcher)

// WithTermStore sets the term score store. Required.
func WithTermStore(s store.TermScoreStore) LexicalOption {
	return func(l *LexicalSearcher) {
		l.store = s
	}
}

// WithLexicalVolumeFilter controls whether Options.Volumes applies to
// lexical results. Defaults to true.
func WithLexicalVolumeFilter(enabled bool) LexicalOption {
	return func(l *LexicalSearcher) {
		l.volumeFilter = enabled
	}
}

// WithLexicalPhraseFilter controls quoted-phrase filtering. Defaults to true.
func WithLexicalPhraseFilter(enabled bool) LexicalOption {
	return func(l *LexicalSearcher) {
		l.phraseFilter = enabled
	}
}

// NewLexicalSearcher creates a lexical searcher.
//
// Returns ErrNilStore if no store is provided.
func NewLexicalSearcher(opts ...LexicalOption) (*LexicalSearcher, error) {
	l := &LexicalSearcher{volumeFilter: true, phraseFilter: true}

	for _, opt := range opts {
		opt(l)
	}

	if l.store == nil {
		return nil, ErrNilStore
	}

	return l, nil
}

// Search returns verses ordered by summed term score. Ties keep the order
// in which verses were first seen.
func (l *LexicalSearcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	start := time.Now()

	q, err := ParseQuery(query, l.phraseFilter)
	if err != nil {
		return nil, err
	}

	limit := opts.maxResults()
	volumes := store.AllVolumes()
	if l.volumeFilter {
		volumes = opts.Volumes
	}
	filter := q.Filter(volumes)

	results := make([]Result, 0)
	index := make(map[int64]int)
	for _, term := range q.Terms {
		for sv, err := range l.store.TopTermScores(ctx, term, limit, filter) {
			if err != nil {
				return nil, fmt.Errorf("lexical search for %q: %w", term, err)
			}
			if i, ok := index[sv.VerseID]; ok {
				results[i].Score += sv.Score
				continue
			}
			index[sv.VerseID] = len(results)
			results = append(results, Result{Verse: sv.Verse, Score: sv.Score, Source: SourceLexical})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	slog.Debug("lexical_search_complete",
		slog.Int("terms", len(q.Terms)),
		slog.Int("phrases", len(q.Phrases)),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}
