package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Aman-CERP/versio/internal/store"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// BM25Indexer precomputes static BM25 term scores for every verse.
//
// The score of term t in verse d is
//
//	idf(t) * tf(t,d)*(k1+1) / (tf(t,d) + k1*(1-b+b*docLen(d)/avgDocLen))
//
// with idf(t) = ln((N-df(t)+0.5)/(df(t)+0.5)+1). docLen counts index tokens
// while avgDocLen is the mean text length in characters; existing indexes
// were scored that way and query results depend on it.
type BM25Indexer struct {
	store BM25Store
	k1    float64
	b     float64
}

var _ Builder = (*BM25Indexer)(nil)

// Option configures a BM25Indexer.
type Option func(*BM25Indexer)

// WithStore sets the corpus and term score store.
//
// This is a required option; NewBM25Indexer returns ErrNilStore without it.
func WithStore(s BM25Store) Option {
	return func(i *BM25Indexer) {
		i.store = s
	}
}

// WithParams sets k1 and b.
func WithParams(k1, b float64) Option {
	return func(i *BM25Indexer) {
		i.k1 = k1
		i.b = b
	}
}

// NewBM25Indexer creates a BM25 indexer with k1=1.5 and b=0.75 unless
// WithParams overrides them.
func NewBM25Indexer(opts ...Option) (*BM25Indexer, error) {
	i := &BM25Indexer{k1: DefaultK1, b: DefaultB}

	for _, opt := range opts {
		opt(i)
	}

	if i.store == nil {
		return nil, ErrNilStore
	}

	return i, nil
}

// docTerms holds the term frequencies of one verse.
type docTerms struct {
	id     int64
	length int
	tf     map[string]int
}

// Build recomputes the term_scores table. An empty corpus yields zero rows
// and no error.
func (i *BM25Indexer) Build(ctx context.Context) (BuildStats, error) {
	start := time.Now()
	slog.Info("bm25_build_started",
		slog.Float64("k1", i.k1),
		slog.Float64("b", i.b))

	n, err := i.store.CountVerses(ctx)
	if err != nil {
		return BuildStats{}, fmt.Errorf("count verses: %w", err)
	}
	avgDocLen, err := i.store.AverageTextLength(ctx)
	if err != nil {
		return BuildStats{}, fmt.Errorf("average text length: %w", err)
	}

	var docs []docTerms
	df := make(map[string]int)
	for doc, err := range i.store.Documents(ctx) {
		if err != nil {
			return BuildStats{}, fmt.Errorf("read documents: %w", err)
		}

		tokens := store.IndexTokens(doc.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		docs = append(docs, docTerms{id: doc.ID, length: len(tokens), tf: tf})
	}

	var scores []store.TermScore
	for _, d := range docs {
		terms := make([]string, 0, len(d.tf))
		for term := range d.tf {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		for _, term := range terms {
			scores = append(scores, store.TermScore{
				VerseID: d.id,
				Term:    term,
				Score:   Score(d.tf[term], df[term], n, d.length, avgDocLen, i.k1, i.b),
			})
		}
	}

	rows, err := i.store.ReplaceTermScores(ctx, scores)
	if err != nil {
		return BuildStats{}, fmt.Errorf("replace term scores: %w", err)
	}

	stats := BuildStats{Documents: len(docs), Rows: rows, Duration: time.Since(start)}
	slog.Info("bm25_build_complete",
		slog.Int("documents", stats.Documents),
		slog.Int("terms", len(df)),
		slog.Int("rows", stats.Rows),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// IDF returns the BM25 inverse document frequency of a term found in df of
// n documents.
func IDF(df, n int) float64 {
	return math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// Score returns the BM25 score of a term with frequency tf in a document of
// docLen tokens. A non-positive avgDocLen disables length normalisation.
func Score(tf, df, n, docLen int, avgDocLen, k1, b float64) float64 {
	norm := 1.0
	if avgDocLen > 0 {
		norm = 1 - b + b*float64(docLen)/avgDocLen
	}
	ftf := float64(tf)
	return IDF(df, n) * ftf * (k1 + 1) / (ftf + k1*norm)
}
