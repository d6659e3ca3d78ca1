package searcher

import (
	"context"
	"errors"

	"github.com/Aman-CERP/versio/internal/store"
)

// ErrNilStore is returned when a searcher is created without a store.
var ErrNilStore = errors.New("store is required")

// ErrNilEmbedder is returned when a SemanticSearcher is created without an embedder.
var ErrNilEmbedder = errors.New("embedder is required")

// ErrNoSearchers is returned when a FusionSearcher is missing either engine.
var ErrNoSearchers = errors.New("lexical and semantic searchers are required")

// Default search options.
const (
	DefaultMaxResults = 30
	DefaultThreshold  = 0.7
)

// Result sources.
const (
	SourceLexical  = "lexical"
	SourceSemantic = "semantic"
)

// Searcher ranks verses for a query.
//
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search returns at most opts.MaxResults verses, best first.
	//
	// A blank query fails with ERR_404_QUERY_EMPTY. No matches is an empty
	// slice and a nil error.
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// Result is one ranked verse.
type Result struct {
	store.Verse

	// Score is the aggregate score: a BM25 sum for lexical results, the
	// best chunk cosine similarity for semantic ones.
	Score float64 `json:"distance"`

	// Chunks holds the chunk texts above the threshold (semantic only),
	// in chunk order.
	Chunks []string `json:"chunks,omitempty"`

	// Source is the engine that produced the result.
	Source string `json:"source"`
}

// Options tunes one search.
type Options struct {
	// MaxResults caps each engine's list. Non-positive uses DefaultMaxResults.
	MaxResults int

	// Threshold is the minimum cosine similarity, exclusive (semantic only).
	Threshold float64

	// Volumes lists the volumes to leave out. The zero value keeps all.
	Volumes store.VolumeFilter
}

// DefaultOptions returns 30 results, a 0.7 threshold and all volumes.
func DefaultOptions() Options {
	return Options{
		MaxResults: DefaultMaxResults,
		Threshold:  DefaultThreshold,
		Volumes:    store.AllVolumes(),
	}
}

func (o Options) maxResults() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}
