// Package store persists the scripture corpus and the two retrieval indexes
// (BM25 term scores and chunk embeddings) in a single SQLite database.
package store

import (
	"context"
	"errors"
	"iter"
)

// Volume titles as stored in volumes.volume_title.
const (
	VolumeBookOfMormon         = "Book of Mormon"
	VolumeDoctrineAndCovenants = "Doctrine and Covenants"
	VolumeNewTestament         = "New Testament"
	VolumeOldTestament         = "Old Testament"
)

// State keys written to index_state after a successful build.
const (
	StateKeyFingerprint         = "fingerprint"
	StateKeyRunID               = "run_id"
	StateKeyBuiltAt             = "built_at"
	StateKeyChunkMaxTokens      = "chunk_max_tokens"
	StateKeyChunkOverlap        = "chunk_overlap"
	StateKeyBM25K1              = "bm25_k1"
	StateKeyBM25B               = "bm25_b"
	StateKeyEmbeddingModel      = "embedding_model"
	StateKeyEmbeddingDimensions = "embedding_dimensions"
	StateKeyDocumentCount       = "document_count"
	StateKeyTermScoreCount      = "term_score_count"
	StateKeyChunkCount          = "chunk_count"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrCursorConsumed is yielded when a row sequence is ranged over twice.
	ErrCursorConsumed = errors.New("row cursor already consumed")
)

// Verse is one verse with the display metadata of its chapter, book and
// volume. JSON names follow the search result wire format.
type Verse struct {
	VolumeID         int64  `json:"volume_id"`
	BookID           int64  `json:"book_id"`
	ChapterID        int64  `json:"chapter_id"`
	VerseID          int64  `json:"verse_id"`
	VolumeTitle      string `json:"volume_title"`
	BookTitle        string `json:"book_title"`
	VolumeLongTitle  string `json:"volume_long_title"`
	BookLongTitle    string `json:"book_long_title"`
	VolumeSubtitle   string `json:"volume_subtitle"`
	BookSubtitle     string `json:"book_subtitle"`
	VolumeShortTitle string `json:"volume_short_title"`
	BookShortTitle   string `json:"book_short_title"`
	VolumeLDSURL     string `json:"volume_lds_url"`
	BookLDSURL       string `json:"book_lds_url"`
	ChapterNumber    int    `json:"chapter_number"`
	VerseNumber      int    `json:"verse_number"`
	ScriptureText    string `json:"scripture_text"`
	VerseTitle       string `json:"verse_title"`
	VerseShortTitle  string `json:"verse_short_title"`
}

// Document is the (id, text) view of a verse consumed by the indexers.
type Document struct {
	ID   int64
	Text string
}

// TermScore is the static BM25 contribution of Term to verse VerseID.
type TermScore struct {
	VerseID int64
	Term    string
	Score   float64
}

// Chunk is one embedded segment of a verse.
type Chunk struct {
	ID        int64
	VerseID   int64
	Text      string
	Embedding []float32
}

// ScoredVerse is a verse joined with one term score row.
type ScoredVerse struct {
	Verse
	Score float64
}

// ChunkRow is a verse joined with one of its chunks.
type ChunkRow struct {
	Verse
	Chunk Chunk
}

// VolumeFilter holds the per-volume exclusion flags. A set flag drops verses
// whose volume title equals that volume; verses of any other volume always
// pass. The zero value excludes nothing.
type VolumeFilter struct {
	ExcludeBookOfMormon         bool
	ExcludeDoctrineAndCovenants bool
	ExcludeNewTestament         bool
	ExcludeOldTestament         bool
}

// AllVolumes returns a filter that excludes nothing.
func AllVolumes() VolumeFilter {
	return VolumeFilter{}
}

// QueryFilter restricts which verses a read query returns.
type QueryFilter struct {
	Volumes VolumeFilter
	// Phrases must each occur in the verse text, ignoring case.
	Phrases []string
}

// CorpusReader reads the verse corpus.
type CorpusReader interface {
	// CountVerses returns the number of verses.
	CountVerses(ctx context.Context) (int, error)
	// AverageTextLength returns the mean verse text length in characters.
	AverageTextLength(ctx context.Context) (float64, error)
	// Documents yields every verse in id order. Single pass.
	Documents(ctx context.Context) iter.Seq2[Document, error]
}

// TermScoreStore persists and queries BM25 term scores.
type TermScoreStore interface {
	// ReplaceTermScores atomically replaces the whole table.
	ReplaceTermScores(ctx context.Context, scores []TermScore) (int, error)
	// TopTermScores yields the highest scoring verses for term, best first.
	TopTermScores(ctx context.Context, term string, limit int, filter QueryFilter) iter.Seq2[ScoredVerse, error]
	// TermScoreCount returns the number of stored rows.
	TermScoreCount(ctx context.Context) (int, error)
}

// ChunkStore persists and scans chunk embeddings.
type ChunkStore interface {
	// ReplaceChunks atomically replaces the whole table with the chunks
	// fill writes. Chunk ids are assigned in write order starting at 1.
	ReplaceChunks(ctx context.Context, fill func(write func(Chunk) error) error) (int, error)
	// ScanChunks yields every chunk joined with its verse. Single pass.
	ScanChunks(ctx context.Context, filter QueryFilter) iter.Seq2[ChunkRow, error]
	// ChunkCount returns the number of stored chunks.
	ChunkCount(ctx context.Context) (int, error)
}

// StateStore is a key/value table for build metadata.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
	SetStates(ctx context.Context, values map[string]string) error
	States(ctx context.Context) (map[string]string, error)
}

// Store is everything the indexers and query engines need.
type Store interface {
	CorpusReader
	TermScoreStore
	ChunkStore
	StateStore
	Close() error
}
