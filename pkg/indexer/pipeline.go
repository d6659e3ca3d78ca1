package indexer

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/Aman-CERP/versio/internal/chunk"
	"github.com/Aman-CERP/versio/internal/config"
	"github.com/Aman-CERP/versio/internal/embed"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
)

// Pipeline stages reported through PipelineOptions.Progress.
const (
	StageCopy       = "copy"
	StageEmbeddings = "embeddings"
	StageBM25       = "bm25"
)

// lockRetryDelay is the polling interval while waiting for the index lock.
const lockRetryDelay = 200 * time.Millisecond

// PipelineOptions controls one pipeline run.
type PipelineOptions struct {
	// Source overrides paths.corpus_db.
	Source string

	// Force rebuilds even when the corpus and parameters are unchanged.
	Force bool

	// Progress receives per-stage (completed, total) counts.
	Progress func(stage string, completed, total int)
}

// Report describes a pipeline run.
type Report struct {
	RunID       string
	Source      string
	DBPath      string
	Fingerprint string
	// Skipped is true when an up-to-date index was found and kept.
	Skipped    bool
	Embeddings BuildStats
	BM25       BuildStats
	Duration   time.Duration
}

// Pipeline builds a complete index database from a source corpus: copy the
// corpus next to the derived path, build the embedding index, then the BM25
// index, record the build in index_state and rename the result over the
// derived path.
type Pipeline struct {
	cfg      *config.Config
	embedder embed.Embedder
}

// NewPipeline creates a pipeline. embedder must match cfg.Embeddings.
func NewPipeline(cfg *config.Config, embedder embed.Embedder) (*Pipeline, error) {
	if cfg == nil {
		return nil, verrors.ConfigError("configuration is required", nil)
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	return &Pipeline{cfg: cfg, embedder: embedder}, nil
}

// Run executes the pipeline. The destination database is locked for the
// whole run.
func (p *Pipeline) Run(ctx context.Context, opts PipelineOptions) (Report, error) {
	start := time.Now()

	src := opts.Source
	if src == "" {
		src = p.cfg.Paths.CorpusDB
	}
	dst := p.cfg.IndexDBPath()

	report := Report{RunID: uuid.NewString(), Source: src, DBPath: dst}
	log := slog.With(slog.String("run_id", report.RunID))

	lock := store.NewFileLock(dst)
	if err := lock.Lock(ctx, lockRetryDelay); err != nil {
		return report, err
	}
	defer func() { _ = lock.Unlock() }()

	fingerprint, err := Fingerprint(ctx, src)
	if err != nil {
		return report, err
	}
	report.Fingerprint = fingerprint
	params := p.params()

	if !opts.Force {
		current, err := p.upToDate(ctx, dst, fingerprint, params)
		if err != nil {
			return report, err
		}
		if current {
			report.Skipped = true
			report.Duration = time.Since(start)
			log.Info("index_up_to_date",
				slog.String("db", dst),
				slog.String("fingerprint", fingerprint))
			return report, nil
		}
	}

	log.Info("index_started",
		slog.String("source", src),
		slog.String("db", dst),
		slog.Bool("force", opts.Force))

	// Readers keep seeing the previous index until the finished build is
	// renamed over it.
	tmp := dst + ".building-" + report.RunID
	defer removeDatabase(tmp)

	p.report(opts, StageCopy, 0, 1)
	if err := store.CopyDatabase(ctx, src, tmp); err != nil {
		return report, err
	}
	p.report(opts, StageCopy, 1, 1)

	if err := p.build(ctx, tmp, src, fingerprint, params, opts, &report); err != nil {
		return report, err
	}

	if err := replaceDatabase(tmp, dst); err != nil {
		return report, verrors.New(verrors.ErrCodeFilePermission, "failed to install index at "+dst, err)
	}

	report.Duration = time.Since(start)
	log.Info("index_complete",
		slog.String("db", dst),
		slog.Int("documents", report.BM25.Documents),
		slog.Int("chunks", report.Embeddings.Rows),
		slog.Int("term_scores", report.BM25.Rows),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// build indexes the corpus copy at path and records the run in
// index_state. The store is checkpointed and closed before returning.
func (p *Pipeline) build(ctx context.Context, path, src, fingerprint string, params map[string]string, opts PipelineOptions, report *Report) (err error) {
	s, err := store.NewSQLiteStoreWithConfig(path, store.StoreConfig{CacheSizeMB: p.cfg.Performance.SQLiteCacheMB})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close index: %w", cerr)
		}
	}()

	if ok, err := s.HasCorpus(ctx); err != nil {
		return err
	} else if !ok {
		return verrors.New(verrors.ErrCodeInvalidInput,
			fmt.Sprintf("%s has no volumes/books/chapters/verses tables", src), nil).
			WithSuggestion("Point --source at a scripture corpus database")
	}

	embeddings, err := NewEmbeddingIndexer(
		WithChunkStore(s),
		WithEmbedder(p.embedder),
		WithChunker(chunk.NewSentenceChunkerWithOptions(chunk.Options{
			MaxTokens: p.cfg.Chunking.MaxTokens,
			Overlap:   p.cfg.Chunking.Overlap,
		})),
		WithWorkers(p.cfg.Performance.IndexWorkers),
		WithRetry(p.retryConfig()),
		WithProgress(func(done, total int) { p.report(opts, StageEmbeddings, done, total) }),
	)
	if err != nil {
		return err
	}
	if report.Embeddings, err = embeddings.Build(ctx); err != nil {
		return verrors.New(verrors.ErrCodeIndexFailed, "embedding index build failed", err)
	}

	bm25, err := NewBM25Indexer(WithStore(s), WithParams(p.cfg.BM25.K1, p.cfg.BM25.B))
	if err != nil {
		return err
	}
	p.report(opts, StageBM25, 0, 1)
	if report.BM25, err = bm25.Build(ctx); err != nil {
		return verrors.New(verrors.ErrCodeIndexFailed, "BM25 index build failed", err)
	}
	p.report(opts, StageBM25, 1, 1)

	state := map[string]string{
		store.StateKeyFingerprint:    fingerprint,
		store.StateKeyRunID:          report.RunID,
		store.StateKeyBuiltAt:        time.Now().UTC().Format(time.RFC3339),
		store.StateKeyDocumentCount:  strconv.Itoa(report.BM25.Documents),
		store.StateKeyTermScoreCount: strconv.Itoa(report.BM25.Rows),
		store.StateKeyChunkCount:     strconv.Itoa(report.Embeddings.Rows),
	}
	for k, v := range params {
		state[k] = v
	}
	if err := s.SetStates(ctx, state); err != nil {
		return fmt.Errorf("record index state: %w", err)
	}
	if err := s.Checkpoint(); err != nil {
		return fmt.Errorf("checkpoint index: %w", err)
	}
	return nil
}

// params returns the build parameters recorded in index_state. A change to
// any of them forces a rebuild.
func (p *Pipeline) params() map[string]string {
	return map[string]string{
		store.StateKeyChunkMaxTokens:      strconv.Itoa(p.cfg.Chunking.MaxTokens),
		store.StateKeyChunkOverlap:        strconv.Itoa(p.cfg.Chunking.Overlap),
		store.StateKeyBM25K1:              strconv.FormatFloat(p.cfg.BM25.K1, 'g', -1, 64),
		store.StateKeyBM25B:               strconv.FormatFloat(p.cfg.BM25.B, 'g', -1, 64),
		store.StateKeyEmbeddingModel:      p.embedder.ModelName(),
		store.StateKeyEmbeddingDimensions: strconv.Itoa(p.embedder.Dimensions()),
	}
}

// upToDate reports whether dst already holds an index of the same corpus
// built with the same parameters.
func (p *Pipeline) upToDate(ctx context.Context, dst, fingerprint string, params map[string]string) (bool, error) {
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return false, nil
	}

	s, err := store.NewSQLiteStoreWithConfig(dst, store.StoreConfig{CacheSizeMB: p.cfg.Performance.SQLiteCacheMB})
	if err != nil {
		return false, err
	}
	defer func() { _ = s.Close() }()

	state, err := s.States(ctx)
	if err != nil {
		return false, err
	}
	if state[store.StateKeyFingerprint] != fingerprint {
		return false, nil
	}
	for k, v := range params {
		if state[k] != v {
			return false, nil
		}
	}
	return true, nil
}

func (p *Pipeline) retryConfig() verrors.RetryConfig {
	cfg := verrors.DefaultRetryConfig()
	cfg.MaxRetries = p.cfg.Embeddings.MaxRetries
	if p.cfg.Embeddings.RetryInitialDelay > 0 {
		cfg.InitialDelay = p.cfg.Embeddings.RetryInitialDelay
	}
	cfg.Jitter = true
	return cfg
}

func (p *Pipeline) report(opts PipelineOptions, stage string, done, total int) {
	if opts.Progress != nil {
		opts.Progress(stage, done, total)
	}
}

// Fingerprint hashes the ordered (id, text) pairs of the corpus at path
// with BLAKE3. Any change to verse ids or text changes the fingerprint.
func Fingerprint(ctx context.Context, path string) (string, error) {
	h := blake3.New()
	var id [8]byte
	err := store.ReadDocuments(ctx, path, func(d store.Document) error {
		binary.LittleEndian.PutUint64(id[:], uint64(d.ID))
		_, _ = h.Write(id[:])
		_, _ = h.Write([]byte(d.Text))
		_, _ = h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// replaceDatabase renames the finished database at tmp over dst. Stale
// WAL/SHM files of dst are removed first so they are not replayed onto the
// new file.
func replaceDatabase(tmp, dst string) error {
	for _, sidecar := range []string{dst + "-wal", dst + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return os.Rename(tmp, dst)
}

// removeDatabase deletes path and its sidecar files, ignoring missing ones.
func removeDatabase(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}
