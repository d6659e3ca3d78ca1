package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/config"
	"github.com/Aman-CERP/versio/internal/embed"
	"github.com/Aman-CERP/versio/internal/embed/embedtest"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/store/storetest"
)

// pipelineConfig points a default config at a seeded source corpus.
func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Paths.CorpusDB = storetest.NewFileStore(t, "scriptures.db", storetest.LoveAndSun()...)
	cfg.Paths.OutDir = t.TempDir()
	cfg.Performance.IndexWorkers = 2
	return cfg
}

func openIndex(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil, embed.NewStaticEmbedder())
	assert.Equal(t, verrors.ErrCodeConfigInvalid, verrors.GetCode(err))

	_, err = NewPipeline(config.NewConfig(), nil)
	assert.ErrorIs(t, err, ErrNilEmbedder)
}

func TestPipeline_Run_BuildsDerivedDatabase(t *testing.T) {
	// Given: a source corpus and an output directory
	cfg := pipelineConfig(t)
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)

	var stages []string
	opts := PipelineOptions{Progress: func(stage string, done, total int) {
		if done == total {
			stages = append(stages, stage)
		}
	}}

	// When: running the pipeline
	report, err := p.Run(context.Background(), opts)

	// Then: the index lands at the derived name
	require.NoError(t, err)
	want := filepath.Join(cfg.Paths.OutDir, "scriptures_chunk128_overlap16.db")
	assert.Equal(t, want, report.DBPath)
	assert.FileExists(t, want)
	assert.False(t, report.Skipped)
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Fingerprint, 64)
	assert.Equal(t, []string{StageCopy, StageEmbeddings, StageBM25}, stages)

	// And: both indexes and the state are present
	s := openIndex(t, want)
	ctx := context.Background()
	chunks, err := s.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)
	terms, err := s.TermScoreCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, terms)

	state, err := s.States(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, state[store.StateKeyRunID])
	assert.Equal(t, report.Fingerprint, state[store.StateKeyFingerprint])
	assert.Equal(t, "128", state[store.StateKeyChunkMaxTokens])
	assert.Equal(t, "1.5", state[store.StateKeyBM25K1])
	assert.Equal(t, "static-384", state[store.StateKeyEmbeddingModel])
	assert.Equal(t, "2", state[store.StateKeyDocumentCount])
	assert.Equal(t, "9", state[store.StateKeyTermScoreCount])
	assert.Equal(t, "2", state[store.StateKeyChunkCount])
	_, err = time.Parse(time.RFC3339, state[store.StateKeyBuiltAt])
	assert.NoError(t, err)

	// And: the source corpus is untouched
	src := openIndex(t, cfg.Paths.CorpusDB)
	n, err := src.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPipeline_Run_SkipsUnchangedCorpus(t *testing.T) {
	cfg := pipelineConfig(t)
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := p.Run(ctx, PipelineOptions{})
	require.NoError(t, err)

	// When: running again with nothing changed
	second, err := p.Run(ctx, PipelineOptions{})

	// Then: the build is skipped and the old run id stays recorded
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	runID, err := openIndex(t, cfg.IndexDBPath()).GetState(ctx, store.StateKeyRunID)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, runID)
}

func TestPipeline_Run_RebuildsOnForceOrChangedParams(t *testing.T) {
	cfg := pipelineConfig(t)
	ctx := context.Background()
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)
	_, err = p.Run(ctx, PipelineOptions{})
	require.NoError(t, err)

	forced, err := p.Run(ctx, PipelineOptions{Force: true})
	require.NoError(t, err)
	assert.False(t, forced.Skipped)

	// A different embedding width changes the recorded parameters.
	p, err = NewPipeline(cfg, embed.NewStaticEmbedderWithDimensions(16))
	require.NoError(t, err)
	changed, err := p.Run(ctx, PipelineOptions{})
	require.NoError(t, err)
	assert.False(t, changed.Skipped)
}

func TestPipeline_Run_SourceOverride(t *testing.T) {
	cfg := pipelineConfig(t)
	other := storetest.NewFileStore(t, "other.db",
		storetest.Verse(7, store.VolumeDoctrineAndCovenants, "Search diligently, pray always."))
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)

	report, err := p.Run(context.Background(), PipelineOptions{Source: other})

	require.NoError(t, err)
	assert.Equal(t, other, report.Source)
	assert.Equal(t, 1, report.BM25.Documents)
}

func TestPipeline_Run_InPlace(t *testing.T) {
	// Given: the index database is the corpus itself
	cfg := pipelineConfig(t)
	cfg.Paths.IndexDB = cfg.Paths.CorpusDB
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)

	report, err := p.Run(context.Background(), PipelineOptions{})

	// Then: the corpus is replaced by an indexed copy of itself
	require.NoError(t, err)
	assert.Equal(t, cfg.Paths.CorpusDB, report.DBPath)
	n, err := openIndex(t, cfg.Paths.CorpusDB).ChunkCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPipeline_Run_MissingSource(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Paths.CorpusDB = filepath.Join(t.TempDir(), "missing.db")
	cfg.Paths.OutDir = t.TempDir()
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)

	_, err = p.Run(context.Background(), PipelineOptions{})

	assert.Equal(t, verrors.ErrCodeFileNotFound, verrors.GetCode(err))
}

func TestPipeline_Run_LockedIndex(t *testing.T) {
	// Given: another process holds the index lock
	cfg := pipelineConfig(t)
	holder := store.NewFileLock(cfg.IndexDBPath())
	ok, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = holder.Unlock() }()

	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	// When: running the pipeline
	_, err = p.Run(ctx, PipelineOptions{})

	// Then: it gives up with a lock error and builds nothing
	assert.Equal(t, verrors.ErrCodeIndexLocked, verrors.GetCode(err))
	_, statErr := os.Stat(cfg.IndexDBPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFingerprint_ChangesWithText(t *testing.T) {
	ctx := context.Background()
	a := storetest.NewFileStore(t, "a.db", storetest.LoveAndSun()...)
	b := storetest.NewFileStore(t, "b.db", storetest.LoveAndSun()...)
	c := storetest.NewFileStore(t, "c.db",
		storetest.Verse(1, store.VolumeNewTestament, "God is love. Love never fails!"),
		storetest.Verse(2, store.VolumeOldTestament, "The sun is bright."))

	fa, err := Fingerprint(ctx, a)
	require.NoError(t, err)
	fb, err := Fingerprint(ctx, b)
	require.NoError(t, err)
	fc, err := Fingerprint(ctx, c)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
}

func TestPipeline_Run_FailedRebuildKeepsPreviousIndex(t *testing.T) {
	// Given: a complete index
	cfg := pipelineConfig(t)
	cfg.Embeddings.MaxRetries = 0
	ctx := context.Background()
	p, err := NewPipeline(cfg, embed.NewStaticEmbedder())
	require.NoError(t, err)
	built, err := p.Run(ctx, PipelineOptions{})
	require.NoError(t, err)

	before := openIndex(t, built.DBPath)
	termScores, err := before.TermScoreCount(ctx)
	require.NoError(t, err)
	chunks, err := before.ChunkCount(ctx)
	require.NoError(t, err)
	state, err := before.States(ctx)
	require.NoError(t, err)
	require.NoError(t, before.Close())

	// When: a forced rebuild fails while embedding
	failing := &embedtest.MockEmbedder{Dims: embed.StaticDimensions, EmbedFn: func(context.Context, string) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}}
	p, err = NewPipeline(cfg, failing)
	require.NoError(t, err)
	_, err = p.Run(ctx, PipelineOptions{Force: true})
	require.Error(t, err)

	// Then: the previous index is untouched and no partial build is left
	after := openIndex(t, built.DBPath)
	n, err := after.TermScoreCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, termScores, n)
	n, err = after.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, chunks, n)
	got, err := after.States(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	leftovers, err := filepath.Glob(built.DBPath + ".building-*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
