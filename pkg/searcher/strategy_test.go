package searcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/config"
	"github.com/Aman-CERP/versio/internal/embed/embedtest"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/store/storetest"
)

func TestParseStrategy(t *testing.T) {
	for _, in := range []string{"lexical", "Semantic", " FUSION "} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Contains(t, Strategies(), got)
	}

	_, err := ParseStrategy("hybrid")
	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeUnknownStrategy, verrors.GetCode(err))
}

func TestStrategy_NeedsEmbedder(t *testing.T) {
	assert.False(t, StrategyLexical.NeedsEmbedder())
	assert.True(t, StrategySemantic.NeedsEmbedder())
	assert.True(t, StrategyFusion.NeedsEmbedder())
}

func TestNew(t *testing.T) {
	s := storetest.NewStore(t)
	em := &embedtest.MockEmbedder{}

	tests := []struct {
		strategy Strategy
		deps     Dependencies
		wantType Searcher
		wantErr  error
	}{
		{StrategyLexical, Dependencies{Store: s}, &LexicalSearcher{}, nil},
		{StrategySemantic, Dependencies{Store: s, Embedder: em}, &SemanticSearcher{}, nil},
		{StrategyFusion, Dependencies{Store: s, Embedder: em}, &FusionSearcher{}, nil},
		{StrategySemantic, Dependencies{Store: s}, nil, ErrNilEmbedder},
		{StrategyFusion, Dependencies{Store: s}, nil, ErrNilEmbedder},
		{StrategyLexical, Dependencies{}, nil, ErrNilStore},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			got, err := New(tt.strategy, tt.deps)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, got)
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	s := storetest.NewStore(t)

	_, err := New(Strategy("vector"), Dependencies{Store: s})

	assert.Equal(t, verrors.ErrCodeUnknownStrategy, verrors.GetCode(err))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.MaxResults = 12
	cfg.Search.Threshold = 0.4
	cfg.Search.Volumes.DoctrineAndCovenants = false

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 12, opts.MaxResults)
	assert.InDelta(t, 0.4, opts.Threshold, 1e-12)
	assert.Equal(t, store.VolumeFilter{ExcludeDoctrineAndCovenants: true}, opts.Volumes)
}

func TestDependenciesFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.LexicalVolumeFilter = false
	cfg.Search.PhraseFilter = true

	deps := DependenciesFromConfig(cfg, nil, nil)

	assert.True(t, deps.DisableLexicalVolumeFilter)
	assert.False(t, deps.DisablePhraseFilter)
}

func TestNew_ZeroDependenciesEnableFilters(t *testing.T) {
	// Given: a store holding verses in two volumes
	s := newBM25Store(t, storetest.LoveAndSun()...)

	// When: building a lexical searcher with only a store
	got, err := New(StrategyLexical, Dependencies{Store: s})
	require.NoError(t, err)

	// Then: both filters are on, like NewLexicalSearcher's defaults
	l := got.(*LexicalSearcher)
	assert.True(t, l.volumeFilter)
	assert.True(t, l.phraseFilter)

	opts := DefaultOptions()
	opts.Volumes.ExcludeNewTestament = true
	results, err := l.Search(context.Background(), `is "sun is"`, opts)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, verseIDs(results))
}

func TestNew_DisabledFilters(t *testing.T) {
	s := newBM25Store(t, storetest.LoveAndSun()...)

	got, err := New(StrategyLexical, Dependencies{Store: s, DisableLexicalVolumeFilter: true, DisablePhraseFilter: true})
	require.NoError(t, err)

	l := got.(*LexicalSearcher)
	assert.False(t, l.volumeFilter)
	assert.False(t, l.phraseFilter)
}
