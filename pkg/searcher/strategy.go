package searcher

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/versio/internal/config"
	"github.com/Aman-CERP/versio/internal/embed"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
)

// Strategy selects the query engine.
type Strategy string

// Supported strategies.
const (
	StrategyLexical  Strategy = config.StrategyLexical
	StrategySemantic Strategy = config.StrategySemantic
	StrategyFusion   Strategy = config.StrategyFusion
)

// Strategies lists the supported strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyLexical, StrategySemantic, StrategyFusion}
}

// ParseStrategy converts a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyLexical, StrategySemantic, StrategyFusion:
		return st, nil
	default:
		return "", verrors.New(verrors.ErrCodeUnknownStrategy,
			fmt.Sprintf("unknown search strategy %q", s), nil).
			WithSuggestion("Use one of: lexical, semantic, fusion")
	}
}

// NeedsEmbedder reports whether the strategy embeds the query.
func (s Strategy) NeedsEmbedder() bool {
	return s == StrategySemantic || s == StrategyFusion
}

// Dependencies are the collaborators New wires into a searcher.
type Dependencies struct {
	Store store.Store

	// Embedder is required for semantic and fusion.
	Embedder embed.Embedder

	// DisableLexicalVolumeFilter ignores Options.Volumes for lexical results.
	DisableLexicalVolumeFilter bool

	// DisablePhraseFilter treats quoted phrases as plain terms in both engines.
	DisablePhraseFilter bool
}

// DependenciesFromConfig fills the filter toggles from cfg.Search.
func DependenciesFromConfig(cfg *config.Config, st store.Store, embedder embed.Embedder) Dependencies {
	return Dependencies{
		Store:                      st,
		Embedder:                   embedder,
		DisableLexicalVolumeFilter: !cfg.Search.LexicalVolumeFilter,
		DisablePhraseFilter:        !cfg.Search.PhraseFilter,
	}
}

// New builds the searcher for strategy.
func New(strategy Strategy, deps Dependencies) (Searcher, error) {
	if deps.Store == nil {
		return nil, ErrNilStore
	}

	newLexical := func() (*LexicalSearcher, error) {
		return NewLexicalSearcher(
			WithTermStore(deps.Store),
			WithLexicalVolumeFilter(!deps.DisableLexicalVolumeFilter),
			WithLexicalPhraseFilter(!deps.DisablePhraseFilter),
		)
	}
	newSemantic := func() (*SemanticSearcher, error) {
		return NewSemanticSearcher(
			WithChunkStore(deps.Store),
			WithEmbedder(deps.Embedder),
			WithSemanticPhraseFilter(!deps.DisablePhraseFilter),
		)
	}

	switch strategy {
	case StrategyLexical:
		return newLexical()
	case StrategySemantic:
		return newSemantic()
	case StrategyFusion:
		lexical, err := newLexical()
		if err != nil {
			return nil, err
		}
		semantic, err := newSemantic()
		if err != nil {
			return nil, err
		}
		return NewFusionSearcher(WithLexicalSearcher(lexical), WithSemanticSearcher(semantic))
	default:
		return nil, verrors.New(verrors.ErrCodeUnknownStrategy,
			fmt.Sprintf("unknown search strategy %q", strategy), nil)
	}
}

// OptionsFromConfig returns the search options configured in cfg.Search.
func OptionsFromConfig(cfg *config.Config) Options {
	v := cfg.Search.Volumes
	return Options{
		MaxResults: cfg.Search.MaxResults,
		Threshold:  cfg.Search.Threshold,
		Volumes: store.VolumeFilter{
			ExcludeBookOfMormon:         !v.BookOfMormon,
			ExcludeDoctrineAndCovenants: !v.DoctrineAndCovenants,
			ExcludeNewTestament:         !v.NewTestament,
			ExcludeOldTestament:         !v.OldTestament,
		},
	}
}
