package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/versio/internal/config"
	"github.com/Aman-CERP/versio/internal/embed"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/ui"
	"github.com/Aman-CERP/versio/pkg/searcher"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// searchOptions holds CLI flags for search. Zero values keep the
// configured setting.
type searchOptions struct {
	strategy   string
	format     string
	threshold  float64
	maxResults int
	exclude    []string
	noColor    bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed verses",
		Long: `Search the index database for verses matching a query.

Strategies:
  lexical   sum of precomputed BM25 term scores
  semantic  best cosine similarity between the query and a verse's chunks
  fusion    lexical results followed by semantic results (default)

Quoted "phrases" must appear in every result's verse text.`,
		Example: `  versio search "faith hope charity"
  versio search "the Lord is my shepherd" --strategy lexical -n 5
  versio search '"living water"' --exclude old_testament --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, root, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Search strategy: lexical, semantic, fusion (default: search.strategy)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Minimum cosine similarity, exclusive (default: search.threshold)")
	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", 0, "Maximum results per engine (default: search.max_results)")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil,
		"Volumes to exclude: book_of_mormon, doctrine_and_covenants, new_testament, old_testament")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, root *rootOptions, query string, opts searchOptions) error {
	start := time.Now()

	if opts.format != formatText && opts.format != formatJSON {
		return verrors.ValidationError(fmt.Sprintf("unknown output format %q", opts.format), nil).
			WithSuggestion("Use --format text or --format json")
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := applySearchFlags(cmd, cfg, opts); err != nil {
		return err
	}

	strategy, err := searcher.ParseStrategy(cfg.Search.Strategy)
	if err != nil {
		return err
	}

	st, err := openIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var embedder embed.Embedder
	if strategy.NeedsEmbedder() {
		embedder, err = embed.NewEmbedder(ctx, cfg.Embeddings)
		if err != nil {
			return err
		}
		defer func() { _ = embedder.Close() }()

		if err := checkEmbedderMatchesIndex(ctx, st, embedder); err != nil {
			return err
		}
	}

	s, err := searcher.New(strategy, searcher.DependenciesFromConfig(cfg, st, embedder))
	if err != nil {
		return err
	}

	results, err := s.Search(ctx, query, searcher.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	slog.Info("search_complete",
		slog.String("strategy", string(strategy)),
		slog.Int("query_len", len(query)),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	r := ui.NewResultRenderer(cmd.OutOrStdout(), opts.noColor || ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
	if opts.format == formatJSON {
		return r.RenderJSON(results)
	}
	return r.Render(query, results)
}

// applySearchFlags overlays explicitly set flags onto cfg and revalidates.
func applySearchFlags(cmd *cobra.Command, cfg *config.Config, opts searchOptions) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Search.Strategy = strings.ToLower(strings.TrimSpace(opts.strategy))
	}
	if flags.Changed("threshold") {
		cfg.Search.Threshold = opts.threshold
	}
	if flags.Changed("max-results") {
		cfg.Search.MaxResults = opts.maxResults
	}
	for _, name := range opts.exclude {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "book_of_mormon", "bom":
			cfg.Search.Volumes.BookOfMormon = false
		case "doctrine_and_covenants", "dc":
			cfg.Search.Volumes.DoctrineAndCovenants = false
		case "new_testament", "nt":
			cfg.Search.Volumes.NewTestament = false
		case "old_testament", "ot":
			cfg.Search.Volumes.OldTestament = false
		default:
			return verrors.ValidationError(fmt.Sprintf("unknown volume %q", name), nil).
				WithSuggestion("Use book_of_mormon, doctrine_and_covenants, new_testament or old_testament")
		}
	}

	// Strategy errors are reported by ParseStrategy with their own code.
	if _, err := searcher.ParseStrategy(cfg.Search.Strategy); err != nil {
		return err
	}
	return cfg.Validate()
}

// openIndex opens an existing index database. A missing file is an error
// rather than a new empty database.
func openIndex(ctx context.Context, cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.IndexDBPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, verrors.New(verrors.ErrCodeFileNotFound, "no index database at "+path, nil).
			WithSuggestion("Run 'versio index' first")
	}

	st, err := store.NewSQLiteStoreWithConfig(path, store.StoreConfig{CacheSizeMB: cfg.Performance.SQLiteCacheMB})
	if err != nil {
		return nil, err
	}
	if ok, err := st.HasCorpus(ctx); err != nil {
		_ = st.Close()
		return nil, err
	} else if !ok {
		_ = st.Close()
		return nil, verrors.New(verrors.ErrCodeInvalidInput, path+" has no verse tables", nil).
			WithSuggestion("Run 'versio index --source <corpus.db>'")
	}
	// The fingerprint is recorded last, so an index without one never
	// finished building.
	if fp, err := st.GetState(ctx, store.StateKeyFingerprint); err != nil {
		_ = st.Close()
		return nil, err
	} else if fp == "" {
		_ = st.Close()
		return nil, verrors.New(verrors.ErrCodeFileNotFound, "no complete index in "+path, nil).
			WithSuggestion("Run 'versio index' first")
	}
	return st, nil
}

// checkEmbedderMatchesIndex compares the embedder with the model and width
// the index was built with. Unrecorded values are not checked.
func checkEmbedderMatchesIndex(ctx context.Context, st store.StateStore, embedder embed.Embedder) error {
	state, err := st.States(ctx)
	if err != nil {
		return err
	}

	if dims, err := strconv.Atoi(state[store.StateKeyEmbeddingDimensions]); err == nil && dims != embedder.Dimensions() {
		return verrors.New(verrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("index was built with %d-dimensional embeddings, %s produces %d",
				dims, embedder.ModelName(), embedder.Dimensions()), nil).
			WithSuggestion("Use the embedding settings the index was built with, or rebuild with 'versio index --force'")
	}

	if model := state[store.StateKeyEmbeddingModel]; model != "" && model != embedder.ModelName() {
		return verrors.New(verrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("index was built with model %s, query embedder is %s", model, embedder.ModelName()), nil).
			WithSuggestion("Use the embedding settings the index was built with, or rebuild with 'versio index --force'")
	}
	return nil
}
