package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/versio/internal/embed"
	"github.com/Aman-CERP/versio/internal/preflight"
	"github.com/Aman-CERP/versio/internal/ui"
	"github.com/Aman-CERP/versio/pkg/indexer"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	source    string
	outDir    string
	force     bool
	plain     bool
	skipCheck bool
}

func newIndexCmd(root *rootOptions) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the chunk embedding and BM25 indexes",
		Long: `Copy the corpus database to the index database and build both indexes.

The index database is named after the chunking parameters,
e.g. scriptures_chunk128_overlap16.db in the output directory. An index
already built from the same corpus with the same parameters is kept unless
--force is given.`,
		Example: `  versio index --source scriptures.db --out-dir ./data
  versio index --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd.Context(), cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "Corpus database (default: paths.corpus_db)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Directory for the index database (default: paths.out_dir)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Rebuild even if the index is up to date")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain line-per-update progress output")
	cmd.Flags().BoolVar(&opts.skipCheck, "skip-check", false, "Skip preflight checks")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts indexOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Paths.OutDir = opts.outDir
		cfg.Paths.IndexDB = ""
	}

	embedder, err := embed.NewEmbedder(ctx, cfg.Embeddings)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(), ui.WithForcePlain(opts.plain)))

	if !opts.skipCheck {
		source := opts.source
		if source == "" {
			source = cfg.Paths.CorpusDB
		}
		checker := preflight.New(preflight.WithOutput(cmd.ErrOrStderr()), preflight.WithVerbose(root.debug))
		results := checker.RunAll(ctx, preflight.Target{
			Source:   source,
			OutDir:   filepath.Dir(cfg.IndexDBPath()),
			Embedder: embedder,
		})
		if checker.HasCriticalFailures(results) {
			checker.PrintResults(results)
			return checker.Err(results)
		}
		for _, r := range results {
			if r.Status == preflight.StatusWarn {
				renderer.Warn(r.Name + ": " + r.Message)
			}
		}
	}

	pipeline, err := indexer.NewPipeline(cfg, embedder)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, indexer.PipelineOptions{
		Source: opts.source,
		Force:  opts.force,
		Progress: func(stage string, done, total int) {
			renderer.UpdateProgress(ui.ProgressEvent{
				Stage:   ui.ParseStage(stage),
				Current: done,
				Total:   total,
			})
		},
	})
	if err != nil {
		slog.Warn("index_aborted", slog.String("run_id", report.RunID), slog.String("db", report.DBPath))
		return err
	}

	info := embed.GetInfo(ctx, embedder)
	renderer.Complete(ui.CompletionStats{
		DBPath:     report.DBPath,
		Documents:  report.BM25.Documents,
		Chunks:     report.Embeddings.Rows,
		TermScores: report.BM25.Rows,
		Duration:   report.Duration,
		Skipped:    report.Skipped,
		Embedder: ui.EmbedderInfo{
			Provider:   string(info.Provider),
			Model:      info.Model,
			Dimensions: info.Dimensions,
		},
	})
	return nil
}
