//go:build ignore

// Package main generates a synthetic scripture corpus database for
// benchmarking index builds and searches.
// Usage: go run scripts/generate-test-corpus.go -verses 40000 -output testdata/bench/scriptures.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/versio/internal/store"
	"github.com/Aman-CERP/versio/internal/store/storetest"
)

var (
	numVerses = flag.Int("verses", 40000, "Number of verses to generate")
	output    = flag.String("output", "testdata/bench/scriptures.db", "Output database")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
	batch     = flag.Int("batch", 1000, "Verses per insert transaction")
)

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return err
	}
	if err := os.Remove(*output); err != nil && !os.IsNotExist(err) {
		return err
	}

	s, err := store.NewSQLiteStore(*output)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.InitCorpusSchema(ctx); err != nil {
		return err
	}

	verses := storetest.Synthetic(*numVerses, *seed)
	for lo := 0; lo < len(verses); lo += *batch {
		hi := min(lo+*batch, len(verses))
		if err := s.InsertVerses(ctx, verses[lo:hi]); err != nil {
			return fmt.Errorf("insert verses %d-%d: %w", lo+1, hi, err)
		}
	}
	if err := s.Checkpoint(); err != nil {
		return err
	}

	fmt.Printf("Generated %d verses in %s (seed %d)\n", len(verses), *output, *seed)
	return nil
}
