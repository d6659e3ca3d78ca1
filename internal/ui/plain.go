package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer prints one line per progress update (for CI and pipes).
type PlainRenderer struct {
	mu   sync.Mutex
	out  io.Writer
	last ProgressEvent
}

var _ Renderer = (*PlainRenderer)(nil)

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output, last: ProgressEvent{Stage: -1}}
}

// UpdateProgress implements Renderer. Repeated identical events are
// printed once.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event == r.last {
		return
	}
	r.last = event

	switch {
	case event.Total > 0 && event.Message != "":
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, event.Message)
	case event.Total > 0:
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d\n", event.Stage.Icon(), event.Current, event.Total)
	case event.Message != "":
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), event.Message)
	}
}

// Warn implements Renderer.
func (r *PlainRenderer) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "WARN: %s\n", msg)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats.Skipped {
		_, _ = fmt.Fprintf(r.out, "Index is up to date: %s\n", stats.DBPath)
		return
	}

	_, _ = fmt.Fprintf(r.out, "Complete: %d verses, %d chunks, %d term scores in %s\n",
		stats.Documents, stats.Chunks, stats.TermScores, stats.Duration.Round(100*time.Millisecond))
	_, _ = fmt.Fprintf(r.out, "Index: %s\n", stats.DBPath)

	if stats.Embedder.Model != "" {
		_, _ = fmt.Fprintf(r.out, "Embedder: %s (%s, %d dims)\n",
			stats.Embedder.Provider, stats.Embedder.Model, stats.Embedder.Dimensions)
	}
}
