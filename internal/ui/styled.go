package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const progressBarWidth = 30

// StyledRenderer redraws a single colored progress line in place and
// prints a bordered summary when the build completes.
type StyledRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	tracker *ProgressTracker
	drawn   bool
}

var _ Renderer = (*StyledRenderer)(nil)

// NewStyledRenderer creates a styled renderer.
func NewStyledRenderer(cfg Config) *StyledRenderer {
	return &StyledRenderer{
		out:     cfg.Output,
		styles:  GetStyles(cfg.NoColor),
		tracker: NewProgressTracker(),
	}
}

// UpdateProgress implements Renderer.
func (r *StyledRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.Update(event)
	stats := r.tracker.Stats()

	line := fmt.Sprintf("%s %s %s",
		r.styles.Stage.Render(fmt.Sprintf("%-9s", stats.Stage.String())),
		r.styles.Progress.Render(RenderProgressBar(stats.Current, stats.Total, progressBarWidth)),
		r.styles.Label.Render(fmt.Sprintf("%d/%d", stats.Current, stats.Total)))
	if stats.ETA > 0 {
		line += r.styles.Dim.Render(fmt.Sprintf("  eta %s", stats.ETA.Round(time.Second)))
	}
	if event.Message != "" {
		line += "  " + event.Message
	}

	// \x1b[2K clears the previous, possibly longer, line.
	_, _ = fmt.Fprintf(r.out, "\r\x1b[2K%s", line)
	r.drawn = true
}

// Warn implements Renderer.
func (r *StyledRenderer) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endLine()
	_, _ = fmt.Fprintln(r.out, r.styles.Warning.Render("! "+msg))
}

// Complete implements Renderer.
func (r *StyledRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endLine()

	if stats.Skipped {
		_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ Index is up to date"))
		_, _ = fmt.Fprintln(r.out, r.styles.Label.Render("  "+stats.DBPath))
		return
	}

	rows := []string{
		r.styles.Header.Render("✓ Index complete"),
		"",
		r.row("Verses", fmt.Sprintf("%d", stats.Documents)),
		r.row("Chunks", fmt.Sprintf("%d", stats.Chunks)),
		r.row("Term scores", fmt.Sprintf("%d", stats.TermScores)),
		r.row("Duration", stats.Duration.Round(100*time.Millisecond).String()),
	}
	if stats.Embedder.Model != "" {
		rows = append(rows, r.row("Embedder",
			fmt.Sprintf("%s (%s, %d dims)", stats.Embedder.Provider, stats.Embedder.Model, stats.Embedder.Dimensions)))
	}
	rows = append(rows, r.row("Database", stats.DBPath))

	_, _ = fmt.Fprintln(r.out, r.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (r *StyledRenderer) row(label, value string) string {
	return r.styles.Label.Render(fmt.Sprintf("%-12s", label)) + value
}

// endLine must be called with the lock held.
func (r *StyledRenderer) endLine() {
	if r.drawn {
		_, _ = fmt.Fprintln(r.out)
		r.drawn = false
	}
}

// RenderProgressBar draws a width-cell bar for current/total.
func RenderProgressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	filled := int(float64(current) / float64(total) * float64(width))
	filled = max(0, min(filled, width))

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
