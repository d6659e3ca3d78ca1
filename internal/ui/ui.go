// Package ui renders index progress, search results and index status for
// the terminal, styled with lipgloss when the output is an interactive
// terminal and plain otherwise.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is one step of an index build.
type Stage int

const (
	// StageCopy copies the source corpus to the index database.
	StageCopy Stage = iota
	// StageEmbedding chunks and embeds every verse.
	StageEmbedding
	// StageBM25 computes the term score table.
	StageBM25
	// StageComplete indicates the build finished.
	StageComplete
)

// ParseStage maps a pipeline stage name ("copy", "embeddings", "bm25") to a
// Stage. Unknown names map to StageComplete.
func ParseStage(name string) Stage {
	switch name {
	case "copy":
		return StageCopy
	case "embeddings":
		return StageEmbedding
	case "bm25":
		return StageBM25
	default:
		return StageComplete
	}
}

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageCopy:
		return "Copying"
	case StageEmbedding:
		return "Embedding"
	case StageBM25:
		return "Scoring"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage tag for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageCopy:
		return "COPY"
	case StageEmbedding:
		return "EMBED"
	case StageBM25:
		return "BM25"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent is one progress update.
type ProgressEvent struct {
	Stage   Stage
	Current int
	Total   int
	Message string
}

// EmbedderInfo describes the embedding backend of a build.
type EmbedderInfo struct {
	Provider   string
	Model      string
	Dimensions int
}

// CompletionStats summarises a finished build.
type CompletionStats struct {
	DBPath     string
	Documents  int
	Chunks     int
	TermScores int
	Duration   time.Duration
	// Skipped is set when an up-to-date index was kept.
	Skipped  bool
	Embedder EmbedderInfo
}

// Renderer displays index build progress.
type Renderer interface {
	// UpdateProgress updates the progress display.
	UpdateProgress(event ProgressEvent)

	// Warn reports a non-fatal problem.
	Warn(msg string)

	// Complete prints the build summary.
	Complete(stats CompletionStats)
}

// Config configures a renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// NewConfig creates a Config for output. NO_COLOR is honoured.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:  output,
		NoColor: DetectNoColor(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Plain reports whether cfg selects plain output: forced, not a terminal,
// or running under CI.
func (c Config) Plain() bool {
	return c.ForcePlain || !IsTTY(c.Output) || DetectCI()
}

// NewRenderer returns a styled in-place renderer for interactive terminals
// and a line-per-update plain renderer otherwise.
func NewRenderer(cfg Config) Renderer {
	if cfg.Plain() {
		return NewPlainRenderer(cfg)
	}
	return NewStyledRenderer(cfg)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
