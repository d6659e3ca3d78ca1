package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Aman-CERP/versio/internal/store"
)

// StatusInfo describes an index database.
type StatusInfo struct {
	DBPath    string    `json:"db_path"`
	SizeBytes int64     `json:"size_bytes"`
	BuiltAt   time.Time `json:"built_at"`
	RunID     string    `json:"run_id,omitempty"`

	Fingerprint string `json:"fingerprint,omitempty"`
	Verses      int    `json:"verses"`
	Chunks      int    `json:"chunks"`
	TermScores  int    `json:"term_scores"`

	ChunkMaxTokens      string `json:"chunk_max_tokens,omitempty"`
	ChunkOverlap        string `json:"chunk_overlap,omitempty"`
	BM25K1              string `json:"bm25_k1,omitempty"`
	BM25B               string `json:"bm25_b,omitempty"`
	EmbeddingModel      string `json:"embedding_model,omitempty"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
}

// Built reports whether the database has a recorded index build.
func (s StatusInfo) Built() bool {
	return !s.BuiltAt.IsZero()
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
	now    func() time.Time
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
		now:    time.Now,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.DBPath))

	if !info.Built() {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Warning.Render("not built"))
		_, _ = fmt.Fprintf(r.out, "  Verses:       %d\n", info.Verses)
		_, _ = fmt.Fprintln(r.out, "\n  Run 'versio index' to build it.")
		return nil
	}

	_, _ = fmt.Fprintf(r.out, "  Verses:       %d\n", info.Verses)
	_, _ = fmt.Fprintf(r.out, "  Chunks:       %d\n", info.Chunks)
	_, _ = fmt.Fprintf(r.out, "  Term scores:  %d\n", info.TermScores)
	_, _ = fmt.Fprintf(r.out, "  Size:         %s\n", FormatBytes(info.SizeBytes))
	_, _ = fmt.Fprintf(r.out, "  Built:        %s\n", r.formatTime(info.BuiltAt))
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Parameters:")
	_, _ = fmt.Fprintf(r.out, "    Chunk size: %s tokens, overlap %s\n", info.ChunkMaxTokens, info.ChunkOverlap)
	_, _ = fmt.Fprintf(r.out, "    BM25:       k1=%s b=%s\n", info.BM25K1, info.BM25B)
	_, _ = fmt.Fprintf(r.out, "    Embedder:   %s (%d dims)\n", info.EmbeddingModel, info.EmbeddingDimensions)

	if info.Fingerprint != "" {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Dim.Render("fingerprint "+shortHash(info.Fingerprint)+"  run "+info.RunID))
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// StatusFromState fills the build fields of info from index_state values.
// Malformed numbers and timestamps are left zero.
func StatusFromState(info StatusInfo, state map[string]string) StatusInfo {
	if t, err := time.Parse(time.RFC3339, state[store.StateKeyBuiltAt]); err == nil {
		info.BuiltAt = t
	}
	info.RunID = state[store.StateKeyRunID]
	info.Fingerprint = state[store.StateKeyFingerprint]
	info.ChunkMaxTokens = state[store.StateKeyChunkMaxTokens]
	info.ChunkOverlap = state[store.StateKeyChunkOverlap]
	info.BM25K1 = state[store.StateKeyBM25K1]
	info.BM25B = state[store.StateKeyBM25B]
	info.EmbeddingModel = state[store.StateKeyEmbeddingModel]
	info.EmbeddingDimensions, _ = strconv.Atoi(state[store.StateKeyEmbeddingDimensions])
	return info
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// formatTime formats a time relative to now for recent builds.
func (r *StatusRenderer) formatTime(t time.Time) string {
	diff := r.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
