package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           string
	}{
		{"empty", 0, 10, "░░░░░░░░░░"},
		{"half", 5, 10, "█████░░░░░"},
		{"full", 10, 10, "██████████"},
		{"overflow", 20, 10, "██████████"},
		{"no total", 3, 0, "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderProgressBar(tt.current, tt.total, 10))
		})
	}
}

func TestStyledRenderer_RedrawsInPlace(t *testing.T) {
	// Given: a styled renderer without colors
	buf := &bytes.Buffer{}
	r := NewStyledRenderer(NewConfig(buf, WithNoColor(true)))

	// When: two updates arrive
	r.UpdateProgress(ProgressEvent{Stage: StageEmbedding, Current: 16, Total: 40})
	r.UpdateProgress(ProgressEvent{Stage: StageEmbedding, Current: 32, Total: 40})

	// Then: both are drawn on the same line
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\r"))
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "32/40")
	assert.Contains(t, out, "Embedding")
}

func TestStyledRenderer_CompleteEndsProgressLine(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStyledRenderer(NewConfig(buf, WithNoColor(true)))

	r.UpdateProgress(ProgressEvent{Stage: StageBM25, Current: 1, Total: 1})
	r.Complete(CompletionStats{DBPath: "idx.db", Documents: 2, Chunks: 3, TermScores: 9,
		Embedder: EmbedderInfo{Provider: "ollama", Model: "nomic-embed-text", Dimensions: 768}})

	out := buf.String()
	assert.Contains(t, out, "1/1\n")
	assert.Contains(t, out, "Index complete")
	assert.Contains(t, out, "idx.db")
	assert.Contains(t, out, "nomic-embed-text")
}

func TestStyledRenderer_Warn(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStyledRenderer(NewConfig(buf, WithNoColor(true)))

	r.Warn("checkpoint failed")

	assert.Equal(t, "! checkpoint failed\n", buf.String())
}
