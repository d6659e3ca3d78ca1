package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainRenderer_UpdateProgress(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	// When: reporting the embedding stage twice with the same counts
	r.UpdateProgress(ProgressEvent{Stage: StageEmbedding, Current: 16, Total: 40})
	r.UpdateProgress(ProgressEvent{Stage: StageEmbedding, Current: 16, Total: 40})
	r.UpdateProgress(ProgressEvent{Stage: StageBM25, Message: "scoring terms"})

	// Then: one line per distinct event
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[EMBED] 16/40", "[BM25] scoring terms"}, lines)
}

func TestPlainRenderer_NoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	for _, stage := range []Stage{StageCopy, StageEmbedding, StageBM25} {
		r.UpdateProgress(ProgressEvent{Stage: stage, Current: 1, Total: 2, Message: "working"})
	}
	r.Warn("retrying")
	r.Complete(CompletionStats{DBPath: "x.db", Documents: 2})

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPlainRenderer_Complete(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.Complete(CompletionStats{
		DBPath:     "out/scriptures_chunk128_overlap16.db",
		Documents:  41995,
		Chunks:     52000,
		TermScores: 900000,
		Duration:   2*time.Minute + 340*time.Millisecond,
		Embedder:   EmbedderInfo{Provider: "static", Model: "static-384", Dimensions: 384},
	})

	out := buf.String()
	assert.Contains(t, out, "41995 verses, 52000 chunks, 900000 term scores in 2m0.3s")
	assert.Contains(t, out, "out/scriptures_chunk128_overlap16.db")
	assert.Contains(t, out, "static (static-384, 384 dims)")
}

func TestPlainRenderer_CompleteSkipped(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.Complete(CompletionStats{DBPath: "a.db", Skipped: true})

	assert.Equal(t, "Index is up to date: a.db\n", buf.String())
}
