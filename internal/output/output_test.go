package output

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

func TestWriter_Status(t *testing.T) {
	tests := []struct {
		name  string
		print func(w *Writer)
		want  string
	}{
		{"icon", func(w *Writer) { w.Status("*", "Copying corpus") }, "* Copying corpus\n"},
		{"no icon", func(w *Writer) { w.Status("", "details") }, "  details\n"},
		{"success", func(w *Writer) { w.Success("Wrote config.yaml") }, "✓ Wrote config.yaml\n"},
		{"warning", func(w *Writer) { w.Warning("a.yaml exists") }, "! a.yaml exists\n"},
		{"error", func(w *Writer) { w.Error("failed: io") }, "✗ failed: io\n"},
		{"key value", func(w *Writer) { w.KeyValue("Strategy", "fusion") }, "  Strategy:      fusion\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a colorless writer
			buf := &bytes.Buffer{}
			w := NewWithColor(buf, false)

			// When: printing
			tt.print(w)

			// Then: exact plain output
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Err_StructuredErrorShowsHint(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, false)

	err := verrors.New(verrors.ErrCodeQueryEmpty, "query is empty", nil).
		WithSuggestion(`Provide search text`)
	w.Err(fmt.Errorf("search: %w", err))

	out := buf.String()
	assert.Contains(t, out, "✗ search: [ERR_404_QUERY_EMPTY] query is empty")
	assert.Contains(t, out, "Hint: Provide search text")
}

func TestWriter_Err_PlainError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, false)

	w.Err(errors.New("boom"))
	w.Err(nil)

	assert.Equal(t, "✗ boom\n", buf.String())
}

func TestNew_BufferIsColorless(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("done")

	assert.NotContains(t, buf.String(), "\x1b[")
}
