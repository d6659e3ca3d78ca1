package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/versio/pkg/searcher"
)

// ResultRenderer prints search results.
type ResultRenderer struct {
	out    io.Writer
	styles Styles
}

// NewResultRenderer creates a result renderer.
func NewResultRenderer(out io.Writer, noColor bool) *ResultRenderer {
	return &ResultRenderer{out: out, styles: GetStyles(noColor)}
}

// Render prints results as a numbered list: reference, volume, score and
// source, then the verse text and any matching chunks.
func (r *ResultRenderer) Render(query string, results []searcher.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintf(r.out, "No results found for %q\n", query)
		return err
	}

	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(
		fmt.Sprintf("Found %d results for %q", len(results), query)))

	width := len(fmt.Sprint(len(results)))
	indent := strings.Repeat(" ", width+2)
	for i, res := range results {
		_, _ = fmt.Fprintf(r.out, "%*d. %s %s  %s %s\n",
			width, i+1,
			r.styles.Title.Render(reference(res)),
			r.styles.Label.Render("("+res.VolumeTitle+")"),
			r.styles.Score.Render(fmt.Sprintf("%.3f", res.Score)),
			r.styles.Source.Render(res.Source))
		_, _ = fmt.Fprintf(r.out, "%s%s\n", indent, res.ScriptureText)
		for _, c := range res.Chunks {
			if c == res.ScriptureText {
				continue
			}
			_, _ = fmt.Fprintf(r.out, "%s%s\n", indent, r.styles.Chunk.Render("› "+c))
		}
		_, _ = fmt.Fprintln(r.out)
	}
	return nil
}

// RenderJSON writes results as an indented JSON array. An empty result is
// written as [].
func (r *ResultRenderer) RenderJSON(results []searcher.Result) error {
	if results == nil {
		results = []searcher.Result{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// reference returns the display reference of a verse, falling back to the
// book title and numbers when the corpus has no verse title.
func reference(res searcher.Result) string {
	if res.VerseTitle != "" {
		return res.VerseTitle
	}
	return fmt.Sprintf("%s %d:%d", res.BookTitle, res.ChapterNumber, res.VerseNumber)
}
