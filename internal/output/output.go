// Package output prints one-line CLI status messages: successes, warnings
// and structured errors with their hints.
package output

import (
	"fmt"
	"io"

	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/ui"
)

// Writer prints status lines to a command's output. Write errors are
// ignored.
type Writer struct {
	out    io.Writer
	styles ui.Styles
}

// New colours output only for a terminal with NO_COLOR unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, ui.IsTTY(out) && !ui.DetectNoColor())
}

// NewWithColor forces colours on or off.
func NewWithColor(out io.Writer, color bool) *Writer {
	return &Writer{out: out, styles: ui.GetStyles(!color)}
}

// Status prints "icon msg", or an indented continuation line when icon is
// empty.
func (w *Writer) Status(icon, msg string) {
	prefix := "  "
	if icon != "" {
		prefix = icon + " "
	}
	_, _ = io.WriteString(w.out, prefix+msg+"\n")
}

func (w *Writer) Success(msg string) { w.Status(w.styles.Success.Render("✓"), msg) }

func (w *Writer) Warning(msg string) { w.Status(w.styles.Warning.Render("!"), msg) }

func (w *Writer) Error(msg string) { w.Status(w.styles.Error.Render("✗"), msg) }

// Err prints err followed by the hint of a structured error. A nil err
// prints nothing.
func (w *Writer) Err(err error) {
	if err == nil {
		return
	}
	w.Error(err.Error())
	if hint := verrors.GetSuggestion(err); hint != "" {
		w.Status("", w.styles.Label.Render("Hint: ")+hint)
	}
}

// KeyValue prints an aligned "label: value" line.
func (w *Writer) KeyValue(label, value string) {
	w.Status("", fmt.Sprintf("%s %s", w.styles.Label.Render(fmt.Sprintf("%-14s", label+":")), value))
}
