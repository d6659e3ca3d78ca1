package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Aman-CERP/versio/internal/embed"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/ui"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{StatusPass: "PASS", StatusWarn: "WARN", StatusFail: "FAIL"}

func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// CheckResult is one line of the preflight report. Details is only printed
// in verbose mode.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports a failed required check. Any critical result stops
// the index build.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// requiredCheck starts a result for a check that blocks the build on failure.
func requiredCheck(name, details string) CheckResult {
	return CheckResult{Name: name, Details: details, Required: true}
}

func (r CheckResult) pass(msg string) CheckResult {
	r.Status, r.Message = StatusPass, msg
	return r
}

func (r CheckResult) fail(format string, args ...any) CheckResult {
	r.Status, r.Message = StatusFail, fmt.Sprintf(format, args...)
	return r
}

// Target is the index build being checked.
type Target struct {
	Source   string
	OutDir   string
	Embedder embed.Embedder // optional
}

// Checker runs the checks and prints their report.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints each check's details under its status line.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) { c.verbose = verbose }
}

// WithOutput redirects PrintResults. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) { c.output = w }
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll checks the source, the output directory, then free space sized
// from the source, then the embedder. Free space is skipped when the
// source is unusable.
func (c *Checker) RunAll(ctx context.Context, target Target) []CheckResult {
	src, size := c.CheckSource(target.Source)
	results := []CheckResult{src, c.CheckWritePermissions(target.OutDir)}

	if src.Status == StatusPass {
		results = append(results, c.CheckDiskSpace(target.OutDir, RequiredBytes(size)))
	}
	if target.Embedder != nil {
		results = append(results, c.CheckEmbedder(ctx, target.Embedder))
	}
	return results
}

// HasCriticalFailures reports whether any result IsCritical.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	return c.SummaryStatus(results) == "failed"
}

// SummaryStatus folds results into "ready", "ready_with_warnings" or
// "failed". An optional failure counts as a warning.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	summary := "ready"
	for _, r := range results {
		switch {
		case r.IsCritical():
			return "failed"
		case r.Status != StatusPass:
			summary = "ready_with_warnings"
		}
	}
	return summary
}

// Err turns the critical failures into one validation error, or returns
// nil when there are none.
func (c *Checker) Err(results []CheckResult) error {
	var msgs []string
	for _, r := range results {
		if r.IsCritical() {
			msgs = append(msgs, r.Name+": "+r.Message)
		}
	}
	if msgs == nil {
		return nil
	}
	return verrors.ValidationError("preflight failed: "+strings.Join(msgs, "; "), nil).
		WithSuggestion("Fix the reported problems, or rerun with --skip-check")
}

// PrintResults writes the report.
func (c *Checker) PrintResults(results []CheckResult) {
	var b strings.Builder
	b.WriteString("versio preflight\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			fmt.Fprintf(&b, "      %s\n", r.Details)
		}
	}
	fmt.Fprintf(&b, "\nStatus: %s\n", strings.ToUpper(c.SummaryStatus(results)))
	_, _ = io.WriteString(c.output, b.String())
}

// CheckSource verifies the corpus is a readable, non-empty regular file
// and returns its size.
func (c *Checker) CheckSource(path string) (CheckResult, int64) {
	r := requiredCheck("source", path)

	info, err := os.Stat(path)
	switch {
	case err != nil:
		return r.fail("cannot stat %s: %v", path, err), 0
	case info.IsDir():
		return r.fail("%s is a directory", path), 0
	case info.Size() == 0:
		return r.fail("%s is empty", path), 0
	}

	f, err := os.Open(path)
	if err != nil {
		return r.fail("cannot read %s: %v", path, err), 0
	}
	_ = f.Close()

	return r.pass(ui.FormatBytes(info.Size())), info.Size()
}

// CheckWritePermissions creates dir if needed and writes a probe file in it.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	r := requiredCheck("write_permissions", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return r.fail("cannot create %s: %v", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".versio-preflight-*")
	if err != nil {
		return r.fail("permission denied: %v", err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return r.pass("OK")
}

// CheckEmbedder probes e. An unavailable embedder is critical since every
// chunk needs a vector.
func (c *Checker) CheckEmbedder(ctx context.Context, e embed.Embedder) CheckResult {
	r := requiredCheck("embedder", fmt.Sprintf("%s, %d dims", e.ModelName(), e.Dimensions()))
	if !e.Available(ctx) {
		return r.fail("%s is not available", e.ModelName())
	}
	return r.pass(e.ModelName())
}
