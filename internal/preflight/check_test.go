package preflight

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/embed/embedtest"
	verrors "github.com/Aman-CERP/versio/internal/errors"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scriptures.db")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type unavailableEmbedder struct {
	embedtest.MockEmbedder
}

func (*unavailableEmbedder) Available(context.Context) bool { return false }

func TestCheckStatus_String(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "WARN", StatusWarn.String())
	assert.Equal(t, "FAIL", StatusFail.String())
	assert.Equal(t, "UNKNOWN", CheckStatus(42).String())
}

func TestRunAll_HealthyTarget(t *testing.T) {
	// Given: a readable source, a missing output directory and an embedder
	out := filepath.Join(t.TempDir(), "out", "nested")
	checker := New()

	// When: running every check
	results := checker.RunAll(context.Background(), Target{
		Source:   writeSource(t, "scriptures"),
		OutDir:   out,
		Embedder: &embedtest.MockEmbedder{},
	})

	// Then: all four pass in order and the directory now exists
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
		assert.Equal(t, StatusPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	assert.Equal(t, []string{"source", "write_permissions", "disk_space", "embedder"}, names)
	assert.DirExists(t, out)
	assert.Equal(t, "ready", checker.SummaryStatus(results))
	assert.NoError(t, checker.Err(results))
}

func TestRunAll_MissingSource(t *testing.T) {
	checker := New()

	results := checker.RunAll(context.Background(), Target{
		Source: filepath.Join(t.TempDir(), "missing.db"),
		OutDir: t.TempDir(),
	})

	// disk_space needs the source size, so only two checks run
	require.Len(t, results, 2)
	assert.True(t, results[0].IsCritical())
	assert.True(t, checker.HasCriticalFailures(results))
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name   string
		path   string
		status CheckStatus
		size   int64
	}{
		{"readable", writeSource(t, "0123456789"), StatusPass, 10},
		{"missing", filepath.Join(dir, "missing.db"), StatusFail, 0},
		{"directory", dir, StatusFail, 0},
		{"empty", empty, StatusFail, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size := New().CheckSource(tt.path)
			assert.Equal(t, tt.status, r.Status, r.Message)
			assert.Equal(t, tt.size, size)
			assert.True(t, r.Required)
		})
	}
}

func TestCheckWritePermissions(t *testing.T) {
	t.Run("writable", func(t *testing.T) {
		dir := t.TempDir()
		r := New().CheckWritePermissions(dir)
		assert.Equal(t, StatusPass, r.Status)

		// the probe file is removed
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("read only", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		dir := filepath.Join(t.TempDir(), "ro")
		require.NoError(t, os.Mkdir(dir, 0o555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

		r := New().CheckWritePermissions(dir)
		assert.Equal(t, StatusFail, r.Status)
		assert.Contains(t, r.Message, "permission denied")
	})
}

func TestCheckDiskSpace(t *testing.T) {
	checker := New()

	assert.Equal(t, StatusPass, checker.CheckDiskSpace(t.TempDir(), 1).Status)

	r := checker.CheckDiskSpace(t.TempDir(), math.MaxUint64)
	assert.Equal(t, StatusFail, r.Status)
	assert.Contains(t, r.Message, "free (need")

	r = checker.CheckDiskSpace(filepath.Join(t.TempDir(), "absent"), 1)
	assert.Equal(t, StatusFail, r.Status)
}

func TestRequiredBytes(t *testing.T) {
	assert.Equal(t, uint64(MinDiskSpaceBytes), RequiredBytes(-1))
	assert.Equal(t, uint64(MinDiskSpaceBytes), RequiredBytes(1024))
	assert.Equal(t, uint64(600<<20), RequiredBytes(200<<20))
}

func TestCheckEmbedder(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusPass, New().CheckEmbedder(ctx, &embedtest.MockEmbedder{}).Status)
	assert.True(t, New().CheckEmbedder(ctx, &unavailableEmbedder{}).IsCritical())
}

func TestSummaryStatus(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    string
	}{
		{"empty", nil, "ready"},
		{"all pass", []CheckResult{{Status: StatusPass, Required: true}}, "ready"},
		{"warning", []CheckResult{{Status: StatusPass}, {Status: StatusWarn, Required: true}}, "ready_with_warnings"},
		{"optional failure", []CheckResult{{Status: StatusFail}}, "ready_with_warnings"},
		{"required failure", []CheckResult{{Status: StatusWarn}, {Status: StatusFail, Required: true}}, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New()
			assert.Equal(t, tt.want, checker.SummaryStatus(tt.results))
			assert.Equal(t, tt.want == "failed", checker.HasCriticalFailures(tt.results))
		})
	}
}

func TestErr_NamesCriticalFailuresOnly(t *testing.T) {
	err := New().Err([]CheckResult{
		{Name: "source", Status: StatusFail, Message: "missing", Required: true},
		{Name: "embedder", Status: StatusFail, Message: "down"},
	})

	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeInvalidInput, verrors.GetCode(err))
	assert.Contains(t, err.Error(), "source: missing")
	assert.NotContains(t, err.Error(), "embedder")
	assert.Contains(t, verrors.GetSuggestion(err), "--skip-check")
}

func TestPrintResults(t *testing.T) {
	results := []CheckResult{
		{Name: "disk_space", Status: StatusPass, Message: "50 GB free", Details: "/data"},
		{Name: "source", Status: StatusFail, Message: "missing", Required: true},
	}

	t.Run("verbose", func(t *testing.T) {
		buf := &bytes.Buffer{}
		New(WithOutput(buf), WithVerbose(true)).PrintResults(results)

		assert.Equal(t, "versio preflight\n\n"+
			"[PASS] disk_space: 50 GB free\n"+
			"      /data\n"+
			"[FAIL] source: missing\n"+
			"\nStatus: FAILED\n", buf.String())
	})

	t.Run("quiet hides details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		New(WithOutput(buf)).PrintResults(results)
		assert.NotContains(t, buf.String(), "/data")
	})
}
