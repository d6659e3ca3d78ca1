package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/store/storetest"
)

// isolate points HOME and XDG_CONFIG_HOME at temp dirs so tests never read
// or write the real user config and log files. Returns a config dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	return t.TempDir()
}

// writeProjectConfig writes .versio.yaml into dir.
func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".versio.yaml"), []byte(content), 0o644))
}

// writeProjectConfigAppend appends content to dir/.versio.yaml.
func writeProjectConfigAppend(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, ".versio.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, content...), 0o644))
}

// corpusProject isolates the environment and writes a project config
// pointing at a seeded two-verse corpus. Returns the config dir and the
// output dir.
func corpusProject(t *testing.T, extra string) (configDir, outDir string) {
	t.Helper()
	configDir = isolate(t)
	outDir = t.TempDir()
	corpus := storetest.NewFileStore(t, "scriptures.db", storetest.LoveAndSun()...)
	writeProjectConfig(t, configDir, fmt.Sprintf("paths:\n  corpus_db: %q\n  out_dir: %q\n%s", corpus, outDir, extra))
	return configDir, outDir
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}
