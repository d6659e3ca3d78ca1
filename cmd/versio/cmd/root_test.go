package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/pkg/version"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// When/Then: every subcommand resolves
	for _, name := range []string{"index", "search", "status", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"debug", "config-dir", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	// Given: an isolated environment
	isolate(t)

	// When: running with --version
	out, err := execute(t, "--version")

	// Then: the version template is printed
	require.NoError(t, err)
	assert.Equal(t, "versio version "+version.Version+"\n", out)
}

func TestRootCmd_LoadsDotEnv(t *testing.T) {
	// Given: a .env selecting the lexical strategy
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VERSIO_STRATEGY=lexical\n"), 0o644))
	t.Setenv("VERSIO_STRATEGY", "")
	require.NoError(t, os.Unsetenv("VERSIO_STRATEGY"))

	// When: showing the config
	out, err := execute(t, "config", "show", "--json", "--config-dir", dir)

	// Then: the value from .env is applied
	require.NoError(t, err)
	assert.Contains(t, out, `"strategy": "lexical"`)
}

func TestRootCmd_ProfilingWritesFiles(t *testing.T) {
	// Given: profile paths
	isolate(t)
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	heap := filepath.Join(dir, "heap.prof")

	// When: running a command with profiling enabled
	_, err := execute(t, "version", "--profile-cpu", cpu, "--profile-mem", heap)

	// Then: both profiles exist
	require.NoError(t, err)
	assert.FileExists(t, cpu)
	assert.FileExists(t, heap)
}

func TestRootCmd_FailedCommandIsLogged(t *testing.T) {
	// Given: a log file set through the environment
	dir := isolate(t)
	logPath := filepath.Join(t.TempDir(), "versio.log")
	t.Setenv("VERSIO_LOG_FILE", logPath)

	// When: a command fails validation
	_, err := execute(t, "search", "love", "--format", "xml", "--config-dir", dir)
	require.Error(t, err)

	// Then: the failure was written with its error code before the file closed
	data, readErr := os.ReadFile(logPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"msg":"command_failed"`)
	assert.Contains(t, string(data), `"command":"versio search"`)
	assert.Contains(t, string(data), `"error_code":"ERR_401_INVALID_INPUT"`)
}
