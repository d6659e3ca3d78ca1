package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/config"
	verrors "github.com/Aman-CERP/versio/internal/errors"
)

func TestIndexCmd_BuildsDerivedDatabase(t *testing.T) {
	// Given: a project config pointing at a corpus
	dir, outDir := corpusProject(t, "")

	// When: indexing
	out, err := execute(t, "index", "--config-dir", dir)

	// Then: the derived database is reported and exists
	require.NoError(t, err)
	dbPath := filepath.Join(outDir, config.IndexFileName(128, 16))
	assert.FileExists(t, dbPath)
	assert.Contains(t, out, "Complete: 2 verses, 2 chunks")
	assert.Contains(t, out, "Index: "+dbPath)
	assert.Contains(t, out, "Embedder: static")
}

func TestIndexCmd_SecondRunIsUpToDate(t *testing.T) {
	// Given: an index already built
	dir, _ := corpusProject(t, "")
	_, err := execute(t, "index", "--config-dir", dir)
	require.NoError(t, err)

	// When: indexing again, then forcing
	out, err := execute(t, "index", "--config-dir", dir)
	require.NoError(t, err)
	forced, err := execute(t, "index", "--force", "--config-dir", dir)
	require.NoError(t, err)

	// Then: the first rerun is skipped and the forced one rebuilds
	assert.Contains(t, out, "Index is up to date")
	assert.Contains(t, forced, "Complete:")
}

func TestIndexCmd_OutDirFlag(t *testing.T) {
	dir, _ := corpusProject(t, "")
	other := t.TempDir()

	_, err := execute(t, "index", "--out-dir", other, "--config-dir", dir)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, config.IndexFileName(128, 16)))
}

func TestIndexCmd_MissingSourceFailsPreflight(t *testing.T) {
	// Given: a source that does not exist
	dir, _ := corpusProject(t, "")

	// When: indexing
	out, err := execute(t, "index", "--source", filepath.Join(t.TempDir(), "missing.db"), "--config-dir", dir)

	// Then: the preflight report names the failed check
	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeInvalidInput, verrors.GetCode(err))
	assert.Contains(t, out, "[FAIL] source")
}

func TestIndexCmd_MissingSourceWithoutPreflight(t *testing.T) {
	dir, _ := corpusProject(t, "")

	out, err := execute(t, "index", "--skip-check", "--source", filepath.Join(t.TempDir(), "missing.db"), "--config-dir", dir)

	require.Error(t, err)
	assert.NotContains(t, out, "preflight")
}
