package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/config"
)

func TestConfigTemplate_LoadsAsDefaults(t *testing.T) {
	// Given: the template written as a project config, with no user config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".versio.yaml"), []byte(ConfigTemplate), 0o644))

	// When: loading
	cfg, err := config.Load(dir)

	// Then: it validates and matches the built-in defaults
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}
