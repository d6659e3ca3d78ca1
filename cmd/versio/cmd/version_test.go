package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/pkg/version"
)

func TestVersionCmd(t *testing.T) {
	isolate(t)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		assert.Equal(t, version.String()+"\n", out)
	})

	t.Run("short", func(t *testing.T) {
		out, err := execute(t, "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, version.Version, strings.TrimSpace(out))
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "version", "--json")
		require.NoError(t, err)

		var info version.BuildInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		assert.Equal(t, version.GetInfo(), info)
	})
}

func TestVersionCmd_FlagsExclusive(t *testing.T) {
	isolate(t)

	// When: both output modes are requested
	_, err := execute(t, "version", "--json", "--short")

	// Then: cobra rejects the combination
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}
