package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ScaffoldsPromptPackLayout(t *testing.T) {
	dir := t.TempDir()

	out, err := execRoot(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, ".promptpack")

	for _, sub := range []string{"policies", "actions", "agents", "skills"} {
		info, statErr := os.Stat(filepath.Join(dir, ".promptpack", sub))
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}

	content, err := os.ReadFile(filepath.Join(dir, ".promptpack", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `format.version = "1.0"`)
}

func TestInit_DoesNotOverwriteExistingConfig(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".promptpack")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	custom := `format.version = "1.0"
[security]
mode = "strict"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(custom), 0o644))

	_, err := execRoot(t, "init", dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `mode = "strict"`)
}
