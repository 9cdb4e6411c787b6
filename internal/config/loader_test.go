package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromString_ValidTOML(t *testing.T) {
	t.Parallel()

	const data = `
[format]
version = "1.0"

[security]
mode = "strict"
allow_naked = true
deny = ["**/secrets/**"]

[targets]
enabled = ["claude-code", "cursor"]

[sync]
atomic_writes = false
respect_lockfile = true

[output]
verbosity = "verbose"
`

	cfg, err := LoadFromString(data, "<inline>")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1.0", cfg.FormatVersion)
	assert.Equal(t, "strict", cfg.Security.Mode)
	assert.True(t, cfg.Security.AllowNaked)
	assert.Equal(t, []string{"**/secrets/**"}, cfg.Security.Deny)
	assert.Equal(t, []string{"claude-code", "cursor"}, cfg.Targets.Enabled)
	assert.False(t, cfg.Sync.AtomicWrites)
	assert.True(t, cfg.Sync.RespectLockfile)
	assert.Equal(t, "verbose", cfg.Output.Verbosity)
}

func TestLoadFromString_MCPAllowlists(t *testing.T) {
	t.Parallel()

	const data = `
[security.mcp]
allowlist = ["github", "filesystem"]
additional_allowlist = ["my-internal-server"]
`

	cfg, err := LoadFromString(data, "<test>")
	require.NoError(t, err)
	assert.Equal(t, []string{"github", "filesystem"}, cfg.Security.MCP.Allowlist)
	assert.Equal(t, []string{"my-internal-server"}, cfg.Security.MCP.AdditionalAllowlist)
}

func TestLoadFromString_EmptyDocument(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromString("", "<empty>")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Security.Mode)
}

func TestLoadFromString_InvalidSyntax(t *testing.T) {
	t.Parallel()

	_, err := LoadFromString("[broken", "<test>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<test>")
}

func TestLoadFromString_InvalidSyntax_ContainsLineInfo(t *testing.T) {
	t.Parallel()

	_, err := LoadFromString("[security\nmode = \"strict\"\n", "<inline-bad>")
	require.Error(t, err)

	errMsg := err.Error()
	assert.True(t,
		containsAny(errMsg, "line", "Line", "column", "Column"),
		"parse error must contain line/column info; got: %s", errMsg)
}

func TestLoadFromFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path/calvin.toml")
	require.Error(t, err)
}

func TestLoadFromFile_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte{}, 0o644))

	cfg, err := LoadFromFile(empty)
	require.NoError(t, err, "empty file must not return an error")
	require.NotNil(t, cfg)
}

func TestLoadFromFile_TempDirValidTOML(t *testing.T) {
	t.Parallel()

	const data = `
[format]
version = "1.0"

[security]
mode = "balanced"

[sync]
atomic_writes = true
`

	dir := t.TempDir()
	path := filepath.Join(dir, "calvin.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "balanced", cfg.Security.Mode)
	assert.True(t, cfg.Sync.AtomicWrites)
}

func TestLoadFromFile_ErrorContainsFilePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad-config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[broken toml"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-config.toml",
		"error must mention the file name to help the user debug")
}

func TestLoadFromString_UnknownKeysNoError(t *testing.T) {
	t.Parallel()

	const data = `
[security]
mode = "balanced"
future_ai_option = "experimental"

[security.unknown_nested]
whatever = true
`

	cfg, err := LoadFromString(data, "<test-unknown-keys>")
	require.NoError(t, err, "unknown keys must not cause an error")
	require.NotNil(t, cfg)
	assert.Equal(t, "balanced", cfg.Security.Mode,
		"known field 'security.mode' must decode despite unknown keys")
}

func TestLoadFromString_TargetsEnabledEmpty(t *testing.T) {
	t.Parallel()

	const data = `
[targets]
enabled = []
`

	cfg, err := LoadFromString(data, "<test>")
	require.NoError(t, err)
	assert.Empty(t, cfg.Targets.Enabled)
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
