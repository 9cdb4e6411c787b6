package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/model"
)

func TestResolve_DefaultsOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resolved, err := Resolve(ResolveOptions{ProjectDir: dir, GlobalConfigPath: filepath.Join(dir, "absent.toml")})
	require.NoError(t, err)

	assert.Equal(t, "balanced", resolved.Config.Security.Mode)
	assert.Equal(t, model.SourceDefault, resolved.Sources["security.mode"])
}

func TestResolve_ProjectOverridesDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calvin.toml"), []byte(`
[security]
mode = "strict"
`), 0o644))

	resolved, err := Resolve(ResolveOptions{ProjectDir: dir, GlobalConfigPath: filepath.Join(dir, "absent.toml")})
	require.NoError(t, err)

	assert.Equal(t, "strict", resolved.Config.Security.Mode)
	assert.Equal(t, model.SourceProject, resolved.Sources["security.mode"])
}

func TestResolve_EnvOverridesProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calvin.toml"), []byte(`
[security]
mode = "strict"
`), 0o644))

	t.Setenv(EnvSecurityMode, "yolo")

	resolved, err := Resolve(ResolveOptions{ProjectDir: dir, GlobalConfigPath: filepath.Join(dir, "absent.toml")})
	require.NoError(t, err)

	assert.Equal(t, "yolo", resolved.Config.Security.Mode)
	assert.Equal(t, model.SourceEnv, resolved.Sources["security.mode"])
}

func TestResolve_FlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calvin.toml"), []byte(`
[security]
mode = "strict"
`), 0o644))

	t.Setenv(EnvSecurityMode, "yolo")

	resolved, err := Resolve(ResolveOptions{
		ProjectDir:       dir,
		GlobalConfigPath: filepath.Join(dir, "absent.toml"),
		CLIFlags:         map[string]any{"security.mode": "balanced"},
	})
	require.NoError(t, err)

	assert.Equal(t, "balanced", resolved.Config.Security.Mode)
	assert.Equal(t, model.SourceFlag, resolved.Sources["security.mode"])
}

func TestResolve_TargetsEnabledAbsentVsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resolved, err := Resolve(ResolveOptions{ProjectDir: dir, GlobalConfigPath: filepath.Join(dir, "absent.toml")})
	require.NoError(t, err)
	assert.False(t, resolved.Config.Targets.EnabledSet, "targets.enabled absent must not be marked set")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "calvin.toml"), []byte(`
[targets]
enabled = []
`), 0o644))

	resolved, err = Resolve(ResolveOptions{ProjectDir: dir, GlobalConfigPath: filepath.Join(dir, "absent.toml")})
	require.NoError(t, err)
	assert.True(t, resolved.Config.Targets.EnabledSet, "explicit empty targets.enabled must be marked set")
	assert.Empty(t, resolved.Config.Targets.Enabled)
}

func TestResolve_MissingFilesAreSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Resolve(ResolveOptions{
		ProjectDir:       dir,
		GlobalConfigPath: filepath.Join(dir, "nonexistent-global.toml"),
	})
	require.NoError(t, err)
}
