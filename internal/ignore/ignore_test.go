package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayerIgnore_NoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewLayerIgnore(dir)
	require.NoError(t, err)
	assert.False(t, m.IsIgnored("anything.md", false))
}

func TestNewLayerIgnore_MatchesPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".calvinignore"), []byte("drafts/\n*.tmp\n"), 0o644))

	m, err := NewLayerIgnore(dir)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("drafts", true))
	assert.True(t, m.IsIgnored("scratch.tmp", false))
	assert.False(t, m.IsIgnored("actions/review.md", false))
}

func TestNewLayerIgnore_EmptyPathIsNeverIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".calvinignore"), []byte("*\n"), 0o644))

	m, err := NewLayerIgnore(dir)
	require.NoError(t, err)
	assert.False(t, m.IsIgnored("", false))
	assert.False(t, m.IsIgnored(".", true))
}

func TestCompositeMatcher_AnyMatch(t *testing.T) {
	t.Parallel()

	dirA := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, ".calvinignore"), []byte("*.secret\n"), 0o644))
	mA, err := NewLayerIgnore(dirA)
	require.NoError(t, err)

	dirB := t.TempDir()
	mB, err := NewLayerIgnore(dirB)
	require.NoError(t, err)

	composite := NewCompositeMatcher(mA, mB, nil)
	assert.True(t, composite.IsIgnored("key.secret", false))
	assert.False(t, composite.IsIgnored("review.md", false))
}
