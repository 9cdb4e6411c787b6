package destination

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/model"
)

func TestLocalProject_WriteThenExistsThenHash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := NewLocalProject(dir)

	require.NoError(t, dest.Write(".claude/commands/review.md", []byte("content")))

	exists, err := dest.Exists(".claude/commands/review.md")
	require.NoError(t, err)
	assert.True(t, exists)

	hash, err := dest.Hash(".claude/commands/review.md")
	require.NoError(t, err)
	assert.Equal(t, model.HashBytes([]byte("content")), hash)
}

func TestLocalProject_ExistsFalseForMissingFile(t *testing.T) {
	t.Parallel()

	dest := NewLocalProject(t.TempDir())
	exists, err := dest.Exists("nope.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalProject_WriteLeavesNoTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := NewLocalProject(dir)
	require.NoError(t, dest.Write("out.md", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.md", entries[0].Name())
}

func TestLocalProject_Delete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := NewLocalProject(dir)
	require.NoError(t, dest.Write("out.md", []byte("x")))
	require.NoError(t, dest.Delete("out.md"))

	exists, err := dest.Exists("out.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalProject_DeleteMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	dest := NewLocalProject(t.TempDir())
	assert.NoError(t, dest.Delete("never-existed.md"))
}

func TestLocalProject_BatchStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := NewLocalProject(dir)
	require.NoError(t, dest.Write("present.md", []byte("x")))

	statuses, err := dest.BatchStatus([]string{"present.md", "absent.md"})
	require.NoError(t, err)
	assert.True(t, statuses["present.md"].Exists)
	assert.False(t, statuses["absent.md"].Exists)
}

func TestLocalHome_ExpandHomeResolvesTilde(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	dest := NewLocalHome(home)
	assert.Equal(t, filepath.Join(home, ".claude/commands/review.md"), dest.ExpandHome("~/.claude/commands/review.md"))
}

func TestLocalProject_ExpandHomeIsNoop(t *testing.T) {
	t.Parallel()

	dest := NewLocalProject(t.TempDir())
	assert.Equal(t, ".claude/commands/review.md", dest.ExpandHome(".claude/commands/review.md"))
}

func TestLocalProject_ListUnder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := NewLocalProject(dir)
	require.NoError(t, dest.Write("a/one.md", []byte("1")))
	require.NoError(t, dest.Write("a/two.md", []byte("2")))

	entries, err := dest.ListUnder("a")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
