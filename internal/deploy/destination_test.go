package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/destination"
)

func TestRouted_RoutesByTildePrefix(t *testing.T) {
	t.Parallel()

	projectDir := t.TempDir()
	homeDir := t.TempDir()
	project := destination.NewLocalProject(projectDir)
	home := destination.NewLocalHome(homeDir)
	r := NewRouted(project, home)

	require.NoError(t, r.Write(".claude/commands/review.md", []byte("project content")))
	require.NoError(t, r.Write("~/.claude/commands/review.md", []byte("home content")))

	exists, err := project.Exists(".claude/commands/review.md")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = home.Exists(".claude/commands/review.md")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRouted_BatchStatusSplitsAndMerges(t *testing.T) {
	t.Parallel()

	project := destination.NewLocalProject(t.TempDir())
	home := destination.NewLocalHome(t.TempDir())
	r := NewRouted(project, home)

	require.NoError(t, r.Write("a.md", []byte("x")))
	require.NoError(t, r.Write("~/b.md", []byte("y")))

	statuses, err := r.BatchStatus([]string{"a.md", "~/b.md", "~/missing.md"})
	require.NoError(t, err)
	assert.True(t, statuses["a.md"].Exists)
	assert.True(t, statuses["~/b.md"].Exists)
	assert.False(t, statuses["~/missing.md"].Exists)
}
