package layer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolve_LaterLayerWins(t *testing.T) {
	t.Parallel()

	userDir := t.TempDir()
	projectDir := t.TempDir()
	writeFile(t, userDir, "actions/review.md", "---\ndescription: user version\n---\n")
	writeFile(t, projectDir, "actions/review.md", "---\ndescription: project version\n---\n")

	result, err := Resolve(context.Background(), []Spec{
		{Name: "user", Path: userDir},
		{Name: "project", Path: projectDir},
	})
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "project version", result.Assets[0].Description)
	assert.Equal(t, "project", result.Assets[0].OriginLayer)
}

func TestResolve_DisjointLayersBothContribute(t *testing.T) {
	t.Parallel()

	userDir := t.TempDir()
	projectDir := t.TempDir()
	writeFile(t, userDir, "actions/a.md", "---\ndescription: a\n---\n")
	writeFile(t, projectDir, "actions/b.md", "---\ndescription: b\n---\n")

	result, err := Resolve(context.Background(), []Spec{
		{Name: "user", Path: userDir},
		{Name: "project", Path: projectDir},
	})
	require.NoError(t, err)
	assert.Len(t, result.Assets, 2)
}

func TestResolve_SummariesTrackContributionAndOverride(t *testing.T) {
	t.Parallel()

	userDir := t.TempDir()
	projectDir := t.TempDir()
	writeFile(t, userDir, "actions/review.md", "---\ndescription: user version\n---\n")
	writeFile(t, userDir, "actions/only-user.md", "---\ndescription: x\n---\n")
	writeFile(t, projectDir, "actions/review.md", "---\ndescription: project version\n---\n")

	result, err := Resolve(context.Background(), []Spec{
		{Name: "user", Path: userDir},
		{Name: "project", Path: projectDir},
	})
	require.NoError(t, err)
	require.Len(t, result.Layers, 2)

	var userSummary, projectSummary Summary
	for _, s := range result.Layers {
		switch s.Name {
		case "user":
			userSummary = s
		case "project":
			projectSummary = s
		}
	}
	assert.Equal(t, 1, userSummary.OverriddenCount)
	assert.Equal(t, 1, userSummary.ContributedCount)
	assert.Equal(t, 1, projectSummary.ContributedCount)
}

func TestResolve_MalformedLayerAbortsRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/bad.md", "---\nkind: action\n---\n")

	_, err := Resolve(context.Background(), []Spec{{Name: "project", Path: dir}})
	require.Error(t, err)
}

func TestResolve_EmptySpecsYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	result, err := Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Assets)
}

func TestResolve_SortedDeterministicOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/zebra.md", "---\ndescription: z\n---\n")
	writeFile(t, dir, "actions/apple.md", "---\ndescription: a\n---\n")

	result, err := Resolve(context.Background(), []Spec{{Name: "project", Path: dir}})
	require.NoError(t, err)
	require.Len(t, result.Assets, 2)
	assert.True(t, result.Assets[0].ID < result.Assets[1].ID)
	_ = model.KindAction
}
