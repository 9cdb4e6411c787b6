package repository

import (
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

func TestLoad_MarkdownAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: review\n---\nbody\n")
	writeFile(t, dir, "policies/security.md", "---\ndescription: secure\n---\nbody\n")

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 2)

	kinds := map[model.AssetKind]bool{}
	for _, a := range result.Assets {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[model.KindAction])
	assert.True(t, kinds[model.KindPolicy])
}

func TestLoad_SkipsDotfilesAndGit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: review\n---\nbody\n")
	writeFile(t, dir, ".git/config", "not an asset")
	writeFile(t, dir, ".hidden/file.md", "---\ndescription: x\n---\n")

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
}

func TestLoad_SkillRequiresManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "skills/reviewer/notes.txt", "scratch")

	_, err := Load(dir, nil)
	require.Error(t, err)
}

func TestLoad_SkillWithSupplementals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "skills/reviewer/SKILL.md", "---\ndescription: reviews code\n---\nbody\n")
	writeFile(t, dir, "skills/reviewer/template.txt", "template content")

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)

	asset := result.Assets[0]
	assert.Equal(t, model.KindSkill, asset.Kind)
	assert.Equal(t, "reviewer", asset.ID)
	assert.Equal(t, []string{"template.txt"}, asset.Supplementals)
}

func TestLoad_SkillExcludesSensitiveSupplemental(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "skills/reviewer/SKILL.md", "---\ndescription: reviews code\n---\nbody\n")
	writeFile(t, dir, "skills/reviewer/template.txt", "template content")
	writeFile(t, dir, "skills/reviewer/.env", "API_KEY=shh")

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)

	asset := result.Assets[0]
	assert.Equal(t, []string{"template.txt"}, asset.Supplementals)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "warning", result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Field, ".env")
}

func TestLoad_NestedPathsDoNotCollideAsDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: a\n---\n")
	writeFile(t, dir, "actions/review.txt", "not markdown, ignored")
	// A nested file with the same base name derives a distinct id.
	writeFile(t, dir, "actions/sub/review.md", "---\ndescription: b\n---\n")

	_, err := Load(dir, nil)
	// "review" vs "sub-review" won't collide; this case instead verifies
	// that loading succeeds without a spurious duplicate error.
	require.NoError(t, err)
}

func TestLoad_MissingLayerRootIsEmptyNotError(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "does-not-exist")
	result, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Assets)
}

func TestLoad_FollowsSymlinkedDirectory(t *testing.T) {
	t.Parallel()

	// The real content lives outside the layer root entirely; only a
	// symlink named "policies" exposes it inside the layer, so the walk
	// never encounters the real directory under its own unrecognized
	// path as well as its symlinked alias.
	shared := t.TempDir()
	writeFile(t, shared, "security.md", "---\ndescription: secure\n---\nbody\n")

	dir := t.TempDir()
	require.NoError(t, os.Symlink(shared, filepath.Join(dir, "policies")))

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "policies/security.md", result.Assets[0].SourcePath)
}

func TestLoad_SkipsSymlinkLoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: review\n---\nbody\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "loop"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "loop"), filepath.Join(dir, "loop", "self")))

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "actions/review.md", result.Assets[0].SourcePath)
}

func TestLoad_SkipsDanglingSymlinkWithDiagnostic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: review\n---\nbody\n")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere.md"), filepath.Join(dir, "actions", "broken.md")))

	result, err := Load(dir, nil)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "warning", result.Diagnostics[0].Severity)
}

type stubMatcher struct{ ignoredPaths map[string]bool }

func (s stubMatcher) IsIgnored(path string, isDir bool) bool {
	return s.ignoredPaths[path]
}

func TestLoad_RespectsIgnoreMatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "actions/review.md", "---\ndescription: a\n---\n")
	writeFile(t, dir, "actions/draft.md", "---\ndescription: b\n---\n")

	matcher := stubMatcher{ignoredPaths: map[string]bool{"actions/draft.md": true}}
	result, err := Load(dir, matcher)
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, 1, result.IgnoredCount)
}
