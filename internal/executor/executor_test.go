package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/events"
	"github.com/64andrewwalker/calvin/internal/lockfile"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/plan"
)

func writeItem(path, content string) plan.Item {
	output := model.NewOutputFile(path, []byte(content), model.TargetClaudeCode, "src/"+path)
	return plan.Item{Output: output, LockfileKey: lockfile.Key(model.NamespaceProject, path), Classification: plan.ClassWriteNew}
}

func TestRun_WritesInStablePathOrderAndUpdatesLockfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := destination.NewLocalProject(dir)
	doc := lockfile.New()
	sink := &events.CollectingSink{}

	resolved := &plan.Resolved{Writes: []plan.Item{
		writeItem("z.md", "z"),
		writeItem("a.md", "a"),
	}}

	result := Run(resolved, dest, doc, sink, "deploy", false, nil)

	require.Equal(t, []string{"a.md", "z.md"}, result.Written)
	assert.Empty(t, result.Errors)

	exists, err := dest.Exists("a.md")
	require.NoError(t, err)
	assert.True(t, exists)

	_, tracked := doc.Get(lockfile.Key(model.NamespaceProject, "a.md"))
	assert.True(t, tracked)
}

func TestRun_EmitsStartThenWrittenPerItem(t *testing.T) {
	t.Parallel()

	dest := destination.NewLocalProject(t.TempDir())
	doc := lockfile.New()
	sink := &events.CollectingSink{}

	resolved := &plan.Resolved{Writes: []plan.Item{writeItem("a.md", "a")}}
	Run(resolved, dest, doc, sink, "deploy", false, nil)

	require.Len(t, sink.Events, 2)
	assert.Equal(t, events.ItemStart, sink.Events[0].Event)
	assert.Equal(t, events.ItemWritten, sink.Events[1].Event)
}

func TestRun_DryRunPerformsNoIOAndNoLockfileMutation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := destination.NewLocalProject(dir)
	doc := lockfile.New()
	sink := &events.CollectingSink{}

	resolved := &plan.Resolved{Writes: []plan.Item{writeItem("a.md", "a")}}
	result := Run(resolved, dest, doc, sink, "deploy", true, nil)

	assert.Equal(t, []string{"a.md"}, result.Written)

	exists, err := dest.Exists("a.md")
	require.NoError(t, err)
	assert.False(t, exists)

	_, tracked := doc.Get(lockfile.Key(model.NamespaceProject, "a.md"))
	assert.False(t, tracked)
}

func TestRun_SkipsArePassedThroughWithoutIO(t *testing.T) {
	t.Parallel()

	dest := destination.NewLocalProject(t.TempDir())
	doc := lockfile.New()
	sink := &events.CollectingSink{}

	resolved := &plan.Resolved{Skips: []plan.Item{writeItem("a.md", "a")}}
	result := Run(resolved, dest, doc, sink, "deploy", false, nil)

	assert.Equal(t, []string{"a.md"}, result.Skipped)
	assert.Equal(t, events.ItemSkipped, sink.Events[0].Event)
}

func TestRun_WriteErrorIsPerFileNonFatal(t *testing.T) {
	t.Parallel()

	doc := lockfile.New()
	sink := &events.CollectingSink{}

	// A path with an existing file component as a directory segment
	// forces os.MkdirAll to fail for the conflicting entry, while the
	// sibling item still succeeds.
	dir := t.TempDir()
	dest := destination.NewLocalProject(dir)
	require.NoError(t, dest.Write("blocked", []byte("x")))

	resolved := &plan.Resolved{Writes: []plan.Item{
		writeItem("blocked/child.md", "content"),
		writeItem("ok.md", "content"),
	}}

	result := Run(resolved, dest, doc, sink, "deploy", false, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "blocked/child.md", result.Errors[0].Path)
	assert.Equal(t, []string{"ok.md"}, result.Written)
}

func TestRun_CancelBetweenItemsAborts(t *testing.T) {
	t.Parallel()

	dest := destination.NewLocalProject(t.TempDir())
	doc := lockfile.New()
	sink := &events.CollectingSink{}

	resolved := &plan.Resolved{Writes: []plan.Item{
		writeItem("a.md", "a"),
		writeItem("b.md", "b"),
	}}

	calls := 0
	cancel := func() bool {
		calls++
		return calls > 1
	}

	result := Run(resolved, dest, doc, sink, "deploy", false, cancel)
	assert.True(t, result.Aborted)
	assert.Equal(t, []string{"a.md"}, result.Written)
}
