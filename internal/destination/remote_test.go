package destination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote_EscapesEmbeddedSingleQuote(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestShellQuote_PlainPathUnchanged(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "'/abs/path/file.md'", shellQuote("/abs/path/file.md"))
}

func TestRemotePath_RelativeJoinsBasePath(t *testing.T) {
	t.Parallel()

	r := NewRemote(nil, "/srv/promptpack")
	assert.Equal(t, "/srv/promptpack/.claude/commands/review.md", r.remotePath(".claude/commands/review.md"))
}

func TestRemotePath_AbsoluteUnchanged(t *testing.T) {
	t.Parallel()

	r := NewRemote(nil, "/srv/promptpack")
	assert.Equal(t, "/etc/other.md", r.remotePath("/etc/other.md"))
}
