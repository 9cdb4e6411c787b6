package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion_BashGeneratesScript(t *testing.T) {
	out, err := execRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestCompletion_UnsupportedShellErrors(t *testing.T) {
	_, err := execRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}
