package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_PrintsHumanReadableByDefault(t *testing.T) {
	out, err := execRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "calvin version")
}

func TestVersion_JSONFlagEmitsStructuredOutput(t *testing.T) {
	out, err := execRoot(t, "version", "--json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
}
