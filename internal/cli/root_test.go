package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
)

func TestExtractExitCode_NilIsSuccess(t *testing.T) {
	assert.Equal(t, calvinerr.ExitSuccess, extractExitCode(nil))
}

func TestExtractExitCode_CalvinErrorUsesItsOwnCode(t *testing.T) {
	err := calvinerr.NewPartial(calvinerr.KindConflict, "some files failed")
	assert.Equal(t, calvinerr.ExitPartial, extractExitCode(err))
}

func TestExtractExitCode_PlainErrorIsInvalidArgs(t *testing.T) {
	assert.Equal(t, ExitInvalidArgs, extractExitCode(assert.AnError))
}

func TestExecute_UnknownCommandReturnsInvalidArgs(t *testing.T) {
	_, err := execRoot(t, "not-a-real-command")
	assert.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, extractExitCode(err))
}
