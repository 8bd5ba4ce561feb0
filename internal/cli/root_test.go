package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_HasCommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["solve"])
	assert.True(t, names["check"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2, Err: errors.New("infeasible")}))

	wrapped := &ExitError{Code: 2, Err: errors.New("inner")}
	require.EqualError(t, wrapped, "inner")
	assert.Equal(t, 2, ExitCode(wrapped))
}

func TestSolveCmd_RequiresInput(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"solve"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestEnvEnabled(t *testing.T) {
	t.Setenv("PLENUM_TEST_FLAG", "true")
	assert.True(t, envEnabled("PLENUM_TEST_FLAG"))

	t.Setenv("PLENUM_TEST_FLAG", "off")
	assert.False(t, envEnabled("PLENUM_TEST_FLAG"))

	assert.False(t, envEnabled("PLENUM_TEST_FLAG_MISSING"))
}
