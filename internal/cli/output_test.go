package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitInvariant, "halted")), ExitInvariant},
		{"plain error", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "bad", NewExitError(1, "bad").Error())

	inner := errors.New("disk full")
	err := WrapExitError(2, "write failed", inner)
	assert.Equal(t, "write failed: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestEngineExitError(t *testing.T) {
	halted := ir.NewInvariantError(ir.CodeFrameOrder, "frame at %g before %g", 10.0, 20.0)
	assert.Equal(t, ExitInvariant, engineExitError(ExitCommandError, "run", halted).Code)

	wrapped := fmt.Errorf("play: %w", halted)
	assert.Equal(t, ExitInvariant, engineExitError(ExitCommandError, "run", wrapped).Code)

	assert.Equal(t, ExitCommandError, engineExitError(ExitCommandError, "run", errors.New("io")).Code)
}

func TestOutputFormatterText(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out}

	require.NoError(t, f.Error(ErrCodeNotFound, "no such file", "detail"))
	assert.Equal(t, "Error [E002]: no such file\n", out.String())

	out.Reset()
	f.Verbose = true
	require.NoError(t, f.Error(ErrCodeNotFound, "no such file", "detail"))
	assert.Contains(t, out.String(), "Details: detail")
}

func TestOutputFormatterJSON(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out}

	require.NoError(t, f.Failure("E_X", "went wrong", map[string]int{"n": 1}))
	resp := decodeResponse(t, out.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_X", resp.Error.Code)
	assert.NotNil(t, resp.Data)

	out.Reset()
	require.NoError(t, f.Success("done"))
	resp = decodeResponse(t, out.String())
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "done", resp.Data)
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}
