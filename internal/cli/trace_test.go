package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
)

func TestTraceCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "holdjudge.db")
	recordSession(t, db, "trace-1")

	out, err := executeCommand(t, "--db", db, "trace", "--session", "trace-1")
	require.NoError(t, err)

	assert.Contains(t, out, "session trace-1  hold")
	assert.Contains(t, out, "0:head#0")
	assert.Contains(t, out, "[primary]")
	assert.Contains(t, out, "0:tail#4")
	assert.Equal(t, 1, strings.Count(out, " revert "))
}

func TestTraceCommandJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "holdjudge.db")
	recordSession(t, db, "trace-json")

	out, err := executeCommand(t, "--db", db, "--format", "json", "trace", "--session", "trace-json")
	require.NoError(t, err)
	var full TraceResult
	decodeData(t, decodeResponse(t, out), &full)

	out, err = executeCommand(t, "--db", db, "--format", "json", "trace", "--session", "trace-json", "--live")
	require.NoError(t, err)
	var live TraceResult
	decodeData(t, decodeResponse(t, out), &live)

	assert.Equal(t, "trace-json", full.SessionID)
	assert.Len(t, live.Events, 6)
	// The reverted tick and its revert event only show up in the full trace.
	assert.Len(t, full.Events, 8)
	assert.NotEqual(t, full.TraceHash, live.TraceHash)
}

func TestTraceCommandMatchesRunHash(t *testing.T) {
	db := filepath.Join(t.TempDir(), "holdjudge.db")

	out, err := executeCommand(t, "--db", db, "--format", "json", "run", "--session", "hash",
		filepath.Join("testdata", "scenarios", "hold.yaml"))
	require.NoError(t, err)
	var run RunResult
	decodeData(t, decodeResponse(t, out), &run)

	out, err = executeCommand(t, "--db", db, "--format", "json", "trace", "--session", "hash")
	require.NoError(t, err)
	var trace TraceResult
	decodeData(t, decodeResponse(t, out), &trace)

	assert.Equal(t, run.TraceHash, trace.TraceHash)
}

func TestTraceCommandRequiresSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "holdjudge.db")
	recordSession(t, db, "any")

	_, err := executeCommand(t, "--db", db, "trace")
	require.Error(t, err)
}

func TestTraceCommandUnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "holdjudge.db")
	recordSession(t, db, "known")

	out, err := executeCommand(t, "--db", db, "trace", "--session", "unknown")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestFormatEvent(t *testing.T) {
	result := ir.IRObject{
		"seq":                   ir.IRInt(3),
		"note":                  ir.IRInt(0),
		"kind":                  ir.IRString("head"),
		"index":                 ir.IRInt(0),
		"type":                  ir.IRString("ok"),
		"judged_at_us":          ir.IRInt(1050000),
		"combo_after_judgement": ir.IRString("good"),
		"hit_action":            ir.IRString("primary"),
	}
	line := formatEvent(result)
	assert.Contains(t, line, "result  0:head#0")
	assert.Contains(t, line, "at 1050")
	assert.Contains(t, line, "combo good")
	assert.True(t, strings.HasSuffix(line, "[primary]"))

	revert := ir.IRObject{
		"seq":       ir.IRInt(9),
		"event":     ir.IRString("revert"),
		"at_us":     ir.IRInt(2000000),
		"result_id": ir.IRString("abcdef0123456789"),
	}
	line = formatEvent(revert)
	assert.Contains(t, line, "revert")
	assert.Contains(t, line, "undoes abcdef012345")
	assert.NotContains(t, line, "abcdef0123456")
}
