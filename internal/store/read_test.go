package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
)

func TestReadSessionNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	createTestSession(t, s, "0190a3f2-0000-7000-8000-000000000002")
	createTestSession(t, s, "0190a3f2-0000-7000-8000-000000000001")

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "0190a3f2-0000-7000-8000-000000000001", sessions[0].ID)
}

func TestReadEmptySession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, testSessionID)

	frames, err := s.ReadFrames(ctx, testSessionID)
	require.NoError(t, err)
	assert.NotNil(t, frames)
	assert.Empty(t, frames)

	results, err := s.ReadLiveResults(ctx, testSessionID)
	require.NoError(t, err)
	assert.Empty(t, results)

	trace, err := s.ReadTrace(ctx, testSessionID)
	require.NoError(t, err)
	assert.Empty(t, trace)
}

func TestReadTraceMatchesEngine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	e := recordTestSession(t, s, testSessionID)

	trace, err := s.ReadTrace(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, e.Trace(), trace)

	events := make([]string, len(trace))
	for i, ev := range trace {
		events[i] = string(ev.(ir.IRObject)["event"].(ir.IRString))
	}
	assert.Equal(t, "revert", events[6])
	assert.Equal(t, "revert", events[8])
	assert.Equal(t, "result", events[9])
}
