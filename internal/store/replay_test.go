package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/engine"
)

func TestReplayMatchesRecording(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	recordTestSession(t, s, testSessionID)

	report, err := s.Replay(ctx, testSessionID, testBuilder(testSessionID))
	require.NoError(t, err)

	assert.True(t, report.Match())
	assert.Equal(t, len(testSteps()), report.Steps)
	assert.True(t, report.Verification.RewindStable)

	sess, err := s.ReadSession(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.TraceHash, report.RecordedHash)
}

func TestReplayDetectsDifferentEngine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	recordTestSession(t, s, testSessionID)

	// result IDs are scoped to the session, so another scope cannot match
	report, err := s.Replay(ctx, testSessionID, testBuilder("other-session"))
	require.NoError(t, err)
	assert.False(t, report.Match())
	assert.True(t, report.Verification.Deterministic)
}

func TestReplayUnaffectedByEquivalentPolicy(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	recordTestSession(t, s, testSessionID)

	// cursor at the center either way, so the policy alone changes nothing
	report, err := s.Replay(ctx, testSessionID,
		testBuilder(testSessionID, engine.WithHitPolicy(engine.AnyPositionHitPolicy{})))
	require.NoError(t, err)
	assert.True(t, report.Match())
}

func TestReplayUnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Replay(context.Background(), "missing", testBuilder("missing"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
