package tracking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
)

var (
	none      = ir.NewActionSet()
	primary   = ir.NewActionSet(ir.ActionPrimary)
	secondary = ir.NewActionSet(ir.ActionSecondary)
	both      = ir.NewActionSet(ir.ActionPrimary, ir.ActionSecondary)
)

func frame(t float64, pressed ir.ActionSet, head ir.Action) Input {
	return Input{Time: t, Pressed: pressed, InFollowArea: true, HeadHitAction: head, EndTime: 3000}
}

func newMachine() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

func TestUpdateRejectsEmptyHistory(t *testing.T) {
	var m Machine

	changed, err := m.Update(frame(1000, primary, ir.ActionNone))
	assert.False(t, changed)
	assert.True(t, errors.Is(err, ir.ErrHistoryUnderflow))
	assert.False(t, m.Tracking(), "a refused frame changes nothing")
	assert.Empty(t, m.History())

	assert.True(t, errors.Is(m.Step(frame(1000, primary, ir.ActionNone), false), ir.ErrHistoryUnderflow))

	m.Reset()
	changed, err = m.Update(frame(1000, primary, ir.ActionNone))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestResetState(t *testing.T) {
	m := newMachine()
	m.Update(frame(1000, primary, ir.ActionNone))
	require.True(t, m.Tracking())

	m.Reset()
	assert.False(t, m.Tracking())
	assert.Empty(t, m.History())
	_, ok := m.AcceptAnyKeyAfter()
	assert.False(t, ok)
}

func TestUnresetMachineUnderflows(t *testing.T) {
	var m Machine
	err := m.Rewind(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrHistoryUnderflow))
}

func TestTrackingRequiresFollowAreaAndKey(t *testing.T) {
	m := newMachine()

	in := frame(1000, primary, ir.ActionNone)
	in.InFollowArea = false
	m.Update(in)
	assert.False(t, m.Tracking(), "outside follow area")

	m.Update(frame(1010, none, ir.ActionNone))
	assert.False(t, m.Tracking(), "no key pressed")

	m.Update(frame(1020, secondary, ir.ActionNone))
	assert.True(t, m.Tracking(), "any key before head is hit")
}

func TestTrackingStopsAfterEndOnceJudged(t *testing.T) {
	m := newMachine()
	m.Update(frame(2990, primary, ir.ActionPrimary))
	require.True(t, m.Tracking())

	in := frame(3000, primary, ir.ActionPrimary)
	in.AllJudged = true
	m.Update(in)
	assert.True(t, m.Tracking(), "at end time")

	in = frame(3010, primary, ir.ActionPrimary)
	m.Update(in)
	assert.True(t, m.Tracking(), "past end but not fully judged")

	in.AllJudged = true
	in.Time = 3020
	m.Update(in)
	assert.False(t, m.Tracking())
}

func TestOtherKeyCannotSustainUntilReleased(t *testing.T) {
	m := newMachine()

	// secondary held from a previous object
	m.Update(frame(990, secondary, ir.ActionNone))
	require.True(t, m.Tracking())

	// head hit with primary while secondary is still down
	m.Update(frame(1000, both, ir.ActionPrimary))
	assert.True(t, m.Tracking())
	_, ok := m.AcceptAnyKeyAfter()
	assert.False(t, ok)

	m.Update(frame(1100, secondary, ir.ActionPrimary))
	assert.False(t, m.Tracking(), "secondary alone must not track")

	m.Update(frame(1200, both, ir.ActionPrimary))
	assert.True(t, m.Tracking())

	// secondary released: still locked on this frame and the next
	m.Update(frame(1300, primary, ir.ActionPrimary))
	assert.True(t, m.Tracking())
	_, ok = m.AcceptAnyKeyAfter()
	assert.False(t, ok)

	m.Update(frame(1400, primary, ir.ActionPrimary))
	after, ok := m.AcceptAnyKeyAfter()
	require.True(t, ok)
	assert.Equal(t, 1400.0, after)

	m.Update(frame(1500, secondary, ir.ActionPrimary))
	assert.True(t, m.Tracking(), "either key valid after release")

	assert.Equal(t, []Entry{
		{Time: 990, Tracking: true},
		{Time: 1100, Tracking: false},
		{Time: 1200, Tracking: true},
	}, m.History())
}

func TestLockedKeyOnAcceptFrame(t *testing.T) {
	m := newMachine()
	m.Update(frame(1000, primary, ir.ActionPrimary))
	after, ok := m.AcceptAnyKeyAfter()
	require.True(t, ok)
	require.Equal(t, 1000.0, after)

	// at exactly the accept time only the hit action counts
	m2 := newMachine()
	m2.Update(frame(1000, secondary, ir.ActionPrimary))
	assert.False(t, m2.Tracking())
}

func TestMissedHeadClearsLock(t *testing.T) {
	m := newMachine()
	m.Update(frame(1000, primary, ir.ActionPrimary))
	_, ok := m.AcceptAnyKeyAfter()
	require.True(t, ok)

	m.Update(frame(1010, secondary, ir.ActionNone))
	_, ok = m.AcceptAnyKeyAfter()
	assert.False(t, ok)
	assert.True(t, m.Tracking())
}

func script() []Input {
	return []Input{
		frame(1000, primary, ir.ActionPrimary),
		frame(1200, none, ir.ActionPrimary),
		frame(1400, primary, ir.ActionPrimary),
		frame(1600, secondary, ir.ActionPrimary),
		frame(1800, none, ir.ActionPrimary),
		frame(2000, primary, ir.ActionPrimary),
	}
}

func TestRewindRestoresRecordedValue(t *testing.T) {
	m := newMachine()
	for _, in := range script() {
		m.Update(in)
	}
	full := m.History()

	for _, at := range []float64{1999, 1700, 1400, 1300, 1000, 500} {
		want := m.TrackingAt(at)
		require.NoError(t, m.Rewind(at))
		assert.Equal(t, want, m.Tracking(), "rewind to %v", at)
		for _, e := range m.History() {
			assert.LessOrEqual(t, e.Time, at)
		}
	}
	assert.False(t, m.Tracking())
	assert.NotEmpty(t, full)
}

func TestRewindReplayIsDeterministic(t *testing.T) {
	m := newMachine()
	frames := script()
	for _, in := range frames {
		m.Update(in)
	}
	want := m.History()

	for round := 0; round < 3; round++ {
		require.NoError(t, m.Step(Input{Time: 1300}, true))
		for _, in := range frames {
			if in.Time > 1300 {
				require.NoError(t, m.Step(in, false))
			}
		}
		assert.Equal(t, want, m.History(), "round %d", round)
	}
}
