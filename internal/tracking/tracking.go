// Package tracking decides, frame by frame, whether the player is holding a
// hold note, and keeps the history needed to restore that decision on rewind.
package tracking

import (
	"math"

	"github.com/roach88/holdjudge/internal/ir"
)

// Entry is a tracking transition.
type Entry struct {
	Time     float64 `json:"time"`
	Tracking bool    `json:"tracking"`
}

// base sits at the bottom of every reset history so a rewind to any finite
// time leaves at least one entry.
var base = Entry{Time: math.Inf(-1), Tracking: false}

// Input is what a forward frame needs to know about the note and the player.
type Input struct {
	Time         float64
	Pressed      ir.ActionSet
	InFollowArea bool

	// HeadHitAction is the action that hit the head, or ActionNone while the
	// head is unjudged or was missed.
	HeadHitAction ir.Action
	AllJudged     bool
	EndTime       float64
}

// Machine is the tracking state of one note.
//
// The zero Machine has no history and must be Reset before use.
type Machine struct {
	tracking bool

	// Before acceptAfter only the head's hit action may track. Stored as a
	// time so rewinding past it restores the restriction.
	acceptAfter    float64
	hasAcceptAfter bool

	lastPressed ir.ActionSet
	history     []Entry
}

// Reset returns the machine to the state of a freshly applied note.
func (m *Machine) Reset() {
	m.tracking = false
	m.acceptAfter = 0
	m.hasAcceptAfter = false
	m.lastPressed = 0
	m.history = append(m.history[:0], base)
}

// Tracking returns the current tracking signal.
func (m *Machine) Tracking() bool {
	return m.tracking
}

// AcceptAnyKeyAfter returns the time after which either action may track.
func (m *Machine) AcceptAnyKeyAfter() (float64, bool) {
	return m.acceptAfter, m.hasAcceptAfter
}

// History returns a copy of the recorded transitions, oldest first.
func (m *Machine) History() []Entry {
	if len(m.history) <= 1 {
		return []Entry{}
	}
	out := make([]Entry, len(m.history)-1)
	copy(out, m.history[1:])
	return out
}

// TrackingAt returns the recorded tracking value at t: the latest
// transition at or before t.
func (m *Machine) TrackingAt(t float64) bool {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Time <= t {
			return m.history[i].Tracking
		}
	}
	return false
}

// Step runs one frame. Rewinding frames restore from history, forward
// frames recompute.
func (m *Machine) Step(in Input, rewinding bool) error {
	if rewinding {
		return m.Rewind(in.Time)
	}
	_, err := m.Update(in)
	return err
}

// Rewind discards transitions later than t and restores the signal from the
// latest remaining one. The key restriction is left alone.
func (m *Machine) Rewind(t float64) error {
	for len(m.history) > 0 && m.history[len(m.history)-1].Time > t {
		m.history = m.history[:len(m.history)-1]
	}
	if len(m.history) == 0 {
		return ir.NewInvariantError(ir.CodeHistoryUnderflow,
			"tracking history empty after rewind to %v", t)
	}
	m.tracking = m.history[len(m.history)-1].Tracking
	return nil
}

// Update recomputes tracking for a forward frame and reports whether it
// changed. A machine with no history, never Reset or emptied from outside,
// is refused with HISTORY_UNDERFLOW and left untouched.
func (m *Machine) Update(in Input) (bool, error) {
	if len(m.history) == 0 {
		return false, ir.NewInvariantError(ir.CodeHistoryUnderflow,
			"tracking history empty at forward frame %v", in.Time)
	}
	was := m.tracking

	if in.HeadHitAction == ir.ActionNone {
		m.hasAcceptAfter = false
	} else if !m.hasAcceptAfter && !m.lastPressed.Has(in.HeadHitAction.Other()) {
		// the other key was released by the previous frame
		m.acceptAfter = in.Time
		m.hasAcceptAfter = true
	}

	valid := false
	for _, a := range in.Pressed.Slice() {
		if m.validAction(a, in) {
			valid = true
			break
		}
	}
	m.lastPressed = in.Pressed

	m.tracking = (!in.AllJudged || in.Time <= in.EndTime) &&
		in.InFollowArea &&
		valid

	if m.tracking != was {
		m.history = append(m.history, Entry{Time: in.Time, Tracking: m.tracking})
	}
	return m.tracking != was, nil
}

func (m *Machine) validAction(a ir.Action, in Input) bool {
	if in.HeadHitAction != ir.ActionNone && (!m.hasAcceptAfter || in.Time <= m.acceptAfter) {
		return a == in.HeadHitAction
	}
	return a == ir.ActionPrimary || a == ir.ActionSecondary
}
