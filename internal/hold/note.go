package hold

import (
	"context"
	"fmt"

	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/timing"
	"github.com/roach88/holdjudge/internal/tracking"
)

// FollowAreaExpansion scales the radius for the expanded follow area.
const FollowAreaExpansion = 2.4

// SubObject is a head, tick or tail of a hold note.
type SubObject struct {
	Kind ir.ObjectKind
	Time float64

	// Judgement state. HitAction is only set on a head hit by input.
	Judged    bool
	Result    ir.HitResult
	HitAction ir.Action
	JudgedAt  float64

	// Note is the owning note. It does not keep the note alive.
	Note Handle
}

// Judge records a judgement. Judging an already judged object is an
// invariant violation.
func (s *SubObject) Judge(result ir.HitResult, action ir.Action, at float64) error {
	if s.Judged {
		return ir.NewInvariantError(ir.CodeDoubleJudgement,
			"%s at %v already judged %s", s.Kind, s.Time, s.Result)
	}
	s.Judged = true
	s.Result = result
	s.HitAction = action
	s.JudgedAt = at
	return nil
}

// Revert returns the object to unjudged.
func (s *SubObject) Revert() {
	s.Judged = false
	s.Result = ir.HitNone
	s.HitAction = ir.ActionNone
	s.JudgedAt = 0
}

// Spec is the beatmap description of a hold note.
type Spec struct {
	StartTime float64
	EndTime   float64
	Position  ir.Vector2
	NewCombo  bool
}

// Note is a hold note with its derived values and gameplay state.
type Note struct {
	ID        int
	StartTime float64
	EndTime   float64
	Position  ir.Vector2
	NewCombo  bool

	TickInterval float64
	Radius       float64
	Nested       []SubObject

	// Aggregate is the note-level judgement.
	Aggregate SubObject

	Tracking tracking.Machine
}

// NewNote derives tick interval, radius and sub-objects for spec.
func NewNote(ctx context.Context, id int, spec Spec, cp *timing.ControlPoints, diff timing.Difficulty) (Note, error) {
	if spec.EndTime < spec.StartTime {
		return Note{}, fmt.Errorf("note %d: end time %v before start time %v", id, spec.EndTime, spec.StartTime)
	}

	n := Note{
		ID:           id,
		StartTime:    spec.StartTime,
		EndTime:      spec.EndTime,
		Position:     spec.Position,
		NewCombo:     spec.NewCombo,
		TickInterval: diff.TickInterval(cp, spec.StartTime),
		Radius:       diff.Radius(),
	}

	nested, err := Generate(ctx, n.StartTime, n.EndTime, n.TickInterval)
	if err != nil {
		return Note{}, fmt.Errorf("note %d: %w", id, err)
	}
	n.Nested = nested
	n.Aggregate = SubObject{Kind: ir.KindNote, Time: n.EndTime}
	n.Tracking.Reset()
	return n, nil
}

// Head returns the head sub-object.
func (n *Note) Head() *SubObject {
	return &n.Nested[0]
}

// Duration is EndTime - StartTime.
func (n *Note) Duration() float64 {
	return n.EndTime - n.StartTime
}

// AllNestedJudged reports whether every sub-object has a result.
func (n *Note) AllNestedJudged() bool {
	for i := range n.Nested {
		if !n.Nested[i].Judged {
			return false
		}
	}
	return true
}

// AllJudged reports whether the sub-objects and the aggregate are judged.
func (n *Note) AllJudged() bool {
	return n.Aggregate.Judged && n.AllNestedJudged()
}

// AnyNestedHit reports whether any sub-object was hit.
func (n *Note) AnyNestedHit() bool {
	for i := range n.Nested {
		if n.Nested[i].Judged && n.Nested[i].Result.IsHit() {
			return true
		}
	}
	return false
}

// InFollowArea reports whether cursor lies within the follow area.
// A nil cursor is never inside.
func (n *Note) InFollowArea(cursor *ir.Vector2, expanded bool) bool {
	if cursor == nil {
		return false
	}
	r := n.Radius
	if expanded {
		r *= FollowAreaExpansion
	}
	return cursor.Sub(n.Position).LengthSquared() <= r*r
}

// Object returns the sub-object at index, or the aggregate for ir.AggregateIndex.
func (n *Note) Object(index int) (*SubObject, bool) {
	if index == ir.AggregateIndex {
		return &n.Aggregate, true
	}
	if index < 0 || index >= len(n.Nested) {
		return nil, false
	}
	return &n.Nested[index], true
}

// Reset clears all judgement and tracking state.
func (n *Note) Reset() {
	for i := range n.Nested {
		n.Nested[i].Revert()
	}
	n.Aggregate.Revert()
	n.Tracking.Reset()
}
