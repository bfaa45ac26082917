package engine

import (
	"fmt"

	"github.com/roach88/holdjudge/internal/hold"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/tracking"
)

// active reports whether a note takes part in frame t. A note joins once a
// press could reach its head and leaves once fully judged and no longer
// tracking.
func (e *Engine) active(n *hold.Note, t float64) bool {
	if t < n.StartTime-e.windows.Miss {
		return false
	}
	return !n.AllJudged() || n.Tracking.Tracking()
}

func (e *Engine) updateNote(n *hold.Note, f Frame, newly *ir.ActionSet) error {
	if err := e.updateTracking(n, f, n.InFollowArea(f.Cursor, false)); err != nil {
		return err
	}

	head := n.Head()
	if !head.Judged {
		if err := e.judgeHead(n, f, newly); err != nil {
			return err
		}
		if head.Judged && head.Result.IsHit() {
			if err := e.catchUp(n, f); err != nil {
				return err
			}
		}
	}

	if err := e.judgeTicks(n, f.Time); err != nil {
		return err
	}
	return e.judgeAggregate(n, f.Time)
}

func (e *Engine) updateTracking(n *hold.Note, f Frame, inFollowArea bool) error {
	changed, err := n.Tracking.Update(tracking.Input{
		Time:          f.Time,
		Pressed:       f.Pressed,
		InFollowArea:  inFollowArea,
		HeadHitAction: headHitAction(n),
		AllJudged:     n.AllJudged(),
		EndTime:       n.EndTime,
	})
	if err != nil {
		return withNote(err, n, ir.KindNote, ir.AggregateIndex, f.Time)
	}
	if changed {
		e.inst.recordTransition(n.Tracking.Tracking())
	}
	return nil
}

// headHitAction is the action that hit the head, or none if the head is
// unjudged or missed.
func headHitAction(n *hold.Note) ir.Action {
	head := n.Head()
	if head.Judged && head.Result.IsHit() {
		return head.HitAction
	}
	return ir.ActionNone
}

// judgeHead grades a new press on the head, or misses it once it can no
// longer be hit. A press outside every window is left for other notes.
func (e *Engine) judgeHead(n *hold.Note, f Frame, newly *ir.ActionSet) error {
	head := n.Head()
	offset := f.Time - head.Time

	if pressed := newly.Slice(); len(pressed) > 0 && e.policy.CanHit(n, f) {
		if res := e.windows.ResultFor(offset); res != ir.HitNone {
			action := pressed[0]
			*newly = newly.Without(action)
			if !res.IsHit() {
				action = ir.ActionNone
			}
			return e.judge(n, 0, res, action, f.Time)
		}
	}

	if !e.windows.CanBeHit(offset) {
		return e.judge(n, 0, ir.HitMiss, ir.ActionNone, f.Time)
	}
	return nil
}

// catchUp force-hits everything already passed when a late head hit lands
// with the cursor in the expanded follow area, then re-evaluates tracking.
func (e *Engine) catchUp(n *hold.Note, f Frame) error {
	if !n.InFollowArea(f.Cursor, true) {
		return nil
	}
	for i := 1; i < len(n.Nested); i++ {
		sub := &n.Nested[i]
		if sub.Judged {
			continue
		}
		if sub.Time > f.Time {
			break
		}
		if err := e.judge(n, i, ir.HitLargeTickHit, ir.ActionNone, f.Time); err != nil {
			return err
		}
	}
	return e.updateTracking(n, f, true)
}

// judgeTicks force-judges due ticks and the tail from tracking. Nothing is
// judged while the head is pending.
func (e *Engine) judgeTicks(n *hold.Note, t float64) error {
	if !n.Head().Judged {
		return nil
	}
	for i := 1; i < len(n.Nested); i++ {
		sub := &n.Nested[i]
		if sub.Judged {
			continue
		}
		if t-sub.Time < 0 {
			break
		}
		res := ir.HitLargeTickMiss
		if n.Tracking.Tracking() {
			res = ir.HitLargeTickHit
		}
		if err := e.judge(n, i, res, ir.ActionNone, t); err != nil {
			return err
		}
	}
	return nil
}

// judgeAggregate judges the note once its end has passed and every nested
// object is judged.
func (e *Engine) judgeAggregate(n *hold.Note, t float64) error {
	if n.Aggregate.Judged || t < n.EndTime || !n.AllNestedJudged() {
		return nil
	}
	res := ir.HitIgnoreMiss
	if n.AnyNestedHit() {
		res = ir.HitIgnoreHit
	}
	return e.judge(n, ir.AggregateIndex, res, ir.ActionNone, t)
}

func (e *Engine) judge(n *hold.Note, index int, res ir.HitResult, action ir.Action, at float64) error {
	obj, ok := n.Object(index)
	if !ok {
		return fmt.Errorf("note %d has no object %d", n.ID, index)
	}
	if err := obj.Judge(res, action, at); err != nil {
		return withNote(err, n, obj.Kind, index, at)
	}

	r := ir.JudgementResult{
		Seq:        e.clock.Next(),
		Note:       n.ID,
		Kind:       obj.Kind,
		Index:      index,
		ObjectTime: obj.Time,
		JudgedAt:   at,
		Type:       res,
		HitAction:  action,
	}
	e.combo.Apply(&r)

	id, err := ir.ResultID(e.sessionID, r)
	if err != nil {
		return err
	}
	r.ID = id
	return e.emit(r)
}
