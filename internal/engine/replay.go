package engine

// # Replay and Determinism
//
// Replay is not a special mode. A recorded session is a list of Steps and
// the same Advance/RewindTo path that judged it live judges it again.
//
// Two properties are checked by Verify:
//
// 1. Replay determinism
//
//	Two fresh engines fed the same steps produce byte-identical canonical
//	traces (results and reverts, seq numbers included). Compared by
//	ir.TraceHash.
//
// 2. Rewind stability
//
//	Playing forward to the end, rewinding to a midpoint and replaying the
//	tail reproduces the same live results and tracking histories. Seq and
//	ID are excluded from that comparison because reverts consume seq
//	numbers.

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/tracking"
)

// Step is one recorded input step. A rewind step carries the input state at
// its target time, which becomes the previous frame for press detection.
type Step struct {
	Frame  Frame
	Rewind bool
}

// Builder creates a fresh engine over freshly built notes.
type Builder func() (*Engine, error)

// Play feeds steps to e in order, checking ctx between steps.
func Play(ctx context.Context, e *Engine, steps []Step) error {
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(s); err != nil {
			return fmt.Errorf("step %d at %v: %w", i, s.Frame.Time, err)
		}
	}
	return nil
}

// Verification is the outcome of Verify.
type Verification struct {
	TraceHash       string
	Results         int
	Reverts         int
	Deterministic   bool
	RewindStable    bool
	RewindCheckedAt float64
}

// Verify replays steps twice and checks rewind stability.
func Verify(ctx context.Context, build Builder, steps []Step) (*Verification, error) {
	first, err := playFresh(ctx, build, steps)
	if err != nil {
		return nil, err
	}
	second, err := playFresh(ctx, build, steps)
	if err != nil {
		return nil, err
	}

	h1, err := ir.TraceHash(first.Trace())
	if err != nil {
		return nil, err
	}
	h2, err := ir.TraceHash(second.Trace())
	if err != nil {
		return nil, err
	}

	v := &Verification{
		TraceHash:     h1,
		Results:       len(first.Results()),
		Deterministic: h1 == h2,
		RewindStable:  true,
	}
	for _, ev := range first.Trace() {
		if obj, ok := ev.(ir.IRObject); ok && obj.IsRevert() {
			v.Reverts++
		}
	}

	forward := forwardOnly(steps)
	if len(forward) < 2 {
		return v, nil
	}
	mid := forward[len(forward)/2]
	v.RewindCheckedAt = mid.Frame.Time

	rewound, err := playFresh(ctx, build, forward)
	if err != nil {
		return nil, err
	}
	want := snapshot(rewound)

	for round := 0; round < 2; round++ {
		rewind := Step{Frame: mid.Frame, Rewind: true}
		if err := rewound.Step(rewind); err != nil {
			return nil, fmt.Errorf("rewind check: %w", err)
		}
		var tail []Step
		for _, s := range forward {
			if s.Frame.Time > mid.Frame.Time {
				tail = append(tail, s)
			}
		}
		if err := Play(ctx, rewound, tail); err != nil {
			return nil, fmt.Errorf("rewind check replay: %w", err)
		}
		if !snapshot(rewound).equal(want) {
			v.RewindStable = false
			break
		}
	}
	return v, nil
}

func playFresh(ctx context.Context, build Builder, steps []Step) (*Engine, error) {
	e, err := build()
	if err != nil {
		return nil, err
	}
	if err := Play(ctx, e, steps); err != nil {
		return nil, err
	}
	return e, nil
}

// forwardOnly drops rewinds and any forward step they made stale, leaving
// the monotonic frame sequence a player without rewinds would produce.
func forwardOnly(steps []Step) []Step {
	out := make([]Step, 0, len(steps))
	last := math.Inf(-1)
	for _, s := range steps {
		if s.Rewind || s.Frame.Time < last {
			continue
		}
		out = append(out, s)
		last = s.Frame.Time
	}
	return out
}

type state struct {
	results  []ir.JudgementResult
	tracking map[int][]tracking.Entry
}

func snapshot(e *Engine) state {
	st := state{tracking: make(map[int][]tracking.Entry)}
	for _, r := range e.Results() {
		r.ID = ""
		r.Seq = 0
		st.results = append(st.results, r)
	}
	for _, h := range e.arena.Live() {
		n, _ := e.arena.Get(h)
		st.tracking[n.ID] = n.Tracking.History()
	}
	return st
}

func (s state) equal(o state) bool {
	if !slices.Equal(s.results, o.results) || len(s.tracking) != len(o.tracking) {
		return false
	}
	for id, hist := range s.tracking {
		if !slices.Equal(hist, o.tracking[id]) {
			return false
		}
	}
	return true
}
