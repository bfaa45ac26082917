package testutil

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
)

// Keyframe is the input state from At until the next keyframe.
type Keyframe struct {
	At float64

	// Cursor nil keeps the previous cursor.
	Cursor *ir.Vector2
	Keys   ir.ActionSet
}

// Rewind jumps back to To on the first sampled frame at or after After.
type Rewind struct {
	After float64
	To    float64
}

// Script turns sparse keyframes into the dense step sequence a player
// would produce.
type Script struct {
	keyframes []Keyframe
	rewinds   []Rewind
}

// NewScript creates a script. Keyframes may be given in any order.
func NewScript(keyframes ...Keyframe) *Script {
	kf := slices.Clone(keyframes)
	slices.SortStableFunc(kf, func(a, b Keyframe) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &Script{keyframes: kf}
}

// WithRewind adds a rewind. Each rewind fires once.
func (s *Script) WithRewind(after, to float64) *Script {
	s.rewinds = append(s.rewinds, Rewind{After: after, To: to})
	return s
}

// FrameAt returns the held input state at t. Before the first keyframe
// nothing is pressed and the cursor is unknown.
func (s *Script) FrameAt(t float64) engine.Frame {
	f := engine.Frame{Time: t}
	for _, kf := range s.keyframes {
		if kf.At > t {
			break
		}
		if kf.Cursor != nil {
			c := *kf.Cursor
			f.Cursor = &c
		}
		f.Pressed = kf.Keys
	}
	return f
}

// Steps samples the script every step ms over [from, to], inserting the
// rewinds. After a rewind sampling resumes at the first sample past its
// target.
func (s *Script) Steps(from, to, step float64) ([]engine.Step, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("frame step must be positive, got %v", step)
	}
	if to < from {
		return nil, fmt.Errorf("end %v before start %v", to, from)
	}
	for _, rw := range s.rewinds {
		if rw.To >= rw.After || rw.To < from {
			return nil, fmt.Errorf("rewind to %v after %v must go back within [%v, %v]", rw.To, rw.After, from, rw.After)
		}
	}

	rewinds := slices.Clone(s.rewinds)
	slices.SortStableFunc(rewinds, func(a, b Rewind) int {
		switch {
		case a.After < b.After:
			return -1
		case a.After > b.After:
			return 1
		}
		return 0
	})
	fired := make([]bool, len(rewinds))

	var steps []engine.Step
	for k := 0; ; k++ {
		t := from + float64(k)*step
		if t > to {
			break
		}
		steps = append(steps, engine.Step{Frame: s.FrameAt(t)})

		for i, rw := range rewinds {
			if fired[i] || rw.After > t {
				continue
			}
			fired[i] = true
			steps = append(steps, engine.Step{Frame: s.FrameAt(rw.To), Rewind: true})
			k = int(math.Floor((rw.To - from) / step))
			break
		}
	}
	return steps, nil
}
