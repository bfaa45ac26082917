package timing

import (
	"math"

	"github.com/roach88/holdjudge/internal/ir"
)

// HitWindows are the half-widths of each head result tier in milliseconds.
type HitWindows struct {
	Great float64
	Ok    float64
	Meh   float64
	Miss  float64
}

// MissWindow is constant across overall difficulty.
const MissWindow = 400.0

// WindowsFor derives hit windows from overall difficulty.
func WindowsFor(od float64) HitWindows {
	return HitWindows{
		Great: Range(od, 80, 50, 20),
		Ok:    Range(od, 140, 100, 60),
		Meh:   Range(od, 200, 150, 100),
		Miss:  MissWindow,
	}
}

// ResultFor grades a press at offset ms from the object time (negative is early).
// HitNone means the press is outside every window and should be ignored.
func (w HitWindows) ResultFor(offset float64) ir.HitResult {
	abs := math.Abs(offset)
	switch {
	case abs <= w.Great:
		return ir.HitGreat
	case abs <= w.Ok:
		return ir.HitOk
	case abs <= w.Meh:
		return ir.HitMeh
	case abs <= w.Miss:
		return ir.HitMiss
	}
	return ir.HitNone
}

// CanBeHit reports whether a press at offset could still score.
func (w HitWindows) CanBeHit(offset float64) bool {
	return offset <= w.Meh
}
