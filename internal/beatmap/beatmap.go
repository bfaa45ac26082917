package beatmap

import (
	"context"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/holdjudge/internal/hold"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/timing"
)

// Beatmap is a compiled hold-note beatmap.
type Beatmap struct {
	Name       string
	Difficulty timing.Difficulty
	Timing     []timing.TimingPoint
	Holds      []HoldDef

	// Source is the file the beatmap was loaded from, if any.
	Source string
}

// HoldDef is one hold as written in the beatmap. Its index in Holds is the
// note ID.
type HoldDef struct {
	hold.Spec
	Pos token.Pos
}

// ControlPoints returns the beatmap's timing context.
func (b *Beatmap) ControlPoints() *timing.ControlPoints {
	return timing.NewControlPoints(b.Timing...)
}

// Windows returns the head hit windows for the beatmap's overall difficulty.
func (b *Beatmap) Windows() timing.HitWindows {
	return timing.WindowsFor(b.Difficulty.OverallDifficulty)
}

// Build applies defaults to every hold and returns them in a fresh arena.
func (b *Beatmap) Build(ctx context.Context) (*hold.Arena, error) {
	cp := b.ControlPoints()
	arena := hold.NewArena()
	for i, h := range b.Holds {
		n, err := hold.NewNote(ctx, i, h.Spec, cp, b.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", b.label(), err)
		}
		if _, err := arena.Add(n); err != nil {
			return nil, fmt.Errorf("build %s: %w", b.label(), err)
		}
	}
	return arena, nil
}

func (b *Beatmap) label() string {
	switch {
	case b.Name != "":
		return b.Name
	case b.Source != "":
		return b.Source
	}
	return "beatmap"
}

// ToIR describes the beatmap canonically. Values are scaled by 1000 to
// integers; the source path is not part of the description.
func (b *Beatmap) ToIR() ir.IRObject {
	timingArr := make(ir.IRArray, len(b.Timing))
	for i, p := range b.Timing {
		timingArr[i] = ir.IRObject{
			"time_us":        ir.IRInt(ir.Micros(p.Time)),
			"beat_length_us": ir.IRInt(ir.Micros(p.BeatLength)),
		}
	}

	holds := make(ir.IRArray, len(b.Holds))
	for i, h := range b.Holds {
		holds[i] = ir.IRObject{
			"start_us":  ir.IRInt(ir.Micros(h.StartTime)),
			"end_us":    ir.IRInt(ir.Micros(h.EndTime)),
			"x_milli":   ir.IRInt(ir.Micros(h.Position.X)),
			"y_milli":   ir.IRInt(ir.Micros(h.Position.Y)),
			"new_combo": ir.IRBool(h.NewCombo),
		}
	}

	return ir.IRObject{
		"name": ir.IRString(b.Name),
		"difficulty": ir.IRObject{
			"circle_size_milli":        ir.IRInt(ir.Micros(b.Difficulty.CircleSize)),
			"overall_difficulty_milli": ir.IRInt(ir.Micros(b.Difficulty.OverallDifficulty)),
			"tick_rate_milli":          ir.IRInt(ir.Micros(b.Difficulty.TickRate)),
		},
		"timing": timingArr,
		"holds":  holds,
	}
}

// Hash is the content hash of the beatmap. Stored sessions record it so a
// replay can refuse a beatmap that changed.
func (b *Beatmap) Hash() (string, error) {
	return ir.BeatmapHash(b.ToIR())
}
