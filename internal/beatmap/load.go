package beatmap

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/holdjudge/internal/timing"
)

//go:embed schema.cue
var schemaSource string

// Load reads and compiles the beatmap at path.
func Load(path string) (*Beatmap, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read beatmap: %w", err)
	}
	b, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	b.Source = path
	return b, nil
}

// Parse compiles CUE source against the beatmap schema.
// filename is only used for error positions.
func Parse(src []byte, filename string) (*Beatmap, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("beatmap schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Beatmap")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(unified)
}

// Compile reads a schema-validated CUE value into a Beatmap.
func Compile(v cue.Value) (*Beatmap, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	b := &Beatmap{}
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	b.Name = name

	diff := v.LookupPath(cue.ParsePath("difficulty"))
	fields := []struct {
		path string
		dst  *float64
	}{
		{"circle_size", &b.Difficulty.CircleSize},
		{"overall_difficulty", &b.Difficulty.OverallDifficulty},
		{"tick_rate", &b.Difficulty.TickRate},
	}
	for _, f := range fields {
		if *f.dst, err = number(diff, f.path); err != nil {
			return nil, err
		}
	}

	b.Timing, err = parseTiming(v)
	if err != nil {
		return nil, err
	}
	b.Holds, err = parseHolds(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func parseTiming(v cue.Value) ([]timing.TimingPoint, error) {
	iter, err := v.LookupPath(cue.ParsePath("timing")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var points []timing.TimingPoint
	for iter.Next() {
		var p timing.TimingPoint
		if p.Time, err = number(iter.Value(), "time"); err != nil {
			return nil, err
		}
		if p.BeatLength, err = number(iter.Value(), "beat_length"); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func parseHolds(v cue.Value) ([]HoldDef, error) {
	iter, err := v.LookupPath(cue.ParsePath("holds")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var holds []HoldDef
	for iter.Next() {
		hv := iter.Value()
		var h HoldDef
		h.Pos = hv.Pos()
		for _, f := range []struct {
			path string
			dst  *float64
		}{
			{"start", &h.StartTime},
			{"end", &h.EndTime},
			{"x", &h.Position.X},
			{"y", &h.Position.Y},
		} {
			if *f.dst, err = number(hv, f.path); err != nil {
				return nil, err
			}
		}
		if h.NewCombo, err = hv.LookupPath(cue.ParsePath("new_combo")).Bool(); err != nil {
			return nil, formatCUEError(err)
		}
		holds = append(holds, h)
	}
	return holds, nil
}

// number reads an int or float field as float64.
func number(v cue.Value, path string) (float64, error) {
	f, err := v.LookupPath(cue.ParsePath(path)).Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// CompileError is a beatmap error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
