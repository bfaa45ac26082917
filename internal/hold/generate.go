package hold

import (
	"context"
	"math"

	"github.com/roach88/holdjudge/internal/ir"
)

// TailGuard keeps the last interior tick at least this far before the tail.
const TailGuard = 10.0

// Generate returns the ordered sub-objects of a hold spanning [start, end].
//
// The sequence is one head at start, floor((end-start-TailGuard)/tickInterval)
// interior ticks at start+k*tickInterval, and a tail at end. Tick times are
// computed from k rather than accumulated. ctx is checked on every tick; a
// cancelled generation returns no partial sequence.
func Generate(ctx context.Context, start, end, tickInterval float64) ([]SubObject, error) {
	if !(tickInterval > 0) {
		return nil, ir.NewInvariantError(ir.CodeInvalidTickInterval,
			"tick interval %v must be positive", tickInterval)
	}

	ticks := 0
	if n := math.Floor((end - start - TailGuard) / tickInterval); n > 0 {
		ticks = int(n)
	}

	nested := make([]SubObject, 0, ticks+2)
	nested = append(nested, SubObject{Kind: ir.KindHead, Time: start})
	for k := 1; k <= ticks; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nested = append(nested, SubObject{Kind: ir.KindTick, Time: start + float64(k)*tickInterval})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return append(nested, SubObject{Kind: ir.KindTail, Time: end}), nil
}
