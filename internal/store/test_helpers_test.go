package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/hold"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/timing"
)

const testSessionID = "0190a3f2-6c1e-7a4b-9d2e-3f4a5b6c7d8e"

// createTestStore opens a store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSession(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.CreateSession(context.Background(), Session{
		ID:          id,
		Name:        "two second hold",
		BeatmapPath: "testdata/two_second_hold.cue",
		BeatmapHash: "test-hash",
	}))
}

// testBuilder judges one 1000-3000ms hold at OD 10 with two ticks per beat.
func testBuilder(sessionID string, opts ...engine.Option) engine.Builder {
	return func() (*engine.Engine, error) {
		cp := timing.NewControlPoints(timing.TimingPoint{Time: 0, BeatLength: 1000})
		diff := timing.Difficulty{CircleSize: 5, OverallDifficulty: 10, TickRate: 2}
		n, err := hold.NewNote(context.Background(), 0, hold.Spec{
			StartTime: 1000,
			EndTime:   3000,
			Position:  ir.Vector2{X: 256, Y: 192},
			NewCombo:  true,
		}, cp, diff)
		if err != nil {
			return nil, err
		}
		arena := hold.NewArena()
		if _, err := arena.Add(n); err != nil {
			return nil, err
		}

		all := append([]engine.Option{
			engine.WithSessionID(sessionID),
			engine.WithMeter(noop.NewMeterProvider().Meter("test")),
		}, opts...)
		return engine.New(arena, timing.WindowsFor(10), all...)
	}
}

// testSteps holds primary from 1050 to 2900, rewinds to 2000 and plays the
// tail again.
func testSteps() []engine.Step {
	center := ir.Vector2{X: 256, Y: 192}
	frame := func(t float64) engine.Frame {
		c := center
		f := engine.Frame{Time: t, Cursor: &c}
		if t >= 1050 && t < 2900 {
			f.Pressed = ir.NewActionSet(ir.ActionPrimary)
		}
		return f
	}

	var steps []engine.Step
	for t := 900.0; t <= 3100; t += 10 {
		steps = append(steps, engine.Step{Frame: frame(t)})
	}
	steps = append(steps, engine.Step{Frame: frame(2000), Rewind: true})
	for t := 2010.0; t <= 3100; t += 10 {
		steps = append(steps, engine.Step{Frame: frame(t)})
	}
	return steps
}

// recordTestSession plays testSteps into a new session and returns the
// engine that produced it.
func recordTestSession(t *testing.T, s *Store, id string) *engine.Engine {
	t.Helper()
	ctx := context.Background()
	createTestSession(t, s, id)

	e, err := testBuilder(id, engine.WithSink(s.Recorder(ctx, id)))()
	require.NoError(t, err)

	steps := testSteps()
	require.NoError(t, s.WriteFrames(ctx, id, 0, steps))
	require.NoError(t, engine.Play(ctx, e, steps))

	hash, err := ir.TraceHash(e.Trace())
	require.NoError(t, err)
	require.NoError(t, s.FinishSession(ctx, id, hash))
	return e
}
