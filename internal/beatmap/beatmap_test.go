package beatmap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/timing"
)

func TestLoad(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "two_second_hold.cue"))
	require.NoError(t, err)

	assert.Equal(t, "two second hold", b.Name)
	assert.Equal(t, timing.Difficulty{CircleSize: 5, OverallDifficulty: 10, TickRate: 2}, b.Difficulty)
	assert.Equal(t, []timing.TimingPoint{{Time: 0, BeatLength: 1000}}, b.Timing)
	require.Len(t, b.Holds, 1)
	assert.Equal(t, 1000.0, b.Holds[0].StartTime)
	assert.Equal(t, 3000.0, b.Holds[0].EndTime)
	assert.Equal(t, ir.Vector2{X: 256, Y: 192}, b.Holds[0].Position)
	assert.True(t, b.Holds[0].NewCombo)
	assert.Empty(t, Validate(b))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.cue"))
	assert.ErrorContains(t, err, "read beatmap")
}

func TestParseAppliesDefaults(t *testing.T) {
	b, err := Parse([]byte(`
		timing: [{time: 0, beat_length: 500}]
		holds: [{start: 100, end: 900.5, x: 10, y: 20}]
	`), "defaults.cue")
	require.NoError(t, err)

	assert.Equal(t, "", b.Name)
	assert.Equal(t, timing.DefaultDifficulty(), b.Difficulty)
	assert.False(t, b.Holds[0].NewCombo)
	assert.Equal(t, 900.5, b.Holds[0].EndTime)
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `holds: [`},
		{"unknown field", `holds: [], tempo: 120`},
		{"beat length not positive", `timing: [{time: 0, beat_length: 0}], holds: []`},
		{"circle size out of range", `difficulty: circle_size: 11, holds: []`},
		{"hold missing end", `holds: [{start: 0, x: 0, y: 0}]`},
		{"position off playfield", `holds: [{start: 0, end: 10, x: 600, y: 0}]`},
		{"string time", `holds: [{start: "0", end: 10, x: 0, y: 0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
		})
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := Parse([]byte("holds: []\ntempo: 120\n"), "bad.cue")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "tempo")
}

func TestValidate(t *testing.T) {
	b, err := Parse([]byte(`
		holds: [
			{start: 2000, end: 1000, x: 0, y: 0},
			{start: 500, end: 600, x: 0, y: 0},
		]
	`), "semantic.cue")
	require.NoError(t, err)

	var codes []string
	for _, e := range Validate(b) {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{ErrNoTiming, ErrHoldReversed, ErrHoldUnordered}, codes)

	empty, err := Parse([]byte(`holds: []`), "empty.cue")
	require.NoError(t, err)
	errs := Validate(empty)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoHolds, errs[0].Code)
}

func TestBuild(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "two_second_hold.cue"))
	require.NoError(t, err)

	arena, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, arena.Len())

	n, ok := arena.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, 500.0, n.TickInterval)
	assert.Equal(t, 32.0, n.Radius)
	assert.Len(t, n.Nested, 5)
	assert.Equal(t, 20.0, b.Windows().Great)
}

func TestBuildRejectsReversedHold(t *testing.T) {
	b := &Beatmap{Name: "reversed", Difficulty: timing.DefaultDifficulty()}
	b.Holds = append(b.Holds, HoldDef{})
	b.Holds[0].StartTime = 10

	_, err := b.Build(context.Background())
	assert.ErrorContains(t, err, "build reversed")
}

func TestHash(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "two_second_hold.cue"))
	require.NoError(t, err)
	b, err := Parse([]byte(`
		holds: [{end: 3000, start: 1000, new_combo: true, y: 192, x: 256}]
		timing: [{beat_length: 1000, time: 0}]
		difficulty: {tick_rate: 2, overall_difficulty: 10}
		name: "two second hold"
	`), "reordered.cue")
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "field order and source path do not matter")

	b.Holds[0].EndTime = 3001
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}
