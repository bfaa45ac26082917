package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/holdjudge/internal/ir"
)

// writeScenario writes yaml next to a copy of the test beatmap.
func writeScenario(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()

	src, err := os.ReadFile(filepath.Join("testdata", "beatmaps", "two_second_hold.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.cue"), src, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

const minimalScenario = `
name: minimal
description: "smallest valid scenario"
beatmap: map.cue
from: 0
to: 100
assertions:
  - type: result_count
    count: 0
`

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "released_before_tail.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "released_before_tail", s.Name)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "..", "beatmaps", "two_second_hold.cue"), s.Beatmap)
	assert.Equal(t, "golden-session", s.SessionID)
	assert.Equal(t, 10.0, s.FrameStep)
	assert.Equal(t, 900.0, s.From)
	assert.Equal(t, 3100.0, s.To)

	require.Len(t, s.Input, 3)
	require.NotNil(t, s.Input[0].Cursor)
	assert.Equal(t, Cursor{X: 256, Y: 192}, *s.Input[0].Cursor)
	assert.Equal(t, []string{"primary"}, s.Input[1].Keys)
	assert.Empty(t, s.Input[2].Keys)

	require.NotEmpty(t, s.Assertions)
	assert.Equal(t, AssertResult, s.Assertions[0].Type)
	require.NotNil(t, s.Assertions[1].Index)
	assert.Equal(t, 3, *s.Assertions[1].Index)
}

func TestLoadScenarioMinimal(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(s.Beatmap))
	assert.Empty(t, s.SessionID)
	assert.Zero(t, s.FrameStep)
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    minimalScenario + "assertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: `
description: d
beatmap: map.cue
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing beatmap file",
			yaml: `
name: n
description: d
beatmap: nope.cue
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "beatmap file not found",
		},
		{
			name: "no assertions",
			yaml: `
name: n
description: d
beatmap: map.cue
`,
			wantErr: "assertions list is required",
		},
		{
			name: "end before start",
			yaml: `
name: n
description: d
beatmap: map.cue
from: 100
to: 0
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "before from",
		},
		{
			name: "unknown key",
			yaml: `
name: n
description: d
beatmap: map.cue
input: [{at: 0, keys: [middle]}]
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "input[0]",
		},
		{
			name: "forward rewind",
			yaml: `
name: n
description: d
beatmap: map.cue
to: 100
rewinds: [{after: 10, to: 50}]
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "rewinds[0]",
		},
		{
			name: "unknown hit policy",
			yaml: `
name: n
description: d
beatmap: map.cue
hit_policy: touch
assertions: [{type: combo, expect: perfect}]
`,
			wantErr: "unknown hit policy",
		},
		{
			name: "tick without index",
			yaml: `
name: n
description: d
beatmap: map.cue
assertions: [{type: result, note: 0, kind: tick, expect: large_tick_hit}]
`,
			wantErr: "index is required",
		},
		{
			name: "unknown result name",
			yaml: `
name: n
description: d
beatmap: map.cue
assertions: [{type: result, note: 0, kind: head, expect: perfect}]
`,
			wantErr: "unknown hit result",
		},
		{
			name: "unknown combo name",
			yaml: `
name: n
description: d
beatmap: map.cue
assertions: [{type: combo, expect: great}]
`,
			wantErr: "unknown combo result",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: n
description: d
beatmap: map.cue
assertions: [{type: final_state}]
`,
			wantErr: "unknown assertion type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "scenarios", "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestScenarioSteps(t *testing.T) {
	s := &Scenario{
		From: 0,
		To:   40,
		Input: []Keyframe{
			{At: 0, Cursor: &Cursor{X: 1, Y: 2}},
			{At: 20, Keys: []string{"primary", "secondary"}},
		},
		Rewinds: []Rewind{{After: 30, To: 10}},
	}

	steps, err := s.Steps(0)
	require.NoError(t, err)

	var times []float64
	for _, st := range steps {
		times = append(times, st.Frame.Time)
	}
	assert.Equal(t, []float64{0, 10, 20, 30, 10, 20, 30, 40}, times)
	assert.True(t, steps[4].Rewind)
	assert.True(t, steps[5].Frame.Pressed.Has(ir.ActionSecondary))
	assert.Equal(t, &ir.Vector2{X: 1, Y: 2}, steps[7].Frame.Cursor)
}

func TestScenarioStepsFrameStep(t *testing.T) {
	s := &Scenario{From: 0, To: 100}

	steps, err := s.Steps(50)
	require.NoError(t, err)
	assert.Len(t, steps, 3, "fallback step")

	s.FrameStep = 25
	steps, err = s.Steps(50)
	require.NoError(t, err)
	assert.Len(t, steps, 5, "scenario step wins")

	steps, err = (&Scenario{From: 0, To: 100}).Steps(0)
	require.NoError(t, err)
	assert.Len(t, steps, 11, "default step")
}
