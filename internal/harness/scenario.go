package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/testutil"
)

// DefaultFrameStep is the sampling interval in ms when neither the scenario
// nor the caller sets one.
const DefaultFrameStep = 10.0

// Scenario is a scripted gameplay pass over one beatmap with assertions on
// the judgement stream it produces.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Beatmap is the CUE beatmap path, resolved against the scenario's
	// directory on load.
	Beatmap string `yaml:"beatmap"`

	// SessionID fixes result IDs. Empty uses testutil.DefaultSessionID.
	SessionID string `yaml:"session_id,omitempty"`

	// HitPolicy is "cursor" or "any". Empty defers to the caller.
	HitPolicy string `yaml:"hit_policy,omitempty"`

	// FrameStep in ms. Zero defers to the caller.
	FrameStep float64 `yaml:"frame_step,omitempty"`

	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`

	Input      []Keyframe  `yaml:"input"`
	Rewinds    []Rewind    `yaml:"rewinds,omitempty"`
	Assertions []Assertion `yaml:"assertions"`
}

// Keyframe is the input held from At until the next keyframe.
type Keyframe struct {
	At     float64  `yaml:"at"`
	Cursor *Cursor  `yaml:"cursor,omitempty"`
	Keys   []string `yaml:"keys,omitempty"`
}

// Cursor is a playfield position.
type Cursor struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Rewind seeks back to To on the first frame at or after After.
type Rewind struct {
	After float64 `yaml:"after"`
	To    float64 `yaml:"to"`
}

// Assertion checks the outcome of a scenario.
type Assertion struct {
	Type string `yaml:"type"`

	// Note is the note ID (used by result, tracking_at).
	Note int `yaml:"note,omitempty"`

	// Kind is head, tick, tail or note (used by result).
	Kind string `yaml:"kind,omitempty"`

	// Index selects a tick (used by result). Head, tail and note locate
	// their object without it.
	Index *int `yaml:"index,omitempty"`

	// Expect is a hit result name for result, a combo name for combo.
	Expect string `yaml:"expect,omitempty"`

	// HitAction is the expected head hit action (used by result).
	HitAction string `yaml:"hit_action,omitempty"`

	// At and Tracking are used by tracking_at.
	At       float64 `yaml:"at,omitempty"`
	Tracking bool    `yaml:"tracking,omitempty"`

	// Count is used by result_count and revert_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertResult      = "result"
	AssertTrackingAt  = "tracking_at"
	AssertCombo       = "combo"
	AssertResultCount = "result_count"
	AssertRevertCount = "revert_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if s.Beatmap != "" && !filepath.IsAbs(s.Beatmap) {
		s.Beatmap = filepath.Join(filepath.Dir(path), s.Beatmap)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Beatmap == "" {
		return fmt.Errorf("beatmap is required")
	}
	if _, err := os.Stat(s.Beatmap); os.IsNotExist(err) {
		return fmt.Errorf("beatmap file not found: %s", s.Beatmap)
	}
	if s.FrameStep < 0 {
		return fmt.Errorf("frame_step must be positive, got %v", s.FrameStep)
	}
	if s.To < s.From {
		return fmt.Errorf("to (%v) is before from (%v)", s.To, s.From)
	}
	if _, err := engine.ParseHitPolicy(s.HitPolicy); err != nil {
		return err
	}

	for i, kf := range s.Input {
		if _, err := parseKeys(kf.Keys); err != nil {
			return fmt.Errorf("input[%d]: %w", i, err)
		}
	}
	for i, rw := range s.Rewinds {
		if rw.To >= rw.After {
			return fmt.Errorf("rewinds[%d]: to (%v) must be before after (%v)", i, rw.To, rw.After)
		}
		if rw.To < s.From {
			return fmt.Errorf("rewinds[%d]: to (%v) is before from (%v)", i, rw.To, s.From)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertResult:
		kind, err := ir.ParseObjectKind(a.Kind)
		if err != nil {
			return fmt.Errorf("assertions[%d]: kind must be head, tick, tail or note", index)
		}
		if kind == ir.KindTick && a.Index == nil {
			return fmt.Errorf("assertions[%d]: index is required for tick results", index)
		}
		if _, err := ir.ParseHitResult(a.Expect); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.HitAction != "" {
			if _, err := ir.ParseAction(a.HitAction); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTrackingAt:
	case AssertCombo:
		if _, err := ir.ParseComboResult(a.Expect); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertResultCount, AssertRevertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func parseKeys(keys []string) (ir.ActionSet, error) {
	var set ir.ActionSet
	for _, k := range keys {
		a, err := ir.ParseAction(k)
		if err != nil {
			return 0, err
		}
		if a == ir.ActionNone {
			return 0, fmt.Errorf("key %q is not an action", k)
		}
		set = set.With(a)
	}
	return set, nil
}

// Script converts the scenario input into a testutil.Script.
func (s *Scenario) Script() (*testutil.Script, error) {
	keyframes := make([]testutil.Keyframe, len(s.Input))
	for i, kf := range s.Input {
		keys, err := parseKeys(kf.Keys)
		if err != nil {
			return nil, fmt.Errorf("input[%d]: %w", i, err)
		}
		keyframes[i] = testutil.Keyframe{At: kf.At, Keys: keys}
		if kf.Cursor != nil {
			keyframes[i].Cursor = &ir.Vector2{X: kf.Cursor.X, Y: kf.Cursor.Y}
		}
	}

	script := testutil.NewScript(keyframes...)
	for _, rw := range s.Rewinds {
		script.WithRewind(rw.After, rw.To)
	}
	return script, nil
}

// Steps samples the scenario. The scenario's frame step wins over
// fallback; a zero fallback means DefaultFrameStep.
func (s *Scenario) Steps(fallback float64) ([]engine.Step, error) {
	step := s.FrameStep
	if step == 0 {
		step = fallback
	}
	if step == 0 {
		step = DefaultFrameStep
	}

	script, err := s.Script()
	if err != nil {
		return nil, err
	}
	return script.Steps(s.From, s.To, step)
}
