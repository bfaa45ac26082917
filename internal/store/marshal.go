package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/holdjudge/internal/ir"
)

// marshalPressed encodes a pressed set as canonical JSON TEXT, e.g.
// ["primary","secondary"].
func marshalPressed(s ir.ActionSet) (string, error) {
	data, err := ir.MarshalCanonical(s.ToIR())
	if err != nil {
		return "", fmt.Errorf("marshal pressed: %w", err)
	}
	return string(data), nil
}

func unmarshalPressed(data string) (ir.ActionSet, error) {
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return 0, fmt.Errorf("unmarshal pressed: %w", err)
	}
	var s ir.ActionSet
	for _, name := range names {
		a, err := ir.ParseAction(name)
		if err != nil {
			return 0, fmt.Errorf("unmarshal pressed: %w", err)
		}
		s = s.With(a)
	}
	return s, nil
}

// marshalCursor splits an optional cursor into nullable integer columns.
func marshalCursor(c *ir.Vector2) (x, y sql.NullInt64) {
	if c == nil {
		return x, y
	}
	return sql.NullInt64{Int64: ir.Micros(c.X), Valid: true},
		sql.NullInt64{Int64: ir.Micros(c.Y), Valid: true}
}

func unmarshalCursor(x, y sql.NullInt64) *ir.Vector2 {
	if !x.Valid || !y.Valid {
		return nil
	}
	return &ir.Vector2{X: ir.FromMicros(x.Int64), Y: ir.FromMicros(y.Int64)}
}

// resultColumns are the result fields stored as text names.
type resultColumns struct {
	kind       string
	typ        string
	hitAction  string
	comboAt    string
	comboAfter string
}

func marshalResultColumns(r ir.JudgementResult) resultColumns {
	return resultColumns{
		kind:       r.Kind.String(),
		typ:        r.Type.String(),
		hitAction:  r.HitAction.String(),
		comboAt:    r.ComboAt.String(),
		comboAfter: r.ComboAfter.String(),
	}
}

func (c resultColumns) unmarshal(r *ir.JudgementResult) error {
	var err error
	if r.Kind, err = ir.ParseObjectKind(c.kind); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if r.Type, err = ir.ParseHitResult(c.typ); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if r.HitAction, err = ir.ParseAction(c.hitAction); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if r.ComboAt, err = ir.ParseComboResult(c.comboAt); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if r.ComboAfter, err = ir.ParseComboResult(c.comboAfter); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}
