package engine

import (
	"fmt"

	"github.com/roach88/holdjudge/internal/hold"
)

// HitPolicy decides whether a new press in frame f may judge the head of n.
// Time windows are checked separately.
type HitPolicy interface {
	CanHit(n *hold.Note, f Frame) bool
}

// CursorHitPolicy requires the cursor on the head. This is the default.
type CursorHitPolicy struct{}

func (CursorHitPolicy) CanHit(n *hold.Note, f Frame) bool {
	return n.InFollowArea(f.Cursor, false)
}

// AnyPositionHitPolicy accepts presses wherever the cursor is, as on input
// devices that report presses without a reliable pointer.
type AnyPositionHitPolicy struct{}

func (AnyPositionHitPolicy) CanHit(*hold.Note, Frame) bool {
	return true
}

// WithHitPolicy replaces the head hit policy.
func WithHitPolicy(p HitPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// ParseHitPolicy returns the policy for a configuration name: "cursor" or
// "any". Empty selects the default.
func ParseHitPolicy(name string) (HitPolicy, error) {
	switch name {
	case "", "cursor":
		return CursorHitPolicy{}, nil
	case "any":
		return AnyPositionHitPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown hit policy %q", name)
}
