package ir

import (
	"fmt"
	"strings"
)

// Action is a gameplay input action in the two-action input model.
type Action uint8

const (
	ActionNone Action = iota
	ActionPrimary
	ActionSecondary
)

// Actions lists the recognised actions in evaluation order.
var Actions = []Action{ActionPrimary, ActionSecondary}

// Other returns the complementary action. ActionNone has no complement.
func (a Action) Other() Action {
	switch a {
	case ActionPrimary:
		return ActionSecondary
	case ActionSecondary:
		return ActionPrimary
	default:
		return ActionNone
	}
}

func (a Action) String() string {
	switch a {
	case ActionPrimary:
		return "primary"
	case ActionSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// ParseAction parses the snake_case name of an action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "primary", "left", "z":
		return ActionPrimary, nil
	case "secondary", "right", "x":
		return ActionSecondary, nil
	case "none", "":
		return ActionNone, nil
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// ActionSet is the set of actions pressed during a frame.
type ActionSet uint8

// NewActionSet builds a set from individual actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

func (s ActionSet) Has(a Action) bool {
	if a == ActionNone {
		return false
	}
	return s&(1<<a) != 0
}

func (s ActionSet) With(a Action) ActionSet {
	if a == ActionNone {
		return s
	}
	return s | 1<<a
}

func (s ActionSet) Without(a Action) ActionSet {
	return s &^ (1 << a)
}

// Empty reports whether no action is pressed.
func (s ActionSet) Empty() bool {
	return s == 0
}

// Newly returns the actions in s that are not in prev.
func (s ActionSet) Newly(prev ActionSet) ActionSet {
	return s &^ prev
}

// Slice returns the pressed actions in evaluation order.
func (s ActionSet) Slice() []Action {
	var out []Action
	for _, a := range Actions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s ActionSet) String() string {
	names := make([]string, 0, 2)
	for _, a := range s.Slice() {
		names = append(names, a.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

// ToIR encodes the set as an array of action names.
func (s ActionSet) ToIR() IRArray {
	arr := IRArray{}
	for _, a := range s.Slice() {
		arr = append(arr, IRString(a.String()))
	}
	return arr
}
