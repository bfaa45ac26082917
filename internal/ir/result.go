package ir

import "fmt"

// HitResult is the outcome of judging one object.
type HitResult uint8

const (
	HitNone HitResult = iota
	HitMiss
	HitMeh
	HitOk
	HitGreat
	HitSmallTickMiss
	HitSmallTickHit
	HitLargeTickMiss
	HitLargeTickHit
	HitIgnoreMiss
	HitIgnoreHit
)

var hitResultNames = [...]string{
	HitNone:          "none",
	HitMiss:          "miss",
	HitMeh:           "meh",
	HitOk:            "ok",
	HitGreat:         "great",
	HitSmallTickMiss: "small_tick_miss",
	HitSmallTickHit:  "small_tick_hit",
	HitLargeTickMiss: "large_tick_miss",
	HitLargeTickHit:  "large_tick_hit",
	HitIgnoreMiss:    "ignore_miss",
	HitIgnoreHit:     "ignore_hit",
}

func (r HitResult) String() string {
	if int(r) < len(hitResultNames) {
		return hitResultNames[r]
	}
	return fmt.Sprintf("hit_result(%d)", r)
}

// ParseHitResult parses a snake_case result name.
func ParseHitResult(s string) (HitResult, error) {
	for i, name := range hitResultNames {
		if name == s {
			return HitResult(i), nil
		}
	}
	return HitNone, fmt.Errorf("unknown hit result %q", s)
}

// IsHit reports whether the result counts as a successful hit.
func (r HitResult) IsHit() bool {
	switch r {
	case HitMeh, HitOk, HitGreat, HitSmallTickHit, HitLargeTickHit, HitIgnoreHit:
		return true
	}
	return false
}

// ComboResult grades the cleanliness of a combo group. Ordered: Perfect > Good > None.
type ComboResult uint8

const (
	ComboNone ComboResult = iota
	ComboGood
	ComboPerfect
)

func (c ComboResult) String() string {
	switch c {
	case ComboGood:
		return "good"
	case ComboPerfect:
		return "perfect"
	default:
		return "none"
	}
}

// ParseComboResult parses a combo result name.
func ParseComboResult(s string) (ComboResult, error) {
	switch s {
	case "none":
		return ComboNone, nil
	case "good":
		return ComboGood, nil
	case "perfect":
		return ComboPerfect, nil
	}
	return ComboNone, fmt.Errorf("unknown combo result %q", s)
}

// ObjectKind tags the variants of a judged object.
type ObjectKind uint8

const (
	KindNote ObjectKind = iota
	KindHead
	KindTick
	KindTail
)

func (k ObjectKind) String() string {
	switch k {
	case KindHead:
		return "head"
	case KindTick:
		return "tick"
	case KindTail:
		return "tail"
	default:
		return "note"
	}
}

// ParseObjectKind parses an object kind name.
func ParseObjectKind(s string) (ObjectKind, error) {
	switch s {
	case "note":
		return KindNote, nil
	case "head":
		return KindHead, nil
	case "tick":
		return KindTick, nil
	case "tail":
		return KindTail, nil
	}
	return KindNote, fmt.Errorf("unknown object kind %q", s)
}

// AggregateIndex is the Index of a note-level result.
const AggregateIndex = -1

// JudgementResult is one entry of the judgement stream.
//
// ComboAtJudgement and ComboAfterJudgement bracket the combo processor's
// state so a revert can restore it without replaying the stream.
type JudgementResult struct {
	ID         string      `json:"id"`
	Seq        int64       `json:"seq"`
	Note       int         `json:"note"`
	Kind       ObjectKind  `json:"kind"`
	Index      int         `json:"index"`
	ObjectTime float64     `json:"object_time"`
	JudgedAt   float64     `json:"judged_at"`
	Type       HitResult   `json:"type"`
	HitAction  Action      `json:"hit_action"`
	ComboAt    ComboResult `json:"combo_at_judgement"`
	ComboAfter ComboResult `json:"combo_after_judgement"`
}

// ToIR encodes the result for canonical hashing. Times become microseconds.
func (r JudgementResult) ToIR() IRObject {
	obj := IRObject{
		"event":                 IRString("result"),
		"id":                    IRString(r.ID),
		"seq":                   IRInt(r.Seq),
		"note":                  IRInt(r.Note),
		"kind":                  IRString(r.Kind.String()),
		"index":                 IRInt(r.Index),
		"object_time_us":        IRInt(Micros(r.ObjectTime)),
		"judged_at_us":          IRInt(Micros(r.JudgedAt)),
		"type":                  IRString(r.Type.String()),
		"combo_at_judgement":    IRString(r.ComboAt.String()),
		"combo_after_judgement": IRString(r.ComboAfter.String()),
	}
	if r.HitAction != ActionNone {
		obj["hit_action"] = IRString(r.HitAction.String())
	}
	return obj
}

// Revert records that a result was undone by a rewind.
type Revert struct {
	Seq      int64   `json:"seq"`
	ResultID string  `json:"result_id"`
	At       float64 `json:"at"`
}

func (r Revert) ToIR() IRObject {
	return IRObject{
		"event":     IRString("revert"),
		"seq":       IRInt(r.Seq),
		"result_id": IRString(r.ResultID),
		"at_us":     IRInt(Micros(r.At)),
	}
}

// ObjectRef identifies a judged object: a note, or one of its sub-objects.
type ObjectRef struct {
	Note  int
	Index int
}

// Ref returns the object the result judged.
func (r JudgementResult) Ref() ObjectRef {
	return ObjectRef{Note: r.Note, Index: r.Index}
}
