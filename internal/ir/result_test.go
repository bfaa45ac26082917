package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitResultNamesRoundTrip(t *testing.T) {
	for r := HitNone; r <= HitIgnoreHit; r++ {
		parsed, err := ParseHitResult(r.String())
		require.NoError(t, err, r.String())
		assert.Equal(t, r, parsed)
	}

	_, err := ParseHitResult("perfect")
	assert.Error(t, err)
}

func TestHitResultIsHit(t *testing.T) {
	hits := []HitResult{HitMeh, HitOk, HitGreat, HitSmallTickHit, HitLargeTickHit, HitIgnoreHit}
	misses := []HitResult{HitNone, HitMiss, HitSmallTickMiss, HitLargeTickMiss, HitIgnoreMiss}

	for _, r := range hits {
		assert.True(t, r.IsHit(), r.String())
	}
	for _, r := range misses {
		assert.False(t, r.IsHit(), r.String())
	}
}

func TestComboResultOrdering(t *testing.T) {
	assert.Greater(t, ComboPerfect, ComboGood)
	assert.Greater(t, ComboGood, ComboNone)

	c, err := ParseComboResult("good")
	require.NoError(t, err)
	assert.Equal(t, ComboGood, c)
}

func TestJudgementResultToIR(t *testing.T) {
	r := JudgementResult{
		Seq:        1,
		Kind:       KindHead,
		ObjectTime: 1000,
		JudgedAt:   1050.25,
		Type:       HitOk,
		HitAction:  ActionPrimary,
		ComboAt:    ComboPerfect,
		ComboAfter: ComboGood,
	}

	obj := r.ToIR()
	assert.Equal(t, IRInt(1000000), obj["object_time_us"])
	assert.Equal(t, IRInt(1050250), obj["judged_at_us"])
	assert.Equal(t, IRString("primary"), obj["hit_action"])
	assert.Equal(t, IRString("good"), obj["combo_after_judgement"])

	r.HitAction = ActionNone
	_, ok := r.ToIR()["hit_action"]
	assert.False(t, ok)
}

func TestActionSet(t *testing.T) {
	s := NewActionSet(ActionPrimary)
	assert.True(t, s.Has(ActionPrimary))
	assert.False(t, s.Has(ActionSecondary))
	assert.False(t, s.Has(ActionNone))

	both := s.With(ActionSecondary)
	assert.Equal(t, []Action{ActionPrimary, ActionSecondary}, both.Slice())
	assert.Equal(t, NewActionSet(ActionSecondary), both.Newly(s))
	assert.True(t, both.Without(ActionPrimary).Without(ActionSecondary).Empty())
	assert.Equal(t, "[primary,secondary]", both.String())

	assert.Equal(t, ActionSecondary, ActionPrimary.Other())
	assert.Equal(t, ActionPrimary, ActionSecondary.Other())
	assert.Equal(t, ActionNone, ActionNone.Other())
}

func TestInvariantErrorMatching(t *testing.T) {
	err := fmt.Errorf("frame 12: %w", NewInvariantError(CodeHistoryUnderflow, "note %d", 3))

	assert.True(t, errors.Is(err, ErrHistoryUnderflow))
	assert.False(t, errors.Is(err, ErrDoubleJudgement))
	assert.True(t, IsInvariantError(err))
	assert.False(t, IsInvariantError(errors.New("plain")))
	assert.Contains(t, err.Error(), "HISTORY_UNDERFLOW: note 3")
}

func TestMicros(t *testing.T) {
	assert.Equal(t, int64(1500000), Micros(1500))
	assert.Equal(t, int64(16667), Micros(16.6667))
	assert.Equal(t, 1500.0, FromMicros(1500000))
}

func TestIRObjectAccessors(t *testing.T) {
	rv := Revert{Seq: 7, ResultID: "abc", At: 2000}.ToIR()

	assert.True(t, rv.IsRevert())
	seq, ok := rv.Int("seq")
	assert.True(t, ok)
	assert.Equal(t, int64(7), seq)
	at, ok := rv.Time("at_us")
	assert.True(t, ok)
	assert.Equal(t, 2000.0, at)
	id, _ := rv.Str("result_id")
	assert.Equal(t, "abc", id)

	_, ok = rv.Int("result_id")
	assert.False(t, ok, "wrong type")
	_, ok = rv.Str("missing")
	assert.False(t, ok)

	r := JudgementResult{Seq: 1, Type: HitGreat}.ToIR()
	assert.False(t, r.IsRevert())
}
