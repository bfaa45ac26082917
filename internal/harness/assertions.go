package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/store"
	"github.com/roach88/holdjudge/internal/tracking"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string

	// Results is the live stream, for context.
	Results []ir.JudgementResult
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nLive results:\n")
	for _, r := range e.Results {
		fmt.Fprintf(&buf, "  [%d] note %d %s#%d %s at %v\n",
			r.Seq, r.Note, r.Kind, r.Index, r.Type, r.JudgedAt)
	}
	return buf.String()
}

// findResult locates the live result of the object an assertion names.
func findResult(results []ir.JudgementResult, a Assertion) (ir.JudgementResult, bool) {
	kind, _ := ir.ParseObjectKind(a.Kind)
	for _, r := range results {
		if r.Note != a.Note || r.Kind != kind {
			continue
		}
		if a.Index != nil && r.Index != *a.Index {
			continue
		}
		return r, true
	}
	return ir.JudgementResult{}, false
}

func describeObject(a Assertion) string {
	if a.Index != nil {
		return fmt.Sprintf("note %d %s#%d", a.Note, a.Kind, *a.Index)
	}
	return fmt.Sprintf("note %d %s", a.Note, a.Kind)
}

func assertResult(results []ir.JudgementResult, a Assertion) error {
	r, ok := findResult(results, a)
	if !ok {
		return &AssertionError{
			Type:     AssertResult,
			Expected: fmt.Sprintf("%s judged %s", describeObject(a), a.Expect),
			Actual:   "no live result",
			Results:  results,
		}
	}

	if r.Type.String() != a.Expect {
		return &AssertionError{
			Type:     AssertResult,
			Expected: fmt.Sprintf("%s judged %s", describeObject(a), a.Expect),
			Actual:   fmt.Sprintf("%s at %v", r.Type, r.JudgedAt),
			Results:  results,
		}
	}

	if a.HitAction != "" {
		want, _ := ir.ParseAction(a.HitAction)
		if r.HitAction != want {
			return &AssertionError{
				Type:     AssertResult,
				Expected: fmt.Sprintf("%s hit with %s", describeObject(a), want),
				Actual:   fmt.Sprintf("hit with %s", r.HitAction),
				Results:  results,
			}
		}
	}
	return nil
}

// trackingAt mirrors tracking.Machine.TrackingAt over a copied history.
func trackingAt(history []tracking.Entry, t float64) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Time <= t {
			return history[i].Tracking
		}
	}
	return false
}

func assertTrackingAt(result *Result, a Assertion) error {
	history, ok := result.Tracking[a.Note]
	if !ok {
		return &AssertionError{
			Type:     AssertTrackingAt,
			Expected: fmt.Sprintf("note %d tracking history", a.Note),
			Actual:   "no such note",
			Results:  result.Results,
		}
	}
	if got := trackingAt(history, a.At); got != a.Tracking {
		return &AssertionError{
			Type:     AssertTrackingAt,
			Expected: fmt.Sprintf("note %d tracking=%t at %v", a.Note, a.Tracking, a.At),
			Actual:   fmt.Sprintf("tracking=%t, history %v", got, history),
			Results:  result.Results,
		}
	}
	return nil
}

func assertCombo(result *Result, a Assertion) error {
	if result.Combo.String() != a.Expect {
		return &AssertionError{
			Type:     AssertCombo,
			Expected: fmt.Sprintf("combo %s", a.Expect),
			Actual:   fmt.Sprintf("combo %s", result.Combo),
			Results:  result.Results,
		}
	}
	return nil
}

func assertResultCount(results []ir.JudgementResult, a Assertion) error {
	if len(results) != a.Count {
		return &AssertionError{
			Type:     AssertResultCount,
			Expected: fmt.Sprintf("%d live results", a.Count),
			Actual:   fmt.Sprintf("%d live results", len(results)),
			Results:  results,
		}
	}
	return nil
}

// assertRevertCount reads the persisted reverts, so it also checks that
// the recorder saw every revert the engine emitted.
func assertRevertCount(ctx context.Context, st *store.Store, sessionID string, result *Result, a Assertion) error {
	reverts, err := st.ReadReverts(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("read reverts: %w", err)
	}
	if len(reverts) != a.Count {
		return &AssertionError{
			Type:     AssertRevertCount,
			Expected: fmt.Sprintf("%d stored reverts", a.Count),
			Actual:   fmt.Sprintf("%d stored reverts", len(reverts)),
			Results:  result.Results,
		}
	}
	return nil
}

// AssertionContext provides what store-backed assertions need.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	SessionID string
}

// EvaluateAssertions checks every assertion and returns the failure
// messages. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertResult:
			err = assertResult(result.Results, a)
		case AssertTrackingAt:
			err = assertTrackingAt(result, a)
		case AssertCombo:
			err = assertCombo(result, a)
		case AssertResultCount:
			err = assertResultCount(result.Results, a)
		case AssertRevertCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: revert_count requires a store", i)
			} else {
				err = assertRevertCount(actx.Ctx, actx.Store, actx.SessionID, result, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
