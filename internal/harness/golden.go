package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/holdjudge/internal/ir"
)

// Snapshot is the canonical JSON compared against golden files: the
// scenario, its session, and the full result/revert stream.
func Snapshot(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(name),
		"session_id":    ir.IRString(result.SessionID),
		"trace":         result.Trace,
		"trace_hash":    ir.IRString(result.TraceHash),
	})
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), s)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
