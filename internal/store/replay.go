package store

import (
	"context"
	"fmt"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
)

// ReadTrace rebuilds the canonical trace of a session: results and reverts
// merged in seq order, exactly as the engine emitted them.
func (s *Store) ReadTrace(ctx context.Context, sessionID string) (ir.IRArray, error) {
	results, err := s.ReadResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	reverts, err := s.ReadReverts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	trace := make(ir.IRArray, 0, len(results)+len(reverts))
	i, j := 0, 0
	for i < len(results) || j < len(reverts) {
		if j == len(reverts) || (i < len(results) && results[i].Seq < reverts[j].Seq) {
			trace = append(trace, results[i].ToIR())
			i++
			continue
		}
		trace = append(trace, reverts[j].ToIR())
		j++
	}
	return trace, nil
}

// ReplayReport compares a stored session with a fresh re-simulation.
type ReplayReport struct {
	SessionID    string
	Steps        int
	RecordedHash string
	Verification *engine.Verification
}

// Match reports whether the re-simulation reproduced the recorded trace.
func (r *ReplayReport) Match() bool {
	return r.Verification != nil &&
		r.Verification.Deterministic &&
		r.Verification.TraceHash == r.RecordedHash
}

// Replay re-simulates a stored session with engines from build and compares
// the result with the recorded trace. build must scope result IDs to the
// stored session ID.
func (s *Store) Replay(ctx context.Context, sessionID string, build engine.Builder) (*ReplayReport, error) {
	if _, err := s.ReadSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	steps, err := s.ReadFrames(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	trace, err := s.ReadTrace(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	recorded, err := ir.TraceHash(trace)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	v, err := engine.Verify(ctx, build, steps)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	return &ReplayReport{
		SessionID:    sessionID,
		Steps:        len(steps),
		RecordedHash: recorded,
		Verification: v,
	}, nil
}
