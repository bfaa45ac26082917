package store

import (
	"context"
	"fmt"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
)

// Session describes one recorded gameplay pass.
type Session struct {
	ID            string
	Name          string
	BeatmapPath   string
	BeatmapHash   string
	HitPolicy     string
	EngineVersion string
	TraceVersion  string

	// TraceHash is empty until the session is finished.
	TraceHash string
}

// CreateSession inserts a new session. Empty versions default to the
// running engine's.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	if sess.EngineVersion == "" {
		sess.EngineVersion = ir.EngineVersion
	}
	if sess.TraceVersion == "" {
		sess.TraceVersion = ir.TraceVersion
	}
	if sess.HitPolicy == "" {
		sess.HitPolicy = "cursor"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, name, beatmap_path, beatmap_hash, hit_policy, engine_version, trace_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.Name,
		sess.BeatmapPath,
		sess.BeatmapHash,
		sess.HitPolicy,
		sess.EngineVersion,
		sess.TraceVersion,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinishSession records the trace hash of a completed session.
func (s *Store) FinishSession(ctx context.Context, id, traceHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET trace_hash = ? WHERE id = ?`, traceHash, id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// WriteFrames appends input steps starting at step number first.
func (s *Store) WriteFrames(ctx context.Context, sessionID string, first int, steps []engine.Step) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write frames: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frames
		(session_id, step, time_us, rewind, cursor_x_milli, cursor_y_milli, pressed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write frames: prepare: %w", err)
	}
	defer stmt.Close()

	for i, st := range steps {
		pressed, err := marshalPressed(st.Frame.Pressed)
		if err != nil {
			return fmt.Errorf("write frames: %w", err)
		}
		x, y := marshalCursor(st.Frame.Cursor)
		if _, err := stmt.ExecContext(ctx,
			sessionID,
			first+i,
			ir.Micros(st.Frame.Time),
			st.Rewind,
			x, y,
			pressed,
		); err != nil {
			return fmt.Errorf("write frames: step %d: %w", first+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write frames: commit: %w", err)
	}
	return nil
}

// WriteResult inserts a judgement result. Writing the same result twice is a
// no-op.
func (s *Store) WriteResult(ctx context.Context, sessionID string, r ir.JudgementResult) error {
	cols := marshalResultColumns(r)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results
		(id, session_id, seq, note, kind, idx, object_time_us, judged_at_us, type, hit_action, combo_at, combo_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		sessionID,
		r.Seq,
		r.Note,
		cols.kind,
		r.Index,
		ir.Micros(r.ObjectTime),
		ir.Micros(r.JudgedAt),
		cols.typ,
		cols.hitAction,
		cols.comboAt,
		cols.comboAfter,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// WriteRevert records that a rewind undid a result.
// The result must already be stored.
func (s *Store) WriteRevert(ctx context.Context, sessionID string, rv ir.Revert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reverts (session_id, seq, result_id, at_us)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		rv.Seq,
		rv.ResultID,
		ir.Micros(rv.At),
	)
	if err != nil {
		return fmt.Errorf("write revert: %w", err)
	}
	return nil
}

// Recorder streams an engine's output into a session.
type Recorder struct {
	ctx       context.Context
	store     *Store
	sessionID string
}

var _ engine.Sink = (*Recorder)(nil)

// Recorder returns a sink that writes results and reverts to sessionID.
// ctx bounds every write.
func (s *Store) Recorder(ctx context.Context, sessionID string) *Recorder {
	return &Recorder{ctx: ctx, store: s, sessionID: sessionID}
}

func (r *Recorder) OnResult(res ir.JudgementResult) error {
	return r.store.WriteResult(r.ctx, r.sessionID, res)
}

func (r *Recorder) OnRevert(rv ir.Revert) error {
	return r.store.WriteRevert(r.ctx, r.sessionID, rv)
}
