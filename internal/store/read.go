package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession retrieves a session by ID.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, beatmap_path, beatmap_hash, hit_policy, engine_version, trace_version, trace_hash
		FROM sessions
		WHERE id = ?
	`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session ordered by ID. UUIDv7 IDs sort by
// creation time.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, beatmap_path, beatmap_hash, hit_policy, engine_version, trace_version, trace_hash
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess      Session
		traceHash sql.NullString
	)
	if err := row.Scan(
		&sess.ID,
		&sess.Name,
		&sess.BeatmapPath,
		&sess.BeatmapHash,
		&sess.HitPolicy,
		&sess.EngineVersion,
		&sess.TraceVersion,
		&traceHash,
	); err != nil {
		return Session{}, err
	}
	sess.TraceHash = traceHash.String
	return sess, nil
}

// ReadFrames returns the recorded input steps of a session in step order.
func (s *Store) ReadFrames(ctx context.Context, sessionID string) ([]engine.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time_us, rewind, cursor_x_milli, cursor_y_milli, pressed
		FROM frames
		WHERE session_id = ?
		ORDER BY step ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	steps := []engine.Step{}
	for rows.Next() {
		var (
			timeUS  int64
			rewind  bool
			x, y    sql.NullInt64
			pressed string
		)
		if err := rows.Scan(&timeUS, &rewind, &x, &y, &pressed); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		set, err := unmarshalPressed(pressed)
		if err != nil {
			return nil, err
		}
		steps = append(steps, engine.Step{
			Frame: engine.Frame{
				Time:    ir.FromMicros(timeUS),
				Cursor:  unmarshalCursor(x, y),
				Pressed: set,
			},
			Rewind: rewind,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return steps, nil
}

// ReadResults returns every result recorded for a session, reverted ones
// included, in seq order.
func (s *Store) ReadResults(ctx context.Context, sessionID string) ([]ir.JudgementResult, error) {
	return s.queryResults(ctx, `
		SELECT id, seq, note, kind, idx, object_time_us, judged_at_us, type, hit_action, combo_at, combo_after
		FROM results
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
}

// ReadLiveResults returns the results of a session that no rewind undid.
func (s *Store) ReadLiveResults(ctx context.Context, sessionID string) ([]ir.JudgementResult, error) {
	return s.queryResults(ctx, `
		SELECT r.id, r.seq, r.note, r.kind, r.idx, r.object_time_us, r.judged_at_us, r.type, r.hit_action, r.combo_at, r.combo_after
		FROM results r
		LEFT JOIN reverts v ON v.result_id = r.id
		WHERE r.session_id = ? AND v.result_id IS NULL
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, sessionID)
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]ir.JudgementResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []ir.JudgementResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func scanResult(row scanner) (ir.JudgementResult, error) {
	var (
		r        ir.JudgementResult
		cols     resultColumns
		objectUS int64
		judgedUS int64
	)
	if err := row.Scan(
		&r.ID,
		&r.Seq,
		&r.Note,
		&cols.kind,
		&r.Index,
		&objectUS,
		&judgedUS,
		&cols.typ,
		&cols.hitAction,
		&cols.comboAt,
		&cols.comboAfter,
	); err != nil {
		return ir.JudgementResult{}, fmt.Errorf("scan result: %w", err)
	}
	if err := cols.unmarshal(&r); err != nil {
		return ir.JudgementResult{}, err
	}
	r.ObjectTime = ir.FromMicros(objectUS)
	r.JudgedAt = ir.FromMicros(judgedUS)
	return r, nil
}

// ReadReverts returns the reverts of a session in seq order.
func (s *Store) ReadReverts(ctx context.Context, sessionID string) ([]ir.Revert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, result_id, at_us
		FROM reverts
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query reverts: %w", err)
	}
	defer rows.Close()

	reverts := []ir.Revert{}
	for rows.Next() {
		var (
			rv   ir.Revert
			atUS int64
		)
		if err := rows.Scan(&rv.Seq, &rv.ResultID, &atUS); err != nil {
			return nil, fmt.Errorf("scan revert: %w", err)
		}
		rv.At = ir.FromMicros(atUS)
		reverts = append(reverts, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reverts: %w", err)
	}
	return reverts, nil
}
