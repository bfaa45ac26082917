package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/roach88/holdjudge/internal/combo"
	"github.com/roach88/holdjudge/internal/hold"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/timing"
)

// Frame is the input state sampled for one forward frame.
type Frame struct {
	Time float64

	// Cursor is nil when no position is known.
	Cursor  *ir.Vector2
	Pressed ir.ActionSet
}

// Sink receives the judgement stream as it is produced.
// Sink errors do not stop a frame or a rewind: the engine finishes its state
// changes and then returns the errors joined. They never halt the engine.
type Sink interface {
	OnResult(r ir.JudgementResult) error
	OnRevert(rv ir.Revert) error
}

// Engine judges the hold notes of one gameplay pass.
//
// INVARIANTS:
//   - Forward frames never move time backwards; rewinds never move it forwards
//   - results holds the live stream in judgement order, reverted results removed
//   - Only the goroutine driving frames touches engine or note state
type Engine struct {
	arena     *hold.Arena
	windows   timing.HitWindows
	combo     *combo.Processor
	clock     *Clock
	sessionID string
	logger    *slog.Logger
	sink      Sink
	policy    HitPolicy
	meter     metric.Meter
	inst      *instruments

	current     float64
	started     bool
	lastPressed ir.ActionSet
	results     []ir.JudgementResult
	trace       ir.IRArray
	halted      error

	// sinkErrs collects sink failures of the frame or rewind in progress.
	sinkErrs []error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSink streams results and reverts to s.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithSessionID scopes result IDs to a session.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithMeter overrides the OpenTelemetry meter. Default is the global provider's.
func WithMeter(m metric.Meter) Option {
	return func(e *Engine) {
		e.meter = m
	}
}

// New creates an engine over the notes in arena.
func New(arena *hold.Arena, windows timing.HitWindows, opts ...Option) (*Engine, error) {
	e := &Engine{
		arena:     arena,
		windows:   windows,
		combo:     combo.NewProcessor(arena),
		clock:     NewClock(),
		policy:    CursorHitPolicy{},
		sessionID: "default",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.meter == nil {
		e.meter = meter()
	}

	inst, err := newInstruments(e.meter)
	if err != nil {
		return nil, fmt.Errorf("engine metrics: %w", err)
	}
	e.inst = inst
	return e, nil
}

// Advance processes one forward frame.
func (e *Engine) Advance(f Frame) error {
	if e.halted != nil {
		return fmt.Errorf("%w: %v", ErrHalted, e.halted)
	}
	if e.started && f.Time < e.current {
		return e.fail(ir.NewInvariantError(ir.CodeFrameOrder,
			"forward frame at %v precedes current time %v", f.Time, e.current))
	}
	e.current = f.Time
	e.started = true

	// A press is consumed by at most one head.
	newly := f.Pressed.Newly(e.lastPressed)
	e.lastPressed = f.Pressed

	for _, h := range e.arena.Live() {
		n, _ := e.arena.Get(h)
		if !e.active(n, f.Time) {
			continue
		}
		if err := e.updateNote(n, f, &newly); err != nil {
			if ir.IsInvariantError(err) {
				return e.finish(e.fail(err))
			}
			return e.finish(err)
		}
	}
	return e.finish(nil)
}

// RewindTo moves time back to t, reverting results judged after t and
// restoring each note's tracking from history.
func (e *Engine) RewindTo(t float64) error {
	if e.halted != nil {
		return fmt.Errorf("%w: %v", ErrHalted, e.halted)
	}
	if e.started && t > e.current {
		return e.fail(ir.NewInvariantError(ir.CodeFrameOrder,
			"rewind to %v is after current time %v", t, e.current))
	}

	for len(e.results) > 0 && e.results[len(e.results)-1].JudgedAt > t {
		r := e.results[len(e.results)-1]
		e.results = e.results[:len(e.results)-1]
		if err := e.revert(r, t); err != nil {
			if ir.IsInvariantError(err) {
				return e.finish(e.fail(err))
			}
			return e.finish(err)
		}
	}

	for _, h := range e.arena.Live() {
		n, _ := e.arena.Get(h)
		if err := n.Tracking.Rewind(t); err != nil {
			return e.finish(e.fail(withNote(err, n, ir.KindNote, ir.AggregateIndex, t)))
		}
	}

	e.current = t
	e.started = true
	return e.finish(nil)
}

// Step applies a recorded input step: a rewind or a forward frame.
func (e *Engine) Step(s Step) error {
	if s.Rewind {
		if err := e.RewindTo(s.Frame.Time); err != nil {
			return err
		}
		e.lastPressed = s.Frame.Pressed
		return nil
	}
	return e.Advance(s.Frame)
}

// Reset returns every note and the combo processor to their initial state.
// The logical clock keeps counting.
func (e *Engine) Reset() {
	for _, h := range e.arena.Live() {
		n, _ := e.arena.Get(h)
		n.Reset()
	}
	e.combo.Reset()
	e.current = 0
	e.started = false
	e.lastPressed = 0
	e.results = nil
	e.trace = nil
	e.halted = nil
	e.sinkErrs = nil
}

// Current returns the time of the last processed frame.
func (e *Engine) Current() float64 {
	return e.current
}

// SessionID returns the session results are scoped to.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Arena returns the notes being judged.
func (e *Engine) Arena() *hold.Arena {
	return e.arena
}

// Results returns a copy of the live judgement stream.
func (e *Engine) Results() []ir.JudgementResult {
	out := make([]ir.JudgementResult, len(e.results))
	copy(out, e.results)
	return out
}

// Trace returns every result and revert in the order they happened.
func (e *Engine) Trace() ir.IRArray {
	out := make(ir.IRArray, len(e.trace))
	copy(out, e.trace)
	return out
}

// ComboQuality returns the combo processor's current value.
func (e *Engine) ComboQuality() ir.ComboResult {
	return e.combo.Current()
}

// Tracking returns the tracking signal of a note.
func (e *Engine) Tracking(noteID int) (bool, bool) {
	n, ok := e.arena.Lookup(noteID)
	if !ok {
		return false, false
	}
	return n.Tracking.Tracking(), true
}

// Halted returns the invariant violation that stopped the engine, if any.
func (e *Engine) Halted() error {
	return e.halted
}

func (e *Engine) fail(err error) error {
	e.halted = err
	e.logger.Error("invariant violation",
		"error", err,
		"time", e.current,
		"session", e.sessionID,
	)
	return err
}

func (e *Engine) emit(r ir.JudgementResult) error {
	e.results = append(e.results, r)
	e.trace = append(e.trace, r.ToIR())
	e.inst.recordResult(r)
	e.logger.Debug("judged",
		"note", r.Note,
		"kind", r.Kind.String(),
		"index", r.Index,
		"type", r.Type.String(),
		"at", r.JudgedAt,
		"combo", r.ComboAfter.String(),
		"seq", r.Seq,
	)
	if e.sink != nil {
		if err := e.sink.OnResult(r); err != nil {
			e.sinkErrs = append(e.sinkErrs, fmt.Errorf("sink result %d: %w", r.Seq, err))
		}
	}
	return nil
}

func (e *Engine) revert(r ir.JudgementResult, at float64) error {
	n, ok := e.arena.Lookup(r.Note)
	if !ok {
		return fmt.Errorf("revert seq %d: note %d not live", r.Seq, r.Note)
	}
	obj, ok := n.Object(r.Index)
	if !ok {
		return fmt.Errorf("revert seq %d: note %d has no object %d", r.Seq, r.Note, r.Index)
	}
	obj.Revert()
	e.combo.Revert(r)

	rv := ir.Revert{Seq: e.clock.Next(), ResultID: r.ID, At: at}
	e.trace = append(e.trace, rv.ToIR())
	e.inst.recordRevert(r)
	e.logger.Debug("reverted",
		"note", r.Note,
		"kind", r.Kind.String(),
		"index", r.Index,
		"at", at,
		"seq", rv.Seq,
	)
	if e.sink != nil {
		if err := e.sink.OnRevert(rv); err != nil {
			e.sinkErrs = append(e.sinkErrs, fmt.Errorf("sink revert %d: %w", rv.Seq, err))
		}
	}
	return nil
}

// finish ends a frame or rewind, joining err with the sink failures it
// collected.
func (e *Engine) finish(err error) error {
	errs := append(e.sinkErrs, err)
	e.sinkErrs = nil
	return errors.Join(errs...)
}
