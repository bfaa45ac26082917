package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/roach88/holdjudge/internal/beatmap"
	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/store"
	"github.com/roach88/holdjudge/internal/testutil"
)

type runConfig struct {
	store     *store.Store
	sessions  engine.SessionIDGenerator
	logger    *slog.Logger
	meter     metric.Meter
	frameStep float64
	hitPolicy string
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithStore records the session in st instead of a throwaway in-memory
// database.
func WithStore(st *store.Store) RunOption {
	return func(c *runConfig) {
		c.store = st
	}
}

// WithSessionGenerator names the session. By default the scenario's
// session_id is used.
func WithSessionGenerator(g engine.SessionIDGenerator) RunOption {
	return func(c *runConfig) {
		c.sessions = g
	}
}

// WithLogger passes a logger to the engine.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// WithMeter passes a meter to the engine.
func WithMeter(m metric.Meter) RunOption {
	return func(c *runConfig) {
		c.meter = m
	}
}

// WithFrameStep sets the sampling interval for scenarios that do not set
// their own.
func WithFrameStep(ms float64) RunOption {
	return func(c *runConfig) {
		c.frameStep = ms
	}
}

// WithHitPolicy sets the hit policy for scenarios that do not set their own.
func WithHitPolicy(name string) RunOption {
	return func(c *runConfig) {
		c.hitPolicy = name
	}
}

// Builder returns an engine.Builder over freshly built notes of bm.
// Every call yields an independent engine, as replay verification needs.
func Builder(bm *beatmap.Beatmap, sessionID string, opts ...engine.Option) engine.Builder {
	return func() (*engine.Engine, error) {
		arena, err := bm.Build(context.Background())
		if err != nil {
			return nil, err
		}
		all := append([]engine.Option{engine.WithSessionID(sessionID)}, opts...)
		return engine.New(arena, bm.Windows(), all...)
	}
}

// Run executes a scenario and evaluates its assertions.
//
// The session, its input frames and the judgement stream are recorded in
// the store. An engine invariant violation is returned as an error; failed
// assertions are reported in the Result.
func Run(ctx context.Context, s *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		meter:  noop.Meter{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sessions == nil {
		cfg.sessions = testutil.NewFixedSessionGenerator(s.SessionID)
	}

	bm, err := beatmap.Load(s.Beatmap)
	if err != nil {
		return nil, err
	}
	if verrs := beatmap.Validate(bm); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("invalid beatmap %s: %w", s.Beatmap, errors.Join(errs...))
	}
	beatmapHash, err := bm.Hash()
	if err != nil {
		return nil, err
	}

	policyName := s.HitPolicy
	if policyName == "" {
		policyName = cfg.hitPolicy
	}
	if policyName == "" {
		policyName = "cursor"
	}
	policy, err := engine.ParseHitPolicy(policyName)
	if err != nil {
		return nil, err
	}

	steps, err := s.Steps(cfg.frameStep)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	st := cfg.store
	if st == nil {
		st, err = store.Open(store.MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
	}

	beatmapPath, err := filepath.Abs(s.Beatmap)
	if err != nil {
		return nil, err
	}

	sessionID := cfg.sessions.Generate()
	if err := st.CreateSession(ctx, store.Session{
		ID:          sessionID,
		Name:        s.Name,
		BeatmapPath: beatmapPath,
		BeatmapHash: beatmapHash,
		HitPolicy:   policyName,
	}); err != nil {
		return nil, err
	}
	if err := st.WriteFrames(ctx, sessionID, 0, steps); err != nil {
		return nil, err
	}

	build := Builder(bm, sessionID,
		engine.WithHitPolicy(policy),
		engine.WithSink(st.Recorder(ctx, sessionID)),
		engine.WithLogger(cfg.logger),
		engine.WithMeter(cfg.meter),
	)
	e, err := build()
	if err != nil {
		return nil, err
	}
	if err := engine.Play(ctx, e, steps); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := NewResult()
	result.SessionID = sessionID
	result.Results = e.Results()
	result.Trace = e.Trace()
	result.Combo = e.ComboQuality()
	result.TraceHash, err = ir.TraceHash(result.Trace)
	if err != nil {
		return nil, err
	}
	if err := st.FinishSession(ctx, sessionID, result.TraceHash); err != nil {
		return nil, err
	}

	arena := e.Arena()
	for _, h := range arena.Live() {
		n, ok := arena.Get(h)
		if !ok {
			continue
		}
		result.Tracking[n.ID] = n.Tracking.History()
	}

	cfg.logger.Info("scenario played",
		"scenario", s.Name,
		"session", sessionID,
		"steps", len(steps),
		"results", len(result.Results),
		"trace_hash", result.TraceHash,
	)

	actx := &AssertionContext{Store: st, Ctx: ctx, SessionID: sessionID}
	for _, msg := range EvaluateAssertions(result, s.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}
