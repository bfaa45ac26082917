package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/holdjudge/internal/beatmap"
	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/harness"
	"github.com/roach88/holdjudge/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string `json:"session_id"`
	Name          string `json:"name"`
	Steps         int    `json:"steps"`
	Results       int    `json:"results"`
	Reverts       int    `json:"reverts"`
	RecordedHash  string `json:"recorded_hash"`
	ReplayedHash  string `json:"replayed_hash"`
	Deterministic bool   `json:"deterministic"`
	RewindStable  bool   `json:"rewind_stable"`
	Match         bool   `json:"match"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllMatch      bool                  `json:"all_match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate recorded sessions and verify determinism",
		Long: `Re-simulate recorded sessions from their stored input frames.

Each session is played twice on fresh engines and the trace hash compared
with the recorded one. A rewind check then plays to the end, rewinds to the
midpoint and replays, and the live results must be unchanged.

Exit codes:
  0 - Every session reproduced its recorded trace
  1 - A session diverged
  2 - Command error (database not found, beatmap changed, etc.)
  3 - Engine invariant violation during replay

Examples:
  holdjudge replay --db ./holdjudge.db
  holdjudge replay --db ./holdjudge.db --session 0190a3f2-6c1e-7a4b-9d2e-3f4a5b6c7d8e
  holdjudge replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []store.Session
	if opts.SessionID != "" {
		sess, err := st.ReadSession(ctx, opts.SessionID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []store.Session{sess}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions: len(sessions),
		AllMatch:      true,
	}

	for _, sess := range sessions {
		f.VerboseLog("Replaying session %s (%s)", sess.ID, sess.Name)
		sr, err := replaySession(ctx, st, sess, opts.Logger)
		if err != nil {
			return engineExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", sess.ID), err)
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Match {
			result.AllMatch = false
		}
	}

	if f.JSON() {
		if result.AllMatch {
			return f.Success(result)
		}
		if err := f.Failure("E_REPLAY_MISMATCH", "replay diverged from the recorded trace", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "replay verification failed")
	}

	return outputReplayText(f, result)
}

// openExisting opens a database that must already exist; store.Open would
// silently create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// replaySession rebuilds the session's engine from its beatmap and hit
// policy and re-simulates the stored frames.
func replaySession(ctx context.Context, st *store.Store, sess store.Session, logger *slog.Logger) (ReplaySessionResult, error) {
	bm, err := beatmap.Load(sess.BeatmapPath)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	hash, err := bm.Hash()
	if err != nil {
		return ReplaySessionResult{}, err
	}
	if hash != sess.BeatmapHash {
		return ReplaySessionResult{}, fmt.Errorf("beatmap %s changed since the session was recorded", sess.BeatmapPath)
	}
	policy, err := engine.ParseHitPolicy(sess.HitPolicy)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	report, err := st.Replay(ctx, sess.ID, harness.Builder(bm, sess.ID,
		engine.WithHitPolicy(policy),
		engine.WithLogger(logger),
	))
	if err != nil {
		return ReplaySessionResult{}, err
	}

	v := report.Verification
	return ReplaySessionResult{
		SessionID:     sess.ID,
		Name:          sess.Name,
		Steps:         report.Steps,
		Results:       v.Results,
		Reverts:       v.Reverts,
		RecordedHash:  report.RecordedHash,
		ReplayedHash:  v.TraceHash,
		Deterministic: v.Deterministic,
		RewindStable:  v.RewindStable,
		Match:         report.Match() && v.RewindStable,
	}, nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}

	for _, s := range result.Sessions {
		mark := "✓"
		if !s.Match {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, s.SessionID, s.Name)
		fmt.Fprintf(w, "  steps %d  results %d  reverts %d\n", s.Steps, s.Results, s.Reverts)
		if f.Verbose || !s.Match {
			fmt.Fprintf(w, "  recorded %s\n", s.RecordedHash)
			fmt.Fprintf(w, "  replayed %s\n", s.ReplayedHash)
			fmt.Fprintf(w, "  deterministic %t  rewind stable %t\n", s.Deterministic, s.RewindStable)
		}
	}

	fmt.Fprintln(w)
	if !result.AllMatch {
		fmt.Fprintln(w, "✗ Replay diverged")
		return NewExitError(ExitFailure, "replay verification failed")
	}
	fmt.Fprintf(w, "✓ %d session(s) replayed deterministically\n", result.TotalSessions)
	return nil
}
