package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/holdjudge/internal/engine"
	"github.com/roach88/holdjudge/internal/harness"
	"github.com/roach88/holdjudge/internal/store"
	"github.com/roach88/holdjudge/internal/testutil"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SessionID string

	// Sessions overrides session naming (for testing).
	// If nil, defaults to UUIDv7Generator.
	Sessions engine.SessionIDGenerator
}

// RunResult summarises a recorded scenario run.
type RunResult struct {
	Scenario  string   `json:"scenario"`
	SessionID string   `json:"session_id"`
	Database  string   `json:"database"`
	Results   int      `json:"results"`
	Reverts   int      `json:"reverts"`
	Combo     string   `json:"combo"`
	TraceHash string   `json:"trace_hash"`
	Pass      bool     `json:"pass"`
	Errors    []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a scenario and record the session",
		Long: `Play a scenario through the judging engine and record the session,
its input frames and the judgement stream in the database.

The recorded session can be checked later with replay and printed with
trace.

Exit codes:
  0 - Played, all assertions hold
  1 - Played, assertions failed
  2 - Command error (scenario or database not usable)
  3 - Engine invariant violation

Examples:
  holdjudge run --db ./holdjudge.db ./scenarios/hold.yaml
  holdjudge run ./scenarios/hold.yaml --session my-run --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session ID (default: new UUIDv7)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sessions := opts.Sessions
	switch {
	case opts.SessionID != "":
		sessions = testutil.NewFixedSessionGenerator(opts.SessionID)
	case sessions == nil:
		sessions = engine.UUIDv7Generator{}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := harness.Run(ctx, scenario,
		harness.WithStore(st),
		harness.WithSessionGenerator(sessions),
		harness.WithLogger(logger),
		harness.WithMeter(opts.meter()),
		harness.WithFrameStep(opts.Config.FrameStep),
		harness.WithHitPolicy(opts.Config.HitPolicy),
	)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return engineExitError(ExitCommandError, "scenario run failed", err)
	}

	out := RunResult{
		Scenario:  scenario.Name,
		SessionID: result.SessionID,
		Database:  opts.Database,
		Results:   len(result.Results),
		Reverts:   result.Reverts(),
		Combo:     result.Combo.String(),
		TraceHash: result.TraceHash,
		Pass:      result.Pass,
		Errors:    result.Errors,
	}

	if f.JSON() {
		if out.Pass {
			return f.Success(out)
		}
		if err := f.Failure("E_ASSERTION", fmt.Sprintf("%d assertion(s) failed", len(out.Errors)), out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "assertions failed")
	}

	w := f.Writer
	mark := "✓"
	if !out.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, out.Scenario)
	fmt.Fprintf(w, "  session:    %s\n", out.SessionID)
	fmt.Fprintf(w, "  results:    %d live, %d reverted\n", out.Results, out.Reverts)
	fmt.Fprintf(w, "  combo:      %s\n", out.Combo)
	fmt.Fprintf(w, "  trace hash: %s\n", out.TraceHash)
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if !out.Pass {
		return NewExitError(ExitFailure, "assertions failed")
	}
	return nil
}
