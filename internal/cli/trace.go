package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	SessionID string
	Live      bool
}

// TraceResult is the JSON output of the trace command.
type TraceResult struct {
	SessionID string     `json:"session_id"`
	Name      string     `json:"name"`
	TraceHash string     `json:"trace_hash"`
	Events    ir.IRArray `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the judgement stream of a recorded session",
		Long: `Print the results and reverts of a recorded session in seq order.

With --live only the results that survived every rewind are printed.

Examples:
  holdjudge trace --session 0190a3f2-6c1e-7a4b-9d2e-3f4a5b6c7d8e
  holdjudge trace --session my-run --live --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session ID (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().BoolVar(&opts.Live, "live", false, "only results that were not reverted")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	sess, err := st.ReadSession(ctx, opts.SessionID)
	if err != nil {
		_ = f.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	events, err := readEvents(ctx, st, sess.ID, opts.Live)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	hash, err := ir.TraceHash(events)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash trace", err)
	}
	if !opts.Live && sess.TraceHash != "" && hash != sess.TraceHash {
		opts.Logger.Warn("stored trace does not match recorded hash",
			"session", sess.ID,
			"recorded", sess.TraceHash,
			"stored", hash,
		)
	}

	if f.JSON() {
		return f.Success(TraceResult{
			SessionID: sess.ID,
			Name:      sess.Name,
			TraceHash: hash,
			Events:    events,
		})
	}

	w := f.Writer
	fmt.Fprintf(w, "session %s  %s\n", sess.ID, sess.Name)
	fmt.Fprintf(w, "trace hash %s\n\n", hash)
	for _, ev := range events {
		obj, ok := ev.(ir.IRObject)
		if !ok {
			continue
		}
		fmt.Fprintln(w, formatEvent(obj))
	}
	return nil
}

func readEvents(ctx context.Context, st *store.Store, sessionID string, live bool) (ir.IRArray, error) {
	if !live {
		return st.ReadTrace(ctx, sessionID)
	}
	results, err := st.ReadLiveResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make(ir.IRArray, len(results))
	for i, r := range results {
		events[i] = r.ToIR()
	}
	return events, nil
}

// formatEvent renders one canonical event as a fixed-width line.
func formatEvent(obj ir.IRObject) string {
	seq, _ := obj.Int("seq")

	if obj.IsRevert() {
		at, _ := obj.Time("at_us")
		id, _ := obj.Str("result_id")
		return fmt.Sprintf("%5d  revert  %-14s at %-8g undoes %.12s", seq, "", at, id)
	}

	note, _ := obj.Int("note")
	kind, _ := obj.Str("kind")
	index, _ := obj.Int("index")
	typ, _ := obj.Str("type")
	at, _ := obj.Time("judged_at_us")
	combo, _ := obj.Str("combo_after_judgement")

	object := fmt.Sprintf("%d:%s#%d", note, kind, index)
	line := fmt.Sprintf("%5d  result  %-14s at %-8g %-16s combo %s",
		seq, object, at, typ, combo)
	if action, ok := obj.Str("hit_action"); ok {
		line += fmt.Sprintf("  [%s]", action)
	}
	return line
}
