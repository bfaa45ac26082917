package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/holdjudge/internal/beatmap"
	"github.com/roach88/holdjudge/internal/timing"
)

// InspectResult describes a beatmap after defaults and generation.
type InspectResult struct {
	Name       string            `json:"name"`
	Hash       string            `json:"hash"`
	Difficulty timing.Difficulty `json:"difficulty"`
	Windows    InspectWindows    `json:"windows"`
	Notes      []InspectNote     `json:"notes"`
}

// InspectWindows are the head hit windows in ms.
type InspectWindows struct {
	Great float64 `json:"great"`
	Ok    float64 `json:"ok"`
	Meh   float64 `json:"meh"`
	Miss  float64 `json:"miss"`
}

// InspectNote is one built hold note.
type InspectNote struct {
	ID           int             `json:"id"`
	Start        float64         `json:"start"`
	End          float64         `json:"end"`
	NewCombo     bool            `json:"new_combo"`
	TickInterval float64         `json:"tick_interval"`
	Radius       float64         `json:"radius"`
	Objects      []InspectObject `json:"objects"`
}

// InspectObject is a generated head, tick or tail.
type InspectObject struct {
	Kind string  `json:"kind"`
	Time float64 `json:"time"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <beatmap.cue>",
		Short: "Show generated sub-objects of every hold",
		Long: `Build every hold of a beatmap and print its derived values: tick
interval, radius, hit windows and the generated head, ticks and tail.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := inspectBeatmap(cmd.Context(), path)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to inspect beatmap", err)
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	name := result.Name
	if name == "" {
		name = path
	}
	fmt.Fprintf(w, "%s (%.12s)\n", name, result.Hash)
	fmt.Fprintf(w, "CS %g  OD %g  tick rate %g\n",
		result.Difficulty.CircleSize, result.Difficulty.OverallDifficulty, result.Difficulty.TickRate)
	fmt.Fprintf(w, "windows: great ±%gms  ok ±%gms  meh ±%gms  miss ±%gms\n",
		result.Windows.Great, result.Windows.Ok, result.Windows.Meh, result.Windows.Miss)
	for _, n := range result.Notes {
		fmt.Fprintln(w)
		combo := ""
		if n.NewCombo {
			combo = "  new combo"
		}
		fmt.Fprintf(w, "note %d  %g-%g  tick %gms  radius %g%s\n",
			n.ID, n.Start, n.End, n.TickInterval, n.Radius, combo)
		for i, o := range n.Objects {
			fmt.Fprintf(w, "  [%d] %-4s %g\n", i, o.Kind, o.Time)
		}
	}
	return nil
}

func inspectBeatmap(ctx context.Context, path string) (*InspectResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	bm, err := beatmap.Load(path)
	if err != nil {
		return nil, err
	}
	hash, err := bm.Hash()
	if err != nil {
		return nil, err
	}
	arena, err := bm.Build(ctx)
	if err != nil {
		return nil, err
	}

	win := bm.Windows()
	result := &InspectResult{
		Name:       bm.Name,
		Hash:       hash,
		Difficulty: bm.Difficulty,
		Windows:    InspectWindows{Great: win.Great, Ok: win.Ok, Meh: win.Meh, Miss: win.Miss},
		Notes:      []InspectNote{},
	}
	for _, h := range arena.Live() {
		n, ok := arena.Get(h)
		if !ok {
			continue
		}
		note := InspectNote{
			ID:           n.ID,
			Start:        n.StartTime,
			End:          n.EndTime,
			NewCombo:     n.NewCombo,
			TickInterval: n.TickInterval,
			Radius:       n.Radius,
			Objects:      make([]InspectObject, len(n.Nested)),
		}
		for i, sub := range n.Nested {
			note.Objects[i] = InspectObject{Kind: sub.Kind.String(), Time: sub.Time}
		}
		result.Notes = append(result.Notes, note)
	}
	return result, nil
}
