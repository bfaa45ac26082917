package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/holdjudge/internal/beatmap"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                      `json:"valid"`
	Beatmap string                    `json:"beatmap"`
	Holds   int                       `json:"holds"`
	Errors  []beatmap.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <beatmap.cue>",
		Short: "Validate a beatmap",
		Long: `Check a CUE beatmap against the schema and the semantic rules
(difficulty ranges, hold ordering, timing coverage).

Exit codes:
  0 - Beatmap is valid
  1 - Schema or semantic errors
  2 - Beatmap file not readable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	bm, err := beatmap.Load(path)
	if err != nil {
		var cerr *beatmap.CompileError
		if errors.As(err, &cerr) {
			line := 0
			if cerr.Pos.IsValid() {
				line = cerr.Pos.Line()
			}
			return outputValidationErrors(f, path, 0, []beatmap.ValidationError{{
				Field:   cerr.Field,
				Message: cerr.Message,
				Code:    ErrCodeSchema,
				Line:    line,
			}})
		}
		code := ErrCodeGeneric
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load beatmap", err)
	}
	f.VerboseLog("Loaded %s: %d hold(s), %d timing point(s)", path, len(bm.Holds), len(bm.Timing))

	if errs := beatmap.Validate(bm); len(errs) > 0 {
		return outputValidationErrors(f, path, len(bm.Holds), errs)
	}

	if f.JSON() {
		return f.Success(ValidationResult{Valid: true, Beatmap: path, Holds: len(bm.Holds)})
	}
	fmt.Fprintf(f.Writer, "✓ %s valid (%d holds)\n", path, len(bm.Holds))
	return nil
}

func outputValidationErrors(f *OutputFormatter, path string, holds int, errs []beatmap.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if f.JSON() {
		result := ValidationResult{Valid: false, Beatmap: path, Holds: holds, Errors: errs}
		if err := f.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return exitErr
}
