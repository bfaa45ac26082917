package beatmap

import (
	"fmt"
)

// Validation error codes (E200-E299)
const (
	ErrDifficultyRange = "E201" // difficulty value out of range
	ErrHoldReversed    = "E202" // hold ends before it starts
	ErrNoHolds         = "E203" // beatmap has no holds
	ErrNoTiming        = "E204" // holds but no timing points
	ErrHoldUnordered   = "E205" // holds not sorted by start time
)

// ValidationError is a semantic problem in a compiled beatmap.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate reports every semantic problem the schema cannot express.
func Validate(b *Beatmap) []ValidationError {
	var errs []ValidationError

	if err := b.Difficulty.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "difficulty",
			Message: err.Error(),
			Code:    ErrDifficultyRange,
		})
	}

	if len(b.Holds) == 0 {
		errs = append(errs, ValidationError{
			Field:   "holds",
			Message: "at least one hold is required",
			Code:    ErrNoHolds,
		})
	} else if len(b.Timing) == 0 {
		errs = append(errs, ValidationError{
			Field:   "timing",
			Message: "holds need at least one timing point",
			Code:    ErrNoTiming,
		})
	}

	for i, h := range b.Holds {
		field := fmt.Sprintf("holds[%d]", i)
		if h.EndTime < h.StartTime {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("end %v is before start %v", h.EndTime, h.StartTime),
				Code:    ErrHoldReversed,
				Line:    h.Pos.Line(),
			})
		}
		if i > 0 && h.StartTime < b.Holds[i-1].StartTime {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("start %v is before the previous hold's %v", h.StartTime, b.Holds[i-1].StartTime),
				Code:    ErrHoldUnordered,
				Line:    h.Pos.Line(),
			})
		}
	}
	return errs
}
