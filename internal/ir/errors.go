package ir

import (
	"errors"
	"fmt"
)

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// CodeHistoryUnderflow indicates a rewind emptied a tracking history.
	CodeHistoryUnderflow InvariantCode = "HISTORY_UNDERFLOW"

	// CodeDoubleJudgement indicates a sub-object was judged twice without a revert.
	CodeDoubleJudgement InvariantCode = "DOUBLE_JUDGEMENT"

	// CodeInvalidTickInterval indicates a non-positive tick interval at generation.
	CodeInvalidTickInterval InvariantCode = "INVALID_TICK_INTERVAL"

	// CodeFrameOrder indicates a frame moved time in the wrong direction.
	CodeFrameOrder InvariantCode = "FRAME_ORDER"
)

// Sentinels for errors.Is matching against an InvariantError's code.
var (
	ErrHistoryUnderflow    = &InvariantError{Code: CodeHistoryUnderflow}
	ErrDoubleJudgement     = &InvariantError{Code: CodeDoubleJudgement}
	ErrInvalidTickInterval = &InvariantError{Code: CodeInvalidTickInterval}
	ErrFrameOrder          = &InvariantError{Code: CodeFrameOrder}
)

// InvariantError reports state corruption. It is never a gameplay outcome:
// the frame that produced it must not be trusted and the caller should halt
// or reset.
type InvariantError struct {
	Code    InvariantCode
	Message string
	Details map[string]string
}

func (e *InvariantError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any InvariantError with the same code.
func (e *InvariantError) Is(target error) bool {
	t, ok := target.(*InvariantError)
	return ok && t.Code == e.Code
}

// NewInvariantError builds an InvariantError with a formatted message.
func NewInvariantError(code InvariantCode, format string, args ...any) *InvariantError {
	return &InvariantError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsInvariantError reports whether err wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
