package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/holdjudge/internal/hold"
	"github.com/roach88/holdjudge/internal/ir"
)

// ErrHalted is returned for every frame after an invariant violation.
var ErrHalted = errors.New("engine halted")

// withNote attaches note and object details to an invariant error.
func withNote(err error, n *hold.Note, kind ir.ObjectKind, index int, at float64) error {
	var ie *ir.InvariantError
	if !errors.As(err, &ie) {
		return err
	}
	if ie.Details == nil {
		ie.Details = make(map[string]string)
	}
	ie.Details["note"] = fmt.Sprintf("%d", n.ID)
	ie.Details["kind"] = kind.String()
	ie.Details["index"] = fmt.Sprintf("%d", index)
	ie.Details["time"] = fmt.Sprintf("%v", at)
	return err
}

// IsHalted reports whether err came from a halted engine.
func IsHalted(err error) bool {
	return errors.Is(err, ErrHalted)
}
