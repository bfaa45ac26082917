// Package combo grades combo cleanliness from the judgement stream.
package combo

import (
	"github.com/roach88/holdjudge/internal/ir"
)

// Hierarchy answers structural questions about judged objects.
type Hierarchy interface {
	// Parent returns the object that owns ref, or false at a root.
	Parent(ref ir.ObjectRef) (ir.ObjectRef, bool)

	// FirstChild returns the first nested object of ref, or false for a leaf.
	FirstChild(ref ir.ObjectRef) (ir.ObjectRef, bool)

	// NewCombo reports whether the root object owning ref starts a new combo.
	NewCombo(ref ir.ObjectRef) bool
}

// Processor tracks the combo quality of the current combo group.
type Processor struct {
	tree    Hierarchy
	current ir.ComboResult
}

// NewProcessor returns a processor starting at Perfect.
func NewProcessor(tree Hierarchy) *Processor {
	return &Processor{tree: tree, current: ir.ComboPerfect}
}

// Current returns the combo quality so far.
func (p *Processor) Current() ir.ComboResult {
	return p.current
}

// Reset returns the processor to its initial state.
func (p *Processor) Reset() {
	p.current = ir.ComboPerfect
}

// Apply grades r and records the quality before and after on it.
func (p *Processor) Apply(r *ir.JudgementResult) {
	r.ComboAt = p.current

	if root, ok := p.newComboCandidate(r.Ref()); ok && p.tree.NewCombo(root) {
		p.current = ir.ComboPerfect
	}

	switch {
	case r.Type == ir.HitIgnoreMiss && r.Kind == ir.KindTail,
		r.Type == ir.HitSmallTickMiss,
		r.Type == ir.HitLargeTickMiss,
		r.Type == ir.HitOk:
		p.degrade(ir.ComboGood)
	case r.Type == ir.HitMeh, r.Type == ir.HitMiss:
		p.degrade(ir.ComboNone)
	}

	r.ComboAfter = p.current
}

// Revert restores the quality recorded when r was applied.
func (p *Processor) Revert(r ir.JudgementResult) {
	p.current = r.ComboAt
}

// newComboCandidate returns the root of ref if ref is the earliest leaf of
// that root: childless, and the first child at every level above it.
func (p *Processor) newComboCandidate(ref ir.ObjectRef) (ir.ObjectRef, bool) {
	if _, ok := p.tree.FirstChild(ref); ok {
		return ir.ObjectRef{}, false
	}
	for {
		parent, ok := p.tree.Parent(ref)
		if !ok {
			return ref, true
		}
		first, ok := p.tree.FirstChild(parent)
		if !ok || first != ref {
			return ir.ObjectRef{}, false
		}
		ref = parent
	}
}

func (p *Processor) degrade(c ir.ComboResult) {
	if c < p.current {
		p.current = c
	}
}
