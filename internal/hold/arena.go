package hold

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/holdjudge/internal/ir"
)

// ErrDuplicateNote is returned by Add for a note ID that is already live.
var ErrDuplicateNote = errors.New("duplicate note id")

// Handle addresses a note slot in an Arena. The generation makes handles to
// a recycled slot stale. The zero Handle is never valid.
type Handle struct {
	index int32
	gen   uint32
}

// Valid reports whether h was issued by an arena.
func (h Handle) Valid() bool {
	return h.gen != 0
}

type slot struct {
	note Note
	gen  uint32
	live bool
}

// Arena owns every live note of a gameplay pass.
type Arena struct {
	slots []slot
	free  []int32
	byID  map[int]Handle
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{byID: make(map[int]Handle)}
}

// Add stores n, reusing a released slot when one is available. Note IDs
// are unique among live notes.
func (a *Arena) Add(n Note) (Handle, error) {
	if _, ok := a.Lookup(n.ID); ok {
		return Handle{}, fmt.Errorf("add note %d: %w", n.ID, ErrDuplicateNote)
	}

	var idx int32
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = int32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.gen++
	s.live = true
	s.note = n

	h := Handle{index: idx, gen: s.gen}
	for i := range s.note.Nested {
		s.note.Nested[i].Note = h
	}
	s.note.Aggregate.Note = h
	a.byID[n.ID] = h
	return h, nil
}

// Get resolves h. It fails for released or stale handles.
func (a *Arena) Get(h Handle) (*Note, bool) {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.note, true
}

// Lookup resolves a note by its beatmap ID.
func (a *Arena) Lookup(id int) (*Note, bool) {
	h, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	return a.Get(h)
}

// Release resets the note's state and returns its slot to the pool.
// Sub-objects are cleared with the note; nothing else holds a reference.
func (a *Arena) Release(h Handle) bool {
	n, ok := a.Get(h)
	if !ok {
		return false
	}
	n.Reset()
	delete(a.byID, n.ID)

	s := &a.slots[h.index]
	s.live = false
	a.free = append(a.free, h.index)
	return true
}

// Len returns the number of live notes.
func (a *Arena) Len() int {
	return len(a.byID)
}

// Live returns handles of live notes ordered by start time, then ID.
func (a *Arena) Live() []Handle {
	handles := make([]Handle, 0, len(a.byID))
	for _, h := range a.byID {
		handles = append(handles, h)
	}
	slices.SortFunc(handles, func(x, y Handle) int {
		nx, ny := &a.slots[x.index].note, &a.slots[y.index].note
		if c := cmp.Compare(nx.StartTime, ny.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(nx.ID, ny.ID)
	})
	return handles
}

// Parent returns the owner of ref. Notes are roots.
func (a *Arena) Parent(ref ir.ObjectRef) (ir.ObjectRef, bool) {
	if ref.Index == ir.AggregateIndex {
		return ir.ObjectRef{}, false
	}
	return ir.ObjectRef{Note: ref.Note, Index: ir.AggregateIndex}, true
}

// FirstChild returns the first nested object of ref, or false for leaves.
func (a *Arena) FirstChild(ref ir.ObjectRef) (ir.ObjectRef, bool) {
	if ref.Index != ir.AggregateIndex {
		return ir.ObjectRef{}, false
	}
	n, ok := a.Lookup(ref.Note)
	if !ok || len(n.Nested) == 0 {
		return ir.ObjectRef{}, false
	}
	return ir.ObjectRef{Note: ref.Note, Index: 0}, true
}

// NewCombo reports the new-combo flag of the note owning ref.
func (a *Arena) NewCombo(ref ir.ObjectRef) bool {
	n, ok := a.Lookup(ref.Note)
	return ok && n.NewCombo
}
