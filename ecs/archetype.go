package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
)

// ArchetypeID identifies one archetype within a world. IDs follow creation
// order, are never reused, and stay stable for the world's lifetime, so
// collaborators may cache matched archetype lists across frames.
type ArchetypeID uint32

// archetype stores every entity owning exactly one set of component types:
// one dense column per type, a parallel entity list giving each row's owner,
// and lazily cached transition edges.
type archetype struct {
	id       ArchetypeID
	mask     mask.Mask
	types    []*ComponentType // sorted by ComponentID
	columns  []*column        // parallel to types
	colIndex *intmap.Map[ComponentID, int]
	entities []Entity
	edges    edges
}

// newArchetype builds the archetype for a canonical (sorted, deduplicated)
// descriptor list.
func newArchetype(id ArchetypeID, types []*ComponentType) *archetype {
	a := &archetype{
		id:       id,
		types:    types,
		columns:  make([]*column, len(types)),
		colIndex: intmap.New[ComponentID, int](len(types)),
	}
	for i, ct := range types {
		a.mask.Mark(uint32(ct.id))
		a.columns[i] = newColumn(ct)
		a.colIndex.Put(ct.id, i)
	}
	return a
}

// column returns the column holding the given component type, if present.
func (a *archetype) column(id ComponentID) (*column, bool) {
	i, ok := a.colIndex.Get(id)
	if !ok {
		return nil, false
	}
	return a.columns[i], true
}

func (a *archetype) contains(id ComponentID) bool {
	_, ok := a.colIndex.Get(id)
	return ok
}

// rows returns the entity count; every column has exactly this length.
func (a *archetype) rows() int {
	return len(a.entities)
}

// checkColumns panics if the column lengths have diverged from the entity
// list. Called on the mutation paths that rearrange rows.
func (a *archetype) checkColumns() {
	for _, c := range a.columns {
		invariant(c.len == len(a.entities), "column length diverged from entity list")
	}
}

// swapRemoveEntity removes row from the entity list, returning the entity
// that was swapped into its place, if any. Column rows are handled by the
// caller, column by column.
func (a *archetype) swapRemoveEntity(row int) (moved Entity, ok bool) {
	last := len(a.entities) - 1
	invariant(row >= 0 && row <= last, "entity row out of range")
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
		ok = true
	}
	a.entities = a.entities[:last]
	return moved, ok
}
