package ecs

import "math"

// slot is one entry of the generational entity table.
type slot struct {
	generation uint32
	loc        Location
	live       bool
}

// allocator maps entity handles to their current storage location through a
// recycling slot pool. Generations are bumped on free, so handles issued
// before a despawn can never alias the slot's next occupant.
type allocator struct {
	slots []slot
	free  []uint32
}

// alloc returns a fresh handle. The caller is responsible for placing the
// entity in an archetype and recording the location via relocate.
func (a *allocator) alloc() (Entity, error) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.live = true
		return Entity{index: idx, generation: s.generation}, nil
	}
	if len(a.slots) > math.MaxUint32 {
		return Entity{}, EntityLimitError{}
	}
	a.slots = append(a.slots, slot{generation: 1, live: true})
	idx := uint32(len(a.slots) - 1)
	return Entity{index: idx, generation: 1}, nil
}

// release invalidates the handle, bumps the slot generation and recycles the
// slot. After 2^32 despawns of one slot the generation wraps; handles from
// exactly one full cycle ago become ambiguous, which callers holding handles
// that long must account for.
func (a *allocator) release(e Entity) error {
	s, err := a.lookup(e)
	if err != nil {
		return err
	}
	s.live = false
	s.generation++
	if s.generation == 0 {
		// Keep generation 0 reserved for the never-issued handle.
		s.generation = 1
	}
	s.loc = Location{}
	a.free = append(a.free, e.index)
	return nil
}

// locate returns the entity's current archetype and row.
func (a *allocator) locate(e Entity) (Location, error) {
	s, err := a.lookup(e)
	if err != nil {
		return Location{}, err
	}
	return s.loc, nil
}

// relocate updates the location record. Called on spawn and on every
// archetype transition, including swap-remove victim patching.
func (a *allocator) relocate(e Entity, loc Location) {
	s, err := a.lookup(e)
	invariant(err == nil, "relocate of invalid entity")
	s.loc = loc
}

func (a *allocator) valid(e Entity) bool {
	_, err := a.lookup(e)
	return err == nil
}

func (a *allocator) lookup(e Entity) (*slot, error) {
	if int(e.index) >= len(a.slots) {
		return nil, UnknownEntityError{Entity: e}
	}
	s := &a.slots[e.index]
	if !s.live || s.generation != e.generation {
		return nil, StaleEntityError{Entity: e}
	}
	return s, nil
}

// liveCount returns the number of live slots.
func (a *allocator) liveCount() int {
	return len(a.slots) - len(a.free)
}
