package ecs

import (
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// World owns the archetype set, the entity allocator and the tick clock, and
// is the only mutation surface. A World is single-threaded: exactly one
// goroutine may mutate it at a time, though independent Worlds can be driven
// concurrently.
type World struct {
	archetypes []*archetype // creation order; index == ArchetypeID
	byMask     map[mask.Mask]ArchetypeID
	alloc      allocator
	tick       Tick

	// activeQueries counts live query iterators; structural mutation and
	// tick advancement are rejected while it is non-zero.
	activeQueries int
}

// NewWorld creates an empty world. The empty-tuple archetype exists from
// creation; entities spawned without components land there.
func NewWorld() *World {
	w := &World{
		byMask: make(map[mask.Mask]ArchetypeID),
	}
	w.getOrCreateArchetype(nil)
	return w
}

// Spawn allocates a fresh entity with no components.
func (w *World) Spawn() (Entity, error) {
	if w.activeQueries > 0 {
		return Entity{}, ReentrantMutationError{}
	}
	e, err := w.alloc.alloc()
	if err != nil {
		return Entity{}, err
	}
	empty := w.archetypes[0]
	empty.entities = append(empty.entities, e)
	w.alloc.relocate(e, Location{Archetype: empty.id, Row: len(empty.entities) - 1})
	return e, nil
}

// SpawnWith allocates an entity holding all the given components, written in
// one step with no intermediate archetype transitions. Components may be
// passed as values or pointers. Fails with DuplicateComponentError if the
// same type appears twice and UnregisteredComponentError for unknown types.
func SpawnWith(w *World, components ...any) (Entity, error) {
	if w.activeQueries > 0 {
		return Entity{}, ReentrantMutationError{}
	}
	b, err := newBundle(components)
	if err != nil {
		return Entity{}, err
	}
	e, err := w.alloc.alloc()
	if err != nil {
		return Entity{}, err
	}
	w.placeBundle(e, b)
	return e, nil
}

// placeBundle writes a canonical bundle into its archetype for a freshly
// allocated entity.
func (w *World) placeBundle(e Entity, b bundle) {
	a := w.getOrCreateArchetype(b.types)
	for i, ct := range b.types {
		col, ok := a.column(ct.id)
		invariant(ok, "bundle archetype missing column")
		col.push(b.values[i], w.tick)
	}
	a.entities = append(a.entities, e)
	w.alloc.relocate(e, Location{Archetype: a.id, Row: len(a.entities) - 1})
	a.checkColumns()
}

// Despawn destroys the entity, dropping every component it holds. The last
// row of its archetype is swapped into the vacated slot and that entity's
// location patched. Outstanding handles become stale.
func (w *World) Despawn(e Entity) error {
	if w.activeQueries > 0 {
		return ReentrantMutationError{}
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return err
	}
	a := w.archetypes[loc.Archetype]
	for _, c := range a.columns {
		c.swapRemove(loc.Row)
	}
	if moved, ok := a.swapRemoveEntity(loc.Row); ok {
		w.alloc.relocate(moved, Location{Archetype: a.id, Row: loc.Row})
	}
	a.checkColumns()
	return w.alloc.release(e)
}

// Contains reports whether the handle names a live entity.
func (w *World) Contains(e Entity) bool {
	return w.alloc.valid(e)
}

// Locate returns the entity's current archetype and row. The row is only
// stable until the next structural mutation in that archetype.
func (w *World) Locate(e Entity) (Location, error) {
	return w.alloc.locate(e)
}

// ArchetypeTypes returns the component types stored by an archetype, in
// ComponentID order. Archetype ids are stable for the world's lifetime.
func (w *World) ArchetypeTypes(id ArchetypeID) []reflect.Type {
	invariant(int(id) < len(w.archetypes), "archetype id out of range")
	a := w.archetypes[id]
	types := make([]reflect.Type, len(a.types))
	for i, ct := range a.types {
		types[i] = ct.typ
	}
	return types
}

// Add attaches value to the entity, relocating it along the Add edge of the
// archetype graph. If the entity already has a T the value is overwritten in
// place: changed is stamped with the current tick, added is preserved, and
// no transition happens. Ticks of pre-existing components are untouched.
func Add[T any](w *World, e Entity, value T) error {
	ct, ok := typeFor[T]()
	if !ok {
		return UnregisteredComponentError{Type: reflect.TypeFor[T]()}
	}
	return w.addErased(e, ct, unsafe.Pointer(&value))
}

func (w *World) addErased(e Entity, ct *ComponentType, src unsafe.Pointer) error {
	if w.activeQueries > 0 {
		return ReentrantMutationError{}
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return err
	}
	a := w.archetypes[loc.Archetype]
	if col, ok := a.column(ct.id); ok {
		col.replace(src, loc.Row, w.tick)
		return nil
	}

	dst := w.archetypeWithAdded(a, ct)
	for i, c := range a.columns {
		dc, ok := dst.column(a.types[i].id)
		invariant(ok, "add transition lost a column")
		c.moveRowTo(dc, loc.Row)
	}
	newCol, ok := dst.column(ct.id)
	invariant(ok, "add transition missing new column")
	newCol.push(src, w.tick)
	dst.entities = append(dst.entities, e)

	w.vacateRow(a, loc.Row)
	w.alloc.relocate(e, Location{Archetype: dst.id, Row: len(dst.entities) - 1})
	a.checkColumns()
	dst.checkColumns()
	return nil
}

// Remove detaches T from the entity and returns its value. Absence is not an
// error: the second return is false when the entity has no T. Fails for
// stale handles and while a query borrow is live.
func Remove[T any](w *World, e Entity) (T, bool, error) {
	var zero T
	ct, ok := typeFor[T]()
	if !ok {
		return zero, false, UnregisteredComponentError{Type: reflect.TypeFor[T]()}
	}
	if w.activeQueries > 0 {
		return zero, false, ReentrantMutationError{}
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return zero, false, err
	}
	a := w.archetypes[loc.Archetype]
	col, ok := a.column(ct.id)
	if !ok {
		return zero, false, nil
	}
	value := *(*T)(col.ptr(loc.Row))
	w.removeAt(e, a, loc, ct)
	return value, true, nil
}

// removeAt relocates the entity along the Remove edge, dropping the removed
// column's row. The caller has already read the value out if it wants it.
func (w *World) removeAt(e Entity, a *archetype, loc Location, ct *ComponentType) {
	dst := w.archetypeWithRemoved(a, ct)
	for i, c := range a.columns {
		if a.types[i].id == ct.id {
			continue
		}
		dc, ok := dst.column(a.types[i].id)
		invariant(ok, "remove transition lost a column")
		c.moveRowTo(dc, loc.Row)
	}
	dst.entities = append(dst.entities, e)

	w.vacateRow(a, loc.Row)
	w.alloc.relocate(e, Location{Archetype: dst.id, Row: len(dst.entities) - 1})
	a.checkColumns()
	dst.checkColumns()
}

// vacateRow swap-removes one row from every column of a and patches the
// displaced entity's location.
func (w *World) vacateRow(a *archetype, row int) {
	for _, c := range a.columns {
		c.swapRemove(row)
	}
	if moved, ok := a.swapRemoveEntity(row); ok {
		w.alloc.relocate(moved, Location{Archetype: a.id, Row: row})
	}
}

// Get returns a shared borrow of the entity's T. The pointer is valid until
// the next structural mutation. Absence and staleness both return false.
func Get[T any](w *World, e Entity) (*T, bool) {
	ct, ok := typeFor[T]()
	if !ok {
		return nil, false
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return nil, false
	}
	col, ok := w.archetypes[loc.Archetype].column(ct.id)
	if !ok {
		return nil, false
	}
	return (*T)(col.ptr(loc.Row)), true
}

// GetMut returns an exclusive borrow of the entity's T, stamping the cell's
// changed tick with the caller-supplied tick at acquisition.
func GetMut[T any](w *World, e Entity, tick Tick) (*T, bool) {
	ct, ok := typeFor[T]()
	if !ok {
		return nil, false
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return nil, false
	}
	col, ok := w.archetypes[loc.Archetype].column(ct.id)
	if !ok {
		return nil, false
	}
	col.setChanged(loc.Row, tick)
	return (*T)(col.ptr(loc.Row)), true
}

// Has reports whether the entity is live and holds a T.
func Has[T any](w *World, e Entity) bool {
	ct, ok := typeFor[T]()
	if !ok {
		return false
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return false
	}
	return w.archetypes[loc.Archetype].contains(ct.id)
}

// Stats summarizes world occupancy for drivers and debug tooling.
type Stats struct {
	Entities         int
	Archetypes       int
	LargestArchetype int
}

// Stats returns current occupancy counters.
func (w *World) Stats() Stats {
	s := Stats{
		Entities:   w.alloc.liveCount(),
		Archetypes: len(w.archetypes),
	}
	for _, a := range w.archetypes {
		if n := a.rows(); n > s.LargestArchetype {
			s.LargestArchetype = n
		}
	}
	return s
}
