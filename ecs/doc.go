/*
Package ecs is an archetype-based Entity-Component-System: an in-memory
column store that keeps entities with identical component sets together in
contiguous, type-erased columns for cache-linear iteration.

Core concepts:

  - Entity: an opaque generational handle naming one live entity.
  - Component: a registered value type attached to entities.
  - Archetype: the storage for all entities sharing one exact component set.
  - Query: a tuple of access terms iterated over every matching archetype.
  - Tick: a wrap-aware counter giving each component cell added/changed
    stamps for change detection.

Basic usage:

	type Position struct{ X, Y float32 }
	type Velocity struct{ DX, DY float32 }

	ecs.Register[Position]()
	ecs.Register[Velocity]()

	w := ecs.NewWorld()
	e, _ := ecs.SpawnWith(w, Position{X: 1}, Velocity{DX: 2})

	it, _ := w.Query(ecs.Write[Position](), ecs.Read[Velocity]())
	for it.Next() {
		pos := ecs.Mut[Position](it)
		vel := ecs.Value[Velocity](it)
		pos.X += vel.DX
		pos.Y += vel.DY
	}

Adding or removing a component relocates the entity between archetypes along
lazily cached graph edges; handles stay stable across moves. Structural
mutation is rejected while a query iterator is open; use Commands to defer
it to the frame boundary, and Scheduler to drive systems with one tick per
system run.

A World is single-threaded. Independent worlds may be driven concurrently;
component registration is process-wide and happens before worlds run.
*/
package ecs
