package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
)

// edges caches the archetype-graph transitions out of one archetype, keyed
// by the component type being added or removed. Edges are created lazily on
// first traversal and recorded in both directions, so frequently traveled
// add/remove paths resolve in one map hit.
type edges struct {
	add    *intmap.Map[ComponentID, ArchetypeID]
	remove *intmap.Map[ComponentID, ArchetypeID]
}

func (e *edges) addEdge(id ComponentID) (ArchetypeID, bool) {
	if e.add == nil {
		return 0, false
	}
	return e.add.Get(id)
}

func (e *edges) removeEdge(id ComponentID) (ArchetypeID, bool) {
	if e.remove == nil {
		return 0, false
	}
	return e.remove.Get(id)
}

func (e *edges) putAdd(id ComponentID, target ArchetypeID) {
	if e.add == nil {
		e.add = intmap.New[ComponentID, ArchetypeID](4)
	}
	e.add.Put(id, target)
}

func (e *edges) putRemove(id ComponentID, target ArchetypeID) {
	if e.remove == nil {
		e.remove = intmap.New[ComponentID, ArchetypeID](4)
	}
	e.remove.Put(id, target)
}

// archetypeWithAdded walks (or creates) the Add edge from src for ct. The
// caller has already ruled out the replace case, so ct is not in src.
func (w *World) archetypeWithAdded(src *archetype, ct *ComponentType) *archetype {
	if target, ok := src.edges.addEdge(ct.id); ok {
		return w.archetypes[target]
	}
	types := make([]*ComponentType, 0, len(src.types)+1)
	inserted := false
	for _, t := range src.types {
		if !inserted && ct.id < t.id {
			types = append(types, ct)
			inserted = true
		}
		types = append(types, t)
	}
	if !inserted {
		types = append(types, ct)
	}
	dst := w.getOrCreateArchetype(types)
	src.edges.putAdd(ct.id, dst.id)
	dst.edges.putRemove(ct.id, src.id)
	return dst
}

// archetypeWithRemoved walks (or creates) the Remove edge from src for ct.
func (w *World) archetypeWithRemoved(src *archetype, ct *ComponentType) *archetype {
	if target, ok := src.edges.removeEdge(ct.id); ok {
		return w.archetypes[target]
	}
	types := make([]*ComponentType, 0, len(src.types)-1)
	for _, t := range src.types {
		if t.id != ct.id {
			types = append(types, t)
		}
	}
	dst := w.getOrCreateArchetype(types)
	src.edges.putRemove(ct.id, dst.id)
	dst.edges.putAdd(ct.id, src.id)
	return dst
}

// getOrCreateArchetype finds the archetype for a canonical descriptor list,
// creating it on first use. Archetypes are never destroyed; an empty one is
// observationally benign and keeps its memory for later reuse.
func (w *World) getOrCreateArchetype(types []*ComponentType) *archetype {
	var m mask.Mask
	for _, ct := range types {
		m.Mark(uint32(ct.id))
	}
	if id, ok := w.byMask[m]; ok {
		return w.archetypes[id]
	}
	a := newArchetype(ArchetypeID(len(w.archetypes)), types)
	w.archetypes = append(w.archetypes, a)
	w.byMask[m] = a.id
	return a
}
