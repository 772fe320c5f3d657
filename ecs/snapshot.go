package ecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Snapshot captures the (entity, components) relation of a world at one
// moment. Archetype identity and entity handles are not part of the
// captured state: restoring produces fresh handles and rebuilds archetypes
// from component sets. Components with serialize hooks are stored as bytes;
// the rest are cloned through their descriptor.
type Snapshot struct {
	entities []entityRecord
}

type entityRecord struct {
	components []componentRecord
}

type componentRecord struct {
	typ   *ComponentType
	data  []byte        // serialize hook output, nil when value is used
	value reflect.Value // *T clone when no hooks are installed
}

// Snapshot captures the current (entity, components) relation. It is a pure
// read and may run while queries are open.
func (w *World) Snapshot() (*Snapshot, error) {
	s := &Snapshot{}
	for _, a := range w.archetypes {
		for row := range a.entities {
			rec := entityRecord{}
			if len(a.columns) > 0 {
				rec.components = make([]componentRecord, 0, len(a.columns))
			}
			for _, c := range a.columns {
				if c.typ.Serializable() {
					data, err := c.typ.serialize(c.ptr(row))
					if err != nil {
						return nil, fmt.Errorf("snapshot %v: %w", c.typ.typ, err)
					}
					rec.components = append(rec.components, componentRecord{typ: c.typ, data: data})
					continue
				}
				rec.components = append(rec.components, componentRecord{typ: c.typ, value: c.cloneValue(row)})
			}
			s.entities = append(s.entities, rec)
		}
	}
	return s, nil
}

// Restore spawns every captured entity into w, returning the fresh handles
// in capture order. The snapshot's descriptors must belong to the current
// registration epoch; a registry reset in between invalidates it. A
// deserialize failure aborts the restore, leaving earlier spawns applied.
func (s *Snapshot) Restore(w *World) ([]Entity, error) {
	if w.activeQueries > 0 {
		return nil, ReentrantMutationError{}
	}
	out := make([]Entity, 0, len(s.entities))
	for _, rec := range s.entities {
		b := bundle{
			types:  make([]*ComponentType, 0, len(rec.components)),
			values: make([]unsafe.Pointer, 0, len(rec.components)),
		}
		for _, cr := range rec.components {
			src, err := cr.materialize()
			if err != nil {
				return out, err
			}
			// Column order is ComponentID order, so the bundle is already
			// canonical.
			b.types = append(b.types, cr.typ)
			b.values = append(b.values, src)
		}
		e, err := w.alloc.alloc()
		if err != nil {
			return out, err
		}
		w.placeBundle(e, b)
		out = append(out, e)
	}
	return out, nil
}

func (cr *componentRecord) materialize() (unsafe.Pointer, error) {
	if cr.data == nil {
		return cr.value.UnsafePointer(), nil
	}
	v := reflect.New(cr.typ.typ)
	if err := cr.typ.deserialize(v.UnsafePointer(), cr.data); err != nil {
		return nil, fmt.Errorf("restore %v: %w", cr.typ.typ, err)
	}
	return v.UnsafePointer(), nil
}

// Len returns the number of captured entities.
func (s *Snapshot) Len() int {
	return len(s.entities)
}
