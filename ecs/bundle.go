package ecs

import (
	"reflect"
	"sort"
	"unsafe"
)

// bundle is a canonicalized heterogeneous component collection: descriptors
// sorted by ComponentID, deduplicated, with a read-only source pointer per
// value. Canonical ordering makes {A,B} and {B,A} resolve to one archetype.
type bundle struct {
	types  []*ComponentType
	values []unsafe.Pointer // parallel to types
}

// newBundle extracts and canonicalizes components passed as values or
// pointers.
func newBundle(components []any) (bundle, error) {
	b := bundle{
		types:  make([]*ComponentType, 0, len(components)),
		values: make([]unsafe.Pointer, 0, len(components)),
	}
	for _, comp := range components {
		ct, src, err := erase(comp)
		if err != nil {
			return bundle{}, err
		}
		b.types = append(b.types, ct)
		b.values = append(b.values, src)
	}

	sort.Sort(&b)
	for i := 1; i < len(b.types); i++ {
		if b.types[i].id == b.types[i-1].id {
			return bundle{}, DuplicateComponentError{Type: b.types[i].typ}
		}
	}
	return b, nil
}

func (b *bundle) Len() int           { return len(b.types) }
func (b *bundle) Less(i, j int) bool { return b.types[i].id < b.types[j].id }
func (b *bundle) Swap(i, j int) {
	b.types[i], b.types[j] = b.types[j], b.types[i]
	b.values[i], b.values[j] = b.values[j], b.values[i]
}

// erase resolves a component passed as T or *T into its descriptor and a
// read-only pointer to the value. The engine copies out of that pointer,
// never writes through it.
func erase(comp any) (*ComponentType, unsafe.Pointer, error) {
	t := reflect.TypeOf(comp)
	if t == nil {
		return nil, nil, UnregisteredComponentError{}
	}
	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		ct, ok := lookupType(elem)
		if !ok {
			return nil, nil, UnregisteredComponentError{Type: elem}
		}
		return ct, reflect.ValueOf(comp).UnsafePointer(), nil
	}
	ct, ok := lookupType(t)
	if !ok {
		return nil, nil, UnregisteredComponentError{Type: t}
	}
	// Pointer-shaped values are stored directly in the interface data word,
	// so the boxed layout is not always *T. Rebox through reflect to get an
	// addressable T regardless of shape.
	v := reflect.New(t)
	v.Elem().Set(reflect.ValueOf(comp))
	return ct, v.UnsafePointer(), nil
}

// addAny is the type-erased add used by the command buffer.
func (w *World) addAny(e Entity, comp any) error {
	ct, src, err := erase(comp)
	if err != nil {
		return err
	}
	return w.addErased(e, ct, src)
}

// removeAny is the type-erased remove used by the command buffer; the
// removed value is dropped.
func (w *World) removeAny(e Entity, compType reflect.Type) error {
	ct, ok := lookupType(compType)
	if !ok {
		return UnregisteredComponentError{Type: compType}
	}
	if w.activeQueries > 0 {
		return ReentrantMutationError{}
	}
	loc, err := w.alloc.locate(e)
	if err != nil {
		return err
	}
	a := w.archetypes[loc.Archetype]
	if !a.contains(ct.id) {
		return nil
	}
	w.removeAt(e, a, loc, ct)
	return nil
}
