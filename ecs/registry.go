package ecs

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// ComponentID is the dense small-integer identity of a registered component
// type. IDs are assigned in first-registration order and are not stable
// across process runs; archetype identity therefore keys on id sets, never
// on registration order.
type ComponentID uint32

// MaxComponentTypes bounds the number of registrable component types. It
// matches the width of the archetype bitmasks.
const MaxComponentTypes = 64

// ComponentType is the descriptor of a registered component: stable id,
// memory layout, and the hooks the engine needs to drop, clone and
// (de)serialize values. New component behaviors extend this descriptor.
type ComponentType struct {
	id    ComponentID
	typ   reflect.Type
	size  uintptr
	align uintptr

	// drop clears a slot after its value is moved out or destroyed. Nil for
	// pointer-free types, where stale bytes cannot retain heap objects.
	drop func(p unsafe.Pointer)

	// clone copies src into dst. Nil means plain byte copy is sufficient.
	clone func(dst, src unsafe.Pointer)

	serialize   func(src unsafe.Pointer) ([]byte, error)
	deserialize func(dst unsafe.Pointer, data []byte) error
}

// ID returns the component's dense id.
func (ct *ComponentType) ID() ComponentID {
	return ct.id
}

// Type returns the Go type the descriptor was registered for.
func (ct *ComponentType) Type() reflect.Type {
	return ct.typ
}

// Size returns the component size in bytes.
func (ct *ComponentType) Size() uintptr {
	return ct.size
}

// Align returns the component alignment in bytes.
func (ct *ComponentType) Align() uintptr {
	return ct.align
}

// Serializable reports whether serialize hooks were installed.
func (ct *ComponentType) Serializable() bool {
	return ct.serialize != nil && ct.deserialize != nil
}

// registry is the process-global component table. Registration happens
// before worlds are driven; lookups afterwards are read-locked.
type registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*ComponentType
	byID   []*ComponentType
}

var components = registry{
	byType: make(map[reflect.Type]*ComponentType, MaxComponentTypes),
}

// Register registers T and returns its descriptor. Registration is
// process-wide and idempotent: re-registering a type returns the existing
// descriptor. Register panics if T is a pointer, map, channel or function
// type (those are not value components), or if the component-type limit is
// exceeded; both are programming errors, not runtime conditions.
func Register[T any]() *ComponentType {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic(fmt.Sprintf("ecs: %v is not a value type and cannot be a component", t))
	}

	components.mu.Lock()
	defer components.mu.Unlock()

	if ct, ok := components.byType[t]; ok {
		return ct
	}
	if len(components.byID) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register %v: component type limit (%d) reached", t, MaxComponentTypes))
	}

	ct := &ComponentType{
		id:    ComponentID(len(components.byID)),
		typ:   t,
		size:  t.Size(),
		align: uintptr(t.Align()),
	}
	if hasPointers(t) {
		ct.drop = func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().SetZero()
		}
	}
	components.byType[t] = ct
	components.byID = append(components.byID, ct)
	return ct
}

// SetCloneHook installs a deep-copy hook for T, replacing the default byte
// copy. Registers T if needed.
func SetCloneHook[T any](fn func(src T) T) *ComponentType {
	ct := Register[T]()
	components.mu.Lock()
	defer components.mu.Unlock()
	ct.clone = func(dst, src unsafe.Pointer) {
		*(*T)(dst) = fn(*(*T)(src))
	}
	return ct
}

// SetSerializeHooks installs (de)serialization hooks for T, used by
// snapshots and scene round-trips. Registers T if needed.
func SetSerializeHooks[T any](enc func(src T) ([]byte, error), dec func(data []byte) (T, error)) *ComponentType {
	ct := Register[T]()
	components.mu.Lock()
	defer components.mu.Unlock()
	ct.serialize = func(src unsafe.Pointer) ([]byte, error) {
		return enc(*(*T)(src))
	}
	ct.deserialize = func(dst unsafe.Pointer, data []byte) error {
		v, err := dec(data)
		if err != nil {
			return err
		}
		*(*T)(dst) = v
		return nil
	}
	return ct
}

// ResetRegistry clears the global component table. Only for tests that need
// a pristine id assignment; never call with live worlds.
func ResetRegistry() {
	components.mu.Lock()
	defer components.mu.Unlock()
	components.byType = make(map[reflect.Type]*ComponentType, MaxComponentTypes)
	components.byID = nil
}

// lookupType returns the descriptor for t, if registered.
func lookupType(t reflect.Type) (*ComponentType, bool) {
	components.mu.RLock()
	defer components.mu.RUnlock()
	ct, ok := components.byType[t]
	return ct, ok
}

// lookupID returns the descriptor for a known-valid id.
func lookupID(id ComponentID) *ComponentType {
	components.mu.RLock()
	defer components.mu.RUnlock()
	invariant(int(id) < len(components.byID), "component id out of range")
	return components.byID[id]
}

func typeFor[T any]() (*ComponentType, bool) {
	return lookupType(reflect.TypeFor[T]())
}

// hasPointers reports whether values of t contain heap references a stale
// copy could keep alive.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Interface, reflect.String,
		reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
