package ecs

import (
	"fmt"
	"reflect"
)

// UnknownEntityError reports a handle whose index was never allocated by
// this world.
type UnknownEntityError struct {
	Entity Entity
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("ecs: unknown entity %v", e.Entity)
}

// StaleEntityError reports a handle whose slot has been reused; the entity
// it referred to was despawned.
type StaleEntityError struct {
	Entity Entity
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("ecs: stale entity %v", e.Entity)
}

// UnregisteredComponentError reports a component type that was never passed
// to Register.
type UnregisteredComponentError struct {
	Type reflect.Type
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("ecs: component type %v is not registered", e.Type)
}

// DuplicateComponentError reports a bundle carrying the same component type
// more than once.
type DuplicateComponentError struct {
	Type reflect.Type
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("ecs: duplicate component %v in bundle", e.Type)
}

// ConflictingAccessError reports a query whose access set overlaps an
// exclusive borrow, either within one tuple or against another live
// iterator.
type ConflictingAccessError struct {
	Type reflect.Type
}

func (e ConflictingAccessError) Error() string {
	return fmt.Sprintf("ecs: conflicting access to component %v", e.Type)
}

// ReentrantMutationError reports a structural mutation attempted while a
// query iterator is open over the same world.
type ReentrantMutationError struct{}

func (ReentrantMutationError) Error() string {
	return "ecs: structural mutation while a query is active"
}

// EntityLimitError reports exhaustion of the entity index space.
type EntityLimitError struct{}

func (EntityLimitError) Error() string {
	return "ecs: entity index space exhausted"
}

// ArchetypeInvariantError is the panic value raised when internal archetype
// bookkeeping is observed in a corrupt state. It indicates a bug in this
// package, not a caller mistake, so it is not returned as an error.
type ArchetypeInvariantError struct {
	Detail string
}

func (e ArchetypeInvariantError) Error() string {
	return "ecs: archetype invariant violated: " + e.Detail
}

func invariant(cond bool, detail string) {
	if !cond {
		panic(ArchetypeInvariantError{Detail: detail})
	}
}
