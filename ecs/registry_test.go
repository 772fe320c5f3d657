package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/forge/ecs"
)

func TestRegisterAssignsStableIDs(t *testing.T) {
	ecs.ResetRegistry()
	defer registerTestComponents()

	a := ecs.Register[Transform]()
	b := ecs.Register[Velocity]()
	assert.NotEqual(t, a.ID(), b.ID())

	// Repeat registrations return the original descriptor.
	assert.Same(t, a, ecs.Register[Transform]())
	assert.Same(t, b, ecs.Register[Velocity]())
}

func TestRegisterRejectsReferenceKinds(t *testing.T) {
	registerTestComponents()

	assert.Panics(t, func() { ecs.Register[*Transform]() })
	assert.Panics(t, func() { ecs.Register[map[string]int]() })
	assert.Panics(t, func() { ecs.Register[chan int]() })
	assert.Panics(t, func() { ecs.Register[func()]() })
	assert.Panics(t, func() { ecs.Register[any]() })
}

func TestDescriptorMetadata(t *testing.T) {
	registerTestComponents()

	ct := ecs.Register[Transform]()
	assert.Equal(t, reflect.TypeFor[Transform](), ct.Type())
	assert.Equal(t, reflect.TypeFor[Transform]().Size(), ct.Size())
	assert.Equal(t, uintptr(reflect.TypeFor[Transform]().Align()), ct.Align())
	assert.False(t, ct.Serializable())
}

func TestSerializableAfterHooks(t *testing.T) {
	ecs.ResetRegistry()
	defer registerTestComponents()

	type score struct{ Points int }
	ct := ecs.SetSerializeHooks[score](
		func(s score) ([]byte, error) { return []byte{byte(s.Points)}, nil },
		func(data []byte) (score, error) { return score{Points: int(data[0])}, nil },
	)
	assert.True(t, ct.Serializable())
}

func TestResetRegistry(t *testing.T) {
	ecs.ResetRegistry()
	defer registerTestComponents()

	first := ecs.Register[Health]()
	ecs.ResetRegistry()
	second := ecs.Register[Health]()
	assert.NotSame(t, first, second)
}

func TestWorldsIsolateState(t *testing.T) {
	registerTestComponents()

	// The registry is shared; entity and archetype state is not.
	w1 := ecs.NewWorld()
	w2 := ecs.NewWorld()

	e, err := ecs.SpawnWith(w1, Transform{X: 1})
	require.NoError(t, err)

	assert.True(t, w1.Contains(e))
	assert.False(t, w2.Contains(e))
	assert.Equal(t, 0, w2.Stats().Entities)
}
