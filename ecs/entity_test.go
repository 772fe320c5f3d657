package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/forge/ecs"
)

func TestEntityBitsRoundTrip(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, err := w.Spawn()
	require.NoError(t, err)

	packed := e.Bits()
	assert.Equal(t, e, ecs.EntityFromBits(packed))
}

func TestSpawnDespawnLifecycle(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, err := w.Spawn()
	require.NoError(t, err)
	assert.True(t, w.Contains(e))

	require.NoError(t, w.Despawn(e))
	assert.False(t, w.Contains(e))

	// The handle is now stale: reads answer absence, not panic.
	_, ok := ecs.Get[Transform](w, e)
	assert.False(t, ok)

	// Respawning reuses the slot under a strictly higher generation.
	e2, err := w.Spawn()
	require.NoError(t, err)
	assert.Equal(t, e.Index(), e2.Index())
	assert.Greater(t, e2.Generation(), e.Generation())
	assert.NotEqual(t, e, e2)
}

func TestDespawnStaleHandle(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, w.Despawn(e))

	var stale ecs.StaleEntityError
	assert.ErrorAs(t, w.Despawn(e), &stale)
}

func TestUnknownEntity(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	// A handle from a different world's slot space.
	forged := ecs.EntityFromBits(99<<0 | 1<<32)

	var unknown ecs.UnknownEntityError
	assert.ErrorAs(t, w.Despawn(forged), &unknown)
	_, err := w.Locate(forged)
	assert.ErrorAs(t, err, &unknown)
	assert.False(t, w.Contains(forged))
}

func TestGenerationSafety(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, err := ecs.SpawnWith(w, Transform{X: 1})
	require.NoError(t, err)
	require.NoError(t, w.Despawn(e))

	// Same slot, higher generation.
	e2, err := ecs.SpawnWith(w, Transform{X: 2})
	require.NoError(t, err)
	require.Equal(t, e.Index(), e2.Index())

	// The stale handle must not see the new occupant's data.
	_, ok := ecs.Get[Transform](w, e)
	assert.False(t, ok)

	var stale ecs.StaleEntityError
	assert.ErrorAs(t, ecs.Add(w, e, Transform{X: 3}), &stale)

	// The live handle is untouched by the failed add.
	tr, ok := ecs.Get[Transform](w, e2)
	require.True(t, ok)
	assert.Equal(t, float32(2), tr.X)
}

func TestSlotReuseIsLIFO(t *testing.T) {
	registerTestComponents()
	w := ecs.NewWorld()

	a, _ := w.Spawn()
	b, _ := w.Spawn()
	require.NoError(t, w.Despawn(a))
	require.NoError(t, w.Despawn(b))

	// Most recently freed slot is reused first.
	c, _ := w.Spawn()
	assert.Equal(t, b.Index(), c.Index())
}
