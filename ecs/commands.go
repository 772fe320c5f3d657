package ecs

import (
	"fmt"
	"reflect"
)

// Commands buffers structural mutations while query borrows are live, since
// the world rejects reentrant mutation outright. Systems queue operations
// during iteration and the driver flushes them at the frame boundary.
type Commands struct {
	spawns   []spawnCommand
	despawns []Entity
	adds     []addCommand
	removes  []removeCommand
	defers   []func(*World)
}

type spawnCommand struct {
	components []any
}

type addCommand struct {
	entity    Entity
	component any
}

type removeCommand struct {
	entity   Entity
	compType reflect.Type
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

// Spawn queues an entity spawn with the given components. With no
// components the entity lands in the empty archetype.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Despawn queues an entity destruction.
func (c *Commands) Despawn(e Entity) {
	c.despawns = append(c.despawns, e)
}

// Add queues a component addition. The component may be a value or pointer.
func (c *Commands) Add(e Entity, component any) {
	c.adds = append(c.adds, addCommand{entity: e, component: component})
}

// Remove queues a component removal; the removed value is dropped.
func (c *Commands) Remove(e Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeCommand{entity: e, compType: compType})
}

// Defer queues an arbitrary function, run after all structural operations.
func (c *Commands) Defer(fn func(*World)) {
	c.defers = append(c.defers, fn)
}

// Flush applies the buffered operations and resets the buffer. Order:
// despawns, removes, adds, spawns, deferred functions. Component operations
// against entities despawned in the same flush are skipped. The first
// failure aborts the flush; earlier operations stay applied, matching the
// per-operation transactional contract of the world.
func (c *Commands) Flush(w *World) error {
	despawned := make(map[Entity]bool, len(c.despawns))

	for _, e := range c.despawns {
		if despawned[e] {
			continue
		}
		if err := w.Despawn(e); err != nil {
			return fmt.Errorf("flush despawn: %w", err)
		}
		despawned[e] = true
	}

	for _, cmd := range c.removes {
		if despawned[cmd.entity] {
			continue
		}
		if err := w.removeAny(cmd.entity, cmd.compType); err != nil {
			return fmt.Errorf("flush remove: %w", err)
		}
	}

	for _, cmd := range c.adds {
		if despawned[cmd.entity] {
			continue
		}
		if err := w.addAny(cmd.entity, cmd.component); err != nil {
			return fmt.Errorf("flush add: %w", err)
		}
	}

	for _, cmd := range c.spawns {
		if len(cmd.components) == 0 {
			if _, err := w.Spawn(); err != nil {
				return fmt.Errorf("flush spawn: %w", err)
			}
			continue
		}
		if _, err := SpawnWith(w, cmd.components...); err != nil {
			return fmt.Errorf("flush spawn: %w", err)
		}
	}

	for _, fn := range c.defers {
		fn(w)
	}

	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	return nil
}

// Empty reports whether the buffer holds no pending operations.
func (c *Commands) Empty() bool {
	return len(c.spawns) == 0 && len(c.despawns) == 0 &&
		len(c.adds) == 0 && len(c.removes) == 0 && len(c.defers) == 0
}
