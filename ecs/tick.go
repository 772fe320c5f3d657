package ecs

// Tick is the world's logical clock. It increments once per system run and
// wraps; ordering is evaluated under modular arithmetic, so change detection
// stays correct across wraparound as long as anchors are no more than 2^31
// ticks old.
type Tick uint32

// NewerThan reports whether t is at or after other under the wrap-aware
// ordering.
func (t Tick) NewerThan(other Tick) bool {
	return uint32(t-other) < 1<<31
}

// tickPair is the per-row change-detection state carried by every column
// cell. added is stamped when the value is first inserted into the entity
// and preserved across archetype moves; changed is restamped on every
// replace and on every mutable acquisition.
type tickPair struct {
	added   Tick
	changed Tick
}

// CurrentTick returns the world's clock without advancing it.
func (w *World) CurrentTick() Tick {
	return w.tick
}

// AdvanceTick increments the clock. Rejected while query iterators are
// open, since their tick filters were compiled against the current value.
func (w *World) AdvanceTick() error {
	if w.activeQueries > 0 {
		return ReentrantMutationError{}
	}
	w.tick++
	return nil
}
