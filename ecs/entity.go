package ecs

// Entity is an opaque generational handle naming one live entity. It packs a
// 32-bit slot index with a 32-bit generation; two handles are equal only if
// both fields match. Handles are freely copyable and remain comparable after
// the entity dies, but every dereference goes through the World that issued
// them. The zero Entity is never issued.
type Entity struct {
	index      uint32
	generation uint32
}

// Index returns the slot index of the handle.
func (e Entity) Index() uint32 {
	return e.index
}

// Generation returns the generation the handle was issued under.
func (e Entity) Generation() uint32 {
	return e.generation
}

// Bits packs the handle into a single 64-bit value, index in the low word.
func (e Entity) Bits() uint64 {
	return uint64(e.index) | uint64(e.generation)<<32
}

// EntityFromBits is the inverse of Bits.
func EntityFromBits(bits uint64) Entity {
	return Entity{
		index:      uint32(bits),
		generation: uint32(bits >> 32),
	}
}

// Location names the archetype and row an entity currently resides in. Rows
// are perturbed by swap-removal in the same archetype, so a Location is only
// valid until the next structural mutation.
type Location struct {
	Archetype ArchetypeID
	Row       int
}
