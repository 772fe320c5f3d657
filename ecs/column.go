package ecs

import (
	"reflect"
	"unsafe"
)

// columnMinCapacity is the first non-zero capacity; growth doubles from
// there and never shrinks implicitly.
const columnMinCapacity = 4

// column is a type-erased dense buffer holding one component type for every
// row of one archetype, plus the parallel added/changed tick table. Backing
// memory is a typed slice allocated through reflect, so the collector sees
// interior pointers; all row addressing goes through raw offsets.
type column struct {
	typ   *ComponentType
	buf   reflect.Value  // []T backing allocation, len == cap
	data  unsafe.Pointer // first element of buf
	len   int
	cap   int
	ticks []tickPair

	// Query borrow bookkeeping, owned by the query layer.
	shared    int
	exclusive bool
}

func newColumn(ct *ComponentType) *column {
	return &column{typ: ct}
}

func (c *column) ptr(row int) unsafe.Pointer {
	return unsafe.Add(c.data, uintptr(row)*c.typ.size)
}

// push appends a component read from src and stamps added = changed = tick.
// Returns the new row.
func (c *column) push(src unsafe.Pointer, tick Tick) int {
	c.reserve(c.len + 1)
	if c.typ.size > 0 {
		c.typ.copyValue(c.ptr(c.len), src)
	}
	c.ticks = append(c.ticks, tickPair{added: tick, changed: tick})
	c.len++
	return c.len - 1
}

// replace overwrites the value at row and stamps changed = tick, leaving
// added untouched. Overwriting is the drop of the previous value.
func (c *column) replace(src unsafe.Pointer, row int, tick Tick) {
	if c.typ.size > 0 {
		c.typ.copyValue(c.ptr(row), src)
	}
	c.ticks[row].changed = tick
}

// swapRemove deletes the value at row by moving the last row into it, ticks
// included. The removed value must either have been moved out beforehand
// (archetype transition) or is destroyed here; in both cases relocatable
// storage makes drop-by-overwrite sufficient, with the vacated last slot
// zeroed for types that hold heap references.
func (c *column) swapRemove(row int) {
	last := c.len - 1
	invariant(row >= 0 && row <= last, "swap-remove row out of range")
	if row != last {
		if c.typ.size > 0 {
			c.typ.copyValue(c.ptr(row), c.ptr(last))
		}
		c.ticks[row] = c.ticks[last]
	}
	if c.typ.drop != nil {
		c.typ.drop(c.ptr(last))
	}
	c.ticks = c.ticks[:last]
	c.len = last
}

// moveRowTo bit-copies the value at row onto the end of dst, carrying the
// row's tick pair unchanged. The source row must be cleaned up with
// swapRemove afterwards.
func (c *column) moveRowTo(dst *column, row int) int {
	invariant(c.typ == dst.typ, "column move between different component types")
	dst.reserve(dst.len + 1)
	if c.typ.size > 0 {
		c.typ.copyValue(dst.ptr(dst.len), c.ptr(row))
	}
	dst.ticks = append(dst.ticks, c.ticks[row])
	dst.len++
	return dst.len - 1
}

func (c *column) setChanged(row int, tick Tick) {
	c.ticks[row].changed = tick
}

// cloneValue returns an addressable *T copy of the value at row, using the
// descriptor's clone hook when present and a shallow copy otherwise.
func (c *column) cloneValue(row int) reflect.Value {
	v := reflect.New(c.typ.typ)
	switch {
	case c.typ.clone != nil:
		c.typ.clone(v.UnsafePointer(), c.ptr(row))
	case c.typ.size > 0:
		c.typ.copyValue(v.UnsafePointer(), c.ptr(row))
	}
	return v
}

// reserve grows the backing allocation to hold at least n rows.
func (c *column) reserve(n int) {
	if n <= c.cap {
		return
	}
	newCap := c.cap * 2
	if newCap < columnMinCapacity {
		newCap = columnMinCapacity
	}
	for newCap < n {
		newCap *= 2
	}
	buf := reflect.MakeSlice(reflect.SliceOf(c.typ.typ), newCap, newCap)
	if c.len > 0 {
		reflect.Copy(buf, c.buf.Slice(0, c.len))
	}
	c.buf = buf
	c.data = buf.UnsafePointer()
	c.cap = newCap
}

// copyValue moves one component value between slots. Pointer-bearing types
// go through a typed reflect copy so the write is visible to the collector;
// everything else takes the raw word copy.
func (ct *ComponentType) copyValue(dst, src unsafe.Pointer) {
	if ct.drop != nil {
		reflect.NewAt(ct.typ, dst).Elem().Set(reflect.NewAt(ct.typ, src).Elem())
		return
	}
	memCopy(dst, src, ct.size)
}

// memCopy copies size bytes from src to dst, word-wise then byte-wise.
func memCopy(dst, src unsafe.Pointer, size uintptr) {
	const wordSize = unsafe.Sizeof(uintptr(0))
	words := size / wordSize
	d, s := dst, src
	for i := uintptr(0); i < words; i++ {
		*(*uintptr)(d) = *(*uintptr)(s)
		d = unsafe.Add(d, wordSize)
		s = unsafe.Add(s, wordSize)
	}
	for i := uintptr(0); i < size%wordSize; i++ {
		*(*byte)(d) = *(*byte)(s)
		d = unsafe.Add(d, 1)
		s = unsafe.Add(s, 1)
	}
}
