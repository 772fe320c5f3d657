package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
)

type termKind uint8

const (
	termRead termKind = iota
	termWrite
	termWith
	termWithout
	termAdded
	termChanged
)

// Term is one access request in a query tuple. Terms are built with the
// Read, Write, With, Without, Added and Changed constructors and compiled by
// World.Query.
type Term struct {
	kind     termKind
	typ      reflect.Type
	lastSeen Tick
}

// Read requests shared access to T; matching archetypes must contain T.
func Read[T any]() Term {
	return Term{kind: termRead, typ: reflect.TypeFor[T]()}
}

// Write requests exclusive access to T; matching archetypes must contain T.
// Writes through Mut stamp the cell's changed tick.
func Write[T any]() Term {
	return Term{kind: termWrite, typ: reflect.TypeFor[T]()}
}

// With constrains matches to archetypes containing T without fetching data.
func With[T any]() Term {
	return Term{kind: termWith, typ: reflect.TypeFor[T]()}
}

// Without constrains matches to archetypes not containing T.
func Without[T any]() Term {
	return Term{kind: termWithout, typ: reflect.TypeFor[T]()}
}

// Added keeps only rows whose T was inserted at or after a tick newer than
// lastSeen, under the wrap-aware ordering.
func Added[T any](lastSeen Tick) Term {
	return Term{kind: termAdded, typ: reflect.TypeFor[T](), lastSeen: lastSeen}
}

// Changed keeps only rows whose T changed since lastSeen, under the
// wrap-aware ordering.
func Changed[T any](lastSeen Tick) Term {
	return Term{kind: termChanged, typ: reflect.TypeFor[T](), lastSeen: lastSeen}
}

type rowFilter struct {
	id       ComponentID
	added    bool
	lastSeen Tick
}

type lockRef struct {
	col       *column
	exclusive bool
}

// Iter walks the rows of every archetype matching a compiled query, in
// archetype creation order and ascending row order. It holds shared locks on
// read columns and exclusive locks on write columns of every matched
// archetype from compilation until Close (or exhaustion, which closes
// implicitly); structural world mutation is rejected while any Iter is open.
type Iter struct {
	w       *World
	tick    Tick // stamp for Mut, captured at compile
	reads   []ComponentID
	writes  []ComponentID
	filters []rowFilter

	matched    []*archetype
	acquired   []lockRef
	current    *archetype
	filterCols []*column
	archIdx    int
	row        int
	open       bool
}

// Query compiles an access tuple: canonicalizes the access sets, rejects
// conflicting borrows, selects matching archetypes and acquires column
// locks. Change-detection state observed by the iterator reflects all
// mutations completed before this call.
func (w *World) Query(terms ...Term) (*Iter, error) {
	var required, without mask.Mask
	it := &Iter{w: w, tick: w.tick, row: -1}

	for _, term := range terms {
		ct, ok := lookupType(term.typ)
		if !ok {
			return nil, UnregisteredComponentError{Type: term.typ}
		}
		bit := uint32(ct.id)
		switch term.kind {
		case termRead:
			required.Mark(bit)
			it.reads = append(it.reads, ct.id)
		case termWrite:
			required.Mark(bit)
			if containsID(it.writes, ct.id) {
				return nil, ConflictingAccessError{Type: ct.typ}
			}
			it.writes = append(it.writes, ct.id)
		case termWith:
			required.Mark(bit)
		case termWithout:
			without.Mark(bit)
		case termAdded, termChanged:
			required.Mark(bit)
			it.filters = append(it.filters, rowFilter{
				id:       ct.id,
				added:    term.kind == termAdded,
				lastSeen: term.lastSeen,
			})
		}
	}
	for _, id := range it.writes {
		if containsID(it.reads, id) {
			return nil, ConflictingAccessError{Type: lookupID(id).typ}
		}
	}

	// ContainsNone answers false for an empty argument mask, so only
	// consult it when the tuple actually excludes something.
	for _, a := range w.archetypes {
		if a.mask.ContainsAll(required) && (without.IsEmpty() || a.mask.ContainsNone(without)) {
			it.matched = append(it.matched, a)
		}
	}
	if err := it.lock(); err != nil {
		return nil, err
	}
	w.activeQueries++
	it.open = true
	return it, nil
}

// lock acquires one shared lock per read type and one exclusive lock per
// write type on every matched archetype, releasing everything on conflict.
func (it *Iter) lock() error {
	for _, a := range it.matched {
		for _, id := range it.reads {
			col, ok := a.column(id)
			invariant(ok, "matched archetype missing read column")
			if col.exclusive {
				it.unlock()
				return ConflictingAccessError{Type: col.typ.typ}
			}
			col.shared++
			it.acquired = append(it.acquired, lockRef{col: col})
		}
		for _, id := range it.writes {
			col, ok := a.column(id)
			invariant(ok, "matched archetype missing write column")
			if col.exclusive || col.shared > 0 {
				it.unlock()
				return ConflictingAccessError{Type: col.typ.typ}
			}
			col.exclusive = true
			it.acquired = append(it.acquired, lockRef{col: col, exclusive: true})
		}
	}
	return nil
}

func (it *Iter) unlock() {
	for _, l := range it.acquired {
		if l.exclusive {
			l.col.exclusive = false
		} else {
			l.col.shared--
		}
	}
	it.acquired = nil
}

// Next advances to the next matching row. Exhaustion closes the iterator
// and releases its locks.
func (it *Iter) Next() bool {
	if !it.open {
		return false
	}
	it.row++
	for {
		if it.current != nil && it.row < it.current.rows() {
			if it.rowMatches(it.row) {
				return true
			}
			it.row++
			continue
		}
		if it.archIdx >= len(it.matched) {
			it.Close()
			return false
		}
		it.enterArchetype(it.matched[it.archIdx])
		it.archIdx++
		it.row = 0
	}
}

func (it *Iter) enterArchetype(a *archetype) {
	it.current = a
	if cap(it.filterCols) < len(it.filters) {
		it.filterCols = make([]*column, len(it.filters))
	}
	it.filterCols = it.filterCols[:len(it.filters)]
	for i, f := range it.filters {
		col, ok := a.column(f.id)
		invariant(ok, "matched archetype missing filter column")
		it.filterCols[i] = col
	}
}

// rowMatches evaluates tick filters for one row; non-matching rows are
// skipped without releasing locks.
func (it *Iter) rowMatches(row int) bool {
	for i, f := range it.filters {
		tp := it.filterCols[i].ticks[row]
		t := tp.changed
		if f.added {
			t = tp.added
		}
		if !t.NewerThan(f.lastSeen) {
			return false
		}
	}
	return true
}

// Entity returns the owner of the current row.
func (it *Iter) Entity() Entity {
	invariant(it.current != nil, "Entity called before Next")
	return it.current.entities[it.row]
}

// Close releases the iterator's column locks. Idempotent; called implicitly
// when Next exhausts the matched rows.
func (it *Iter) Close() {
	if !it.open {
		return
	}
	it.open = false
	it.unlock()
	it.w.activeQueries--
}

// Value returns the current row's T under a Read or Write term, or nil if
// the query did not request T.
func Value[T any](it *Iter) *T {
	ct, ok := typeFor[T]()
	if !ok {
		return nil
	}
	if !containsID(it.reads, ct.id) && !containsID(it.writes, ct.id) {
		return nil
	}
	col, ok := it.current.column(ct.id)
	if !ok {
		return nil
	}
	return (*T)(col.ptr(it.row))
}

// Mut returns the current row's T under a Write term and stamps the cell's
// changed tick with the query's compile tick. Nil if the query did not
// request exclusive access to T.
func Mut[T any](it *Iter) *T {
	ct, ok := typeFor[T]()
	if !ok {
		return nil
	}
	if !containsID(it.writes, ct.id) {
		return nil
	}
	col, ok := it.current.column(ct.id)
	if !ok {
		return nil
	}
	col.setChanged(it.row, it.tick)
	return (*T)(col.ptr(it.row))
}

func containsID(ids []ComponentID, id ComponentID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
