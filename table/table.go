package table

import (
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/spectre256/ecs/mask"
)

// TableEvents lets a caller observe row lifecycle events without the
// storage engine depending on anything beyond func values.
type TableEvents struct {
	OnRowCreated func(tbl Table, row int)
	OnRowDeleted func(tbl Table, row int)
}

func (e TableEvents) rowCreated(tbl Table, row int) {
	if e.OnRowCreated != nil {
		e.OnRowCreated(tbl, row)
	}
}

func (e TableEvents) rowDeleted(tbl Table, row int) {
	if e.OnRowDeleted != nil {
		e.OnRowDeleted(tbl, row)
	}
}

// Table is an archetype table: a dense, row-major packed byte buffer
// holding every entity with exactly one component Mask, plus the
// back-reference vector the Entry Table needs to stay consistent
// across swap-remove compaction.
type Table interface {
	mask.Maskable

	Contains(e ElementType) bool
	ContainsAll(m mask.Mask) bool
	ContainsExact(m mask.Mask) bool

	Length() int
	Capacity() int
	Schema() Schema

	// NewRow reserves and zeroes one row, records backRef (an Entry
	// Table slot) for it, and returns the row's index.
	NewRow(backRef int) (int, error)

	// DeleteRow swap-removes row, patching the Entry Table slot of
	// whatever row moved into its place. It returns the Entry Table
	// slot that moved (which equals backRef itself if row was already
	// the last row, i.e. nothing moved).
	DeleteRow(row int) int

	// CopyFrom reserves a new row in the receiver and copies every
	// component column present in both the receiver's and src's masks
	// from src's row. Columns the receiver has that src lacks are left
	// zeroed; columns src has that the receiver lacks are dropped. This
	// is the "migration" primitive add/remove build on.
	CopyFrom(src Table, srcRow, backRef int) (int, error)

	// BackRef returns the Entry Table slot recorded for row.
	BackRef(row int) int

	// SetBackRef overwrites the Entry Table slot recorded for row. Used
	// exactly once per new entity, to close the chicken-and-egg problem
	// of entity creation: the row must exist before Alloc can record
	// it, but Alloc's slot isn't known until after the row does.
	SetBackRef(row, slot int)
}

// archetypeTable is the concrete Table implementation.
type archetypeTable struct {
	schema   Schema
	entries  EntryIndex
	m        mask.Mask
	layout   rowLayout
	buffer   []byte
	backRefs []int
	length   int
	capacity int
	events   TableEvents
	opts     Options
}

// Options controls the growth and debug behavior of an archetype
// table.
type Options struct {
	InitialCapacity int
	GrowthFactor    int
	PoisonOnDelete  bool
}

// DefaultOptions returns the standard growth policy: initial capacity
// 8, growth factor 2x, poisoning off.
func DefaultOptions() Options {
	return Options{InitialCapacity: 8, GrowthFactor: 2}
}

func (t *archetypeTable) Mask() mask.Mask { return t.m }

func (t *archetypeTable) Contains(e ElementType) bool {
	return t.m.IsSet(int(e.ID()))
}

func (t *archetypeTable) ContainsAll(m mask.Mask) bool {
	return t.m.ContainsAll(m)
}

func (t *archetypeTable) ContainsExact(m mask.Mask) bool {
	return t.m == m
}

func (t *archetypeTable) Length() int   { return t.length }
func (t *archetypeTable) Capacity() int { return t.capacity }
func (t *archetypeTable) Schema() Schema { return t.schema }

func (t *archetypeTable) BackRef(row int) int { return t.backRefs[row] }

func (t *archetypeTable) SetBackRef(row, slot int) { t.backRefs[row] = slot }

// safeMake recovers from the runtime out-of-memory panic that a very
// large make([]byte, n) can raise and reports it as ErrOutOfMemory
// instead, so callers see a recoverable error rather than a crash.
func safeMake(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, ErrOutOfMemory
		}
	}()
	return make([]byte, n), nil
}

func (t *archetypeTable) grow() error {
	factor := t.opts.GrowthFactor
	if factor < 2 {
		factor = 2
	}
	newCap := t.opts.InitialCapacity
	if newCap <= 0 {
		newCap = 8
	}
	if t.capacity > 0 {
		newCap = t.capacity * factor
	}

	newBuf, err := safeMake(newCap * int(t.layout.stride))
	if err != nil {
		return err
	}
	copy(newBuf, t.buffer[:t.length*int(t.layout.stride)])
	t.buffer = newBuf
	t.capacity = newCap
	return nil
}

func (t *archetypeTable) NewRow(backRef int) (int, error) {
	if t.length == t.capacity {
		if err := t.grow(); err != nil {
			return 0, err
		}
	}
	row := t.length
	stride := int(t.layout.stride)
	off := row * stride
	clear(t.buffer[off : off+stride])
	t.backRefs = append(t.backRefs, backRef)
	t.length++
	t.events.rowCreated(t, row)
	return row, nil
}

func (t *archetypeTable) DeleteRow(row int) int {
	last := t.length - 1
	stride := int(t.layout.stride)
	movedBackRef := t.backRefs[last]

	t.events.rowDeleted(t, row)

	if row != last {
		srcOff := last * stride
		dstOff := row * stride
		copy(t.buffer[dstOff:dstOff+stride], t.buffer[srcOff:srcOff+stride])
		t.backRefs[row] = t.backRefs[last]
		if t.entries != nil {
			t.entries.Patch(t.backRefs[row], t, row)
		}
	}

	if t.opts.PoisonOnDelete {
		poison(t.buffer[last*stride : (last+1)*stride])
	}

	t.backRefs = t.backRefs[:last]
	t.length--
	return movedBackRef
}

// poison fills a deleted row's bytes with a recognizable sentinel so a
// use-after-delete bug reads garbage instead of silently stale data.
func poison(b []byte) {
	for i := range b {
		b[i] = 0xDE
	}
}

func (t *archetypeTable) CopyFrom(src Table, srcRow, backRef int) (int, error) {
	dstRow, err := t.NewRow(backRef)
	if err != nil {
		return 0, err
	}

	srcImpl, ok := src.(*archetypeTable)
	if !ok {
		return 0, bark.AddTrace(fmt.Errorf("%w: CopyFrom requires a table.Table produced by this package", ErrMaskMismatch))
	}

	shared := t.m & srcImpl.m
	remaining := shared
	for {
		id, ok := remaining.Lowest()
		if !ok {
			break
		}
		remaining.Unmark(id)

		size, _, ok := t.schema.Info(ComponentID(id))
		if !ok {
			continue
		}
		srcOff := srcRow*int(srcImpl.layout.stride) + int(srcImpl.layout.offsets[id])
		dstOff := dstRow*int(t.layout.stride) + int(t.layout.offsets[id])
		copy(t.buffer[dstOff:dstOff+int(size)], srcImpl.buffer[srcOff:srcOff+int(size)])
	}
	return dstRow, nil
}

// componentPointer returns a pointer to component id's bytes within
// row. Callers must have already checked Contains(id); this is the one
// unsafe seam the whole package funnels through.
func (t *archetypeTable) componentPointer(id ComponentID, row int) unsafe.Pointer {
	off := row*int(t.layout.stride) + int(t.layout.offsets[id])
	return unsafe.Pointer(&t.buffer[off])
}

// TableBuilder assembles an archetypeTable from a Mask's component
// list using a fluent NewTableBuilder().With...().Build() shape.
type TableBuilder struct {
	schema  Schema
	entries EntryIndex
	events  TableEvents
	opts    Options
	elems   []ElementType
}

// NewTableBuilder starts a new TableBuilder with the default growth
// policy.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{opts: DefaultOptions()}
}

func (b *TableBuilder) WithSchema(s Schema) *TableBuilder {
	b.schema = s
	return b
}

func (b *TableBuilder) WithEntryIndex(idx EntryIndex) *TableBuilder {
	b.entries = idx
	return b
}

func (b *TableBuilder) WithEvents(events TableEvents) *TableBuilder {
	b.events = events
	return b
}

func (b *TableBuilder) WithOptions(opts Options) *TableBuilder {
	b.opts = opts
	return b
}

func (b *TableBuilder) WithElementTypes(elems ...ElementType) *TableBuilder {
	b.elems = elems
	return b
}

// Build derives the table's Mask and rowLayout from its element types
// and returns an empty, zero-capacity Table. An archetype with no
// components would have zero stride and be unusable, so Build rejects
// one with ErrMaskMismatch instead of silently producing it.
func (b *TableBuilder) Build() (Table, error) {
	if b.schema == nil {
		b.schema = NewSchema()
	}
	b.schema.Register(b.elems...)

	var m mask.Mask
	for _, e := range b.elems {
		m.Mark(int(e.ID()))
	}
	if m.IsEmpty() {
		return nil, bark.AddTrace(fmt.Errorf("%w: archetype must have at least one component", ErrMaskMismatch))
	}

	layout := computeLayout(m, b.schema)
	return &archetypeTable{
		schema:  b.schema,
		entries: b.entries,
		m:       m,
		layout:  layout,
		opts:    b.opts,
		events:  b.events,
	}, nil
}
