package ecs

import (
	"fmt"
	"reflect"

	"github.com/spectre256/ecs/mask"
	"github.com/spectre256/ecs/table"
)

// Lock bits for World.locks, a mask.Mask256 rather than a plain bool so
// iteration locks and deferred-mutation locks can be held independently
// without one releasing the other early.
const (
	lockIteration uint32 = iota
	lockMutation
)

// World is the top-level orchestrator: it owns the Schema, the Entry
// Table, and every archetype Table, and is the sole entry point for
// create/delete/add/remove/iterate. Each World is an independent
// instance, so multiple worlds can coexist in a process.
type World interface {
	// Create reserves a new entity with the given initial component
	// set and returns its handle.
	Create(components ...Component) (EntityID, error)
	// CreateMany is Create repeated n times against the same archetype.
	CreateMany(n int, components ...Component) ([]EntityID, error)
	EnqueueCreate(n int, components ...Component)

	// Delete removes an entity. It is a no-op, not an error, if id is
	// already dead or stale.
	Delete(id EntityID)
	EnqueueDelete(id EntityID)

	Alive(id EntityID) bool
	Has(id EntityID, c Component) bool

	Add(id EntityID, c Component) error
	AddWithValue(id EntityID, c Component, value any) error
	Remove(id EntityID, c Component) error
	EnqueueAdd(id EntityID, c Component)
	EnqueueAddWithValue(id EntityID, c Component, value any)
	EnqueueRemove(id EntityID, c Component)

	Entity(id EntityID) (Entity, error)

	Register(components ...Component)
	RowIndexFor(c Component) uint32
	Schema() table.Schema
	Archetypes() []Archetype

	Locked() bool
	AddLock(bit uint32)
	RemoveLock(bit uint32)
	Lock()
	Unlock()
	Enqueue(EntityOperation)
}

var _ World = &world{}

type world struct {
	schema     table.Schema
	entries    table.EntryIndex
	archList   []*archetype
	archByMask map[mask.Mask]*archetype
	locks      mask.Mask256
	queue      EntityOperationsQueue
	cfg        config

	// wrappers caches one *entity per live Entry Table slot, indexed by
	// slot. Relationship state (SetParent/SetDestroyCallback) lives on
	// the *entity value itself, so World.Entity must keep handing back
	// the same instance for a given live EntityID rather than minting a
	// fresh, blank one on every call.
	wrappers []*entity
}

func newWorld(schema table.Schema, cfg config) World {
	return &world{
		schema:     schema,
		entries:    table.Factory.NewEntryIndex(),
		archByMask: make(map[mask.Mask]*archetype),
		queue:      &entityOperationsQueue{},
		cfg:        cfg,
	}
}

func (w *world) Schema() table.Schema { return w.schema }

func (w *world) RowIndexFor(c Component) uint32 {
	w.schema.Register(c)
	return w.schema.RowIndexFor(c)
}

func (w *world) Register(components ...Component) {
	for _, c := range components {
		w.schema.Register(c)
	}
}

func (w *world) Archetypes() []Archetype {
	out := make([]Archetype, len(w.archList))
	for i, a := range w.archList {
		out[i] = a
	}
	return out
}

// archetypeFor finds or builds the archetype for exactly this
// component set, the shared primitive behind Create/Add/Remove.
func (w *world) archetypeFor(components ...Component) (*archetype, error) {
	var m mask.Mask
	for _, c := range components {
		w.schema.Register(c)
		m.Mark(int(c.ID()))
	}
	if rec, ok := w.archByMask[m]; ok {
		return rec, nil
	}
	rec, err := newArchetype(w.schema, w.entries, w.cfg.tableEvents, w.cfg.tableOptions, archetypeID(len(w.archList)+1), components...)
	if err != nil {
		return nil, err
	}
	w.archByMask[m] = rec
	w.archList = append(w.archList, rec)
	return rec, nil
}

// archetypeOf reverse-looks-up the archetype record backing tbl, so
// migration code can read its element list.
func (w *world) archetypeOf(tbl table.Table) *archetype {
	for _, rec := range w.archList {
		if rec.table == tbl {
			return rec
		}
	}
	return nil
}

func (w *world) Create(components ...Component) (EntityID, error) {
	if w.Locked() {
		return 0, LockedWorldError{}
	}
	rec, err := w.archetypeFor(components...)
	if err != nil {
		return 0, err
	}
	return w.createRowIn(rec)
}

// createRowIn reserves the row before allocating the Entry Table slot,
// then patches the row's back-reference once the slot is known,
// closing the chicken-and-egg gap between the two data structures.
func (w *world) createRowIn(rec *archetype) (EntityID, error) {
	row, err := rec.table.NewRow(0)
	if err != nil {
		return 0, err
	}
	entry := w.entries.Alloc(rec.table, row)
	slot := int(entry.ID().Slot())
	rec.table.SetBackRef(row, slot)
	return entry.ID(), nil
}

func (w *world) CreateMany(n int, components ...Component) ([]EntityID, error) {
	if w.Locked() {
		return nil, LockedWorldError{}
	}
	rec, err := w.archetypeFor(components...)
	if err != nil {
		return nil, err
	}
	ids := make([]EntityID, 0, n)
	for i := 0; i < n; i++ {
		id, err := w.createRowIn(rec)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (w *world) EnqueueCreate(n int, components ...Component) {
	if !w.Locked() {
		w.CreateMany(n, components...)
		return
	}
	w.Enqueue(NewEntityOperation{count: n, components: components})
}

func (w *world) Delete(id EntityID) {
	if w.Locked() {
		w.EnqueueDelete(id)
		return
	}
	if !w.entries.Alive(id) {
		return
	}
	slot := int(id.Slot())
	w.fireDestroyCallback(slot, id)
	entry, _ := w.entries.Entry(slot)
	tbl := entry.Table()
	row := entry.Index()
	tbl.DeleteRow(row)
	w.entries.Free(slot)
}

// fireDestroyCallback invokes the onDestroy callback a caller registered
// via Entity.SetDestroyCallback, if any, just before slot's row is
// swap-removed and its Entry Table slot freed.
func (w *world) fireDestroyCallback(slot int, id EntityID) {
	if slot >= len(w.wrappers) || w.wrappers[slot] == nil {
		return
	}
	e := w.wrappers[slot]
	if e.id != id || e.relationships.onDestroy == nil {
		return
	}
	e.relationships.onDestroy(e)
}

func (w *world) EnqueueDelete(id EntityID) {
	if !w.Locked() {
		w.Delete(id)
		return
	}
	w.Enqueue(DestroyEntityOperation{staleGuarded{id: id, generation: id.Generation()}})
}

func (w *world) Alive(id EntityID) bool {
	return w.entries.Alive(id)
}

func (w *world) Has(id EntityID, c Component) bool {
	if !w.entries.Alive(id) {
		return false
	}
	entry, _ := w.entries.Entry(int(id.Slot()))
	return entry.Table().Contains(c)
}

func (w *world) Add(id EntityID, c Component) error {
	return w.addComponent(id, c, nil)
}

func (w *world) AddWithValue(id EntityID, c Component, value any) error {
	return w.addComponent(id, c, &value)
}

// addComponent runs the add() migration: build (or reuse) the
// destination archetype, copy the overlapping columns across via
// Table.CopyFrom, optionally write the new column's value, then
// swap-remove the old row and patch the Entry Table. If the new row's
// value write fails, the reserved destination row is rolled back so
// the World is left exactly as it was before the call, honoring the
// "failure leaves the world unchanged" contract.
func (w *world) addComponent(id EntityID, c Component, value *any) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	if !w.entries.Alive(id) {
		return EntityDeadError{ID: id}
	}
	slot := int(id.Slot())
	entry, _ := w.entries.Entry(slot)
	oldTbl := entry.Table()
	if oldTbl.Contains(c) {
		return ComponentAlreadyPresentError{Entity: id, Component: c}
	}

	oldRec := w.archetypeOf(oldTbl)
	newElems := append(append([]Component{}, oldRec.elems...), c)
	newRec, err := w.archetypeFor(newElems...)
	if err != nil {
		return err
	}

	oldRow := entry.Index()
	newRow, err := newRec.table.CopyFrom(oldTbl, oldRow, slot)
	if err != nil {
		return err
	}

	if value != nil {
		if err := writeComponentValue(newRec.table, c, newRow, *value); err != nil {
			newRec.table.DeleteRow(newRow)
			return err
		}
	}

	oldTbl.DeleteRow(oldRow)
	w.entries.Patch(slot, newRec.table, newRow)
	return nil
}

func (w *world) Remove(id EntityID, c Component) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	if !w.entries.Alive(id) {
		return EntityDeadError{ID: id}
	}
	slot := int(id.Slot())
	entry, _ := w.entries.Entry(slot)
	oldTbl := entry.Table()
	if !oldTbl.Contains(c) {
		return ComponentMissingError{Entity: id, Component: c}
	}

	oldRec := w.archetypeOf(oldTbl)
	newElems := make([]Component, 0, len(oldRec.elems)-1)
	for _, e := range oldRec.elems {
		if e.ID() != c.ID() {
			newElems = append(newElems, e)
		}
	}
	if len(newElems) == 0 {
		return ErrEmptyComponentSet
	}

	newRec, err := w.archetypeFor(newElems...)
	if err != nil {
		return err
	}

	oldRow := entry.Index()
	newRow, err := newRec.table.CopyFrom(oldTbl, oldRow, slot)
	if err != nil {
		return err
	}
	oldTbl.DeleteRow(oldRow)
	w.entries.Patch(slot, newRec.table, newRow)
	return nil
}

func (w *world) EnqueueAdd(id EntityID, c Component) {
	if !w.Locked() {
		w.Add(id, c)
		return
	}
	w.Enqueue(AddComponentOperation{staleGuarded: staleGuarded{id: id, generation: id.Generation()}, component: c})
}

func (w *world) EnqueueAddWithValue(id EntityID, c Component, value any) {
	if !w.Locked() {
		w.AddWithValue(id, c, value)
		return
	}
	w.Enqueue(AddComponentOperation{staleGuarded: staleGuarded{id: id, generation: id.Generation()}, component: c, value: &value})
}

func (w *world) EnqueueRemove(id EntityID, c Component) {
	if !w.Locked() {
		w.Remove(id, c)
		return
	}
	w.Enqueue(RemoveComponentOperation{staleGuarded: staleGuarded{id: id, generation: id.Generation()}, component: c})
}

// writeComponentValue writes value into the freshly migrated row,
// checking its dynamic type matches the component's own type via
// reflect before the write.
func writeComponentValue(tbl table.Table, c Component, row int, value any) error {
	vt := reflect.TypeOf(value)
	if vt != c.Type() {
		return fmt.Errorf("ecs: invalid value type %v for component %v", vt, c.Type())
	}
	return table.SetComponentValue(tbl, c.ID(), row, reflect.ValueOf(value))
}

// Entity returns the cached *entity wrapper for id's slot, minting one
// if this slot has never been wrapped or a prior occupant's generation
// has since moved on (in which case its relationship state is discarded
// along with it, matching a fresh entity's zero-value relationships).
func (w *world) Entity(id EntityID) (Entity, error) {
	if !w.entries.Alive(id) {
		return nil, EntityDeadError{ID: id}
	}
	slot := int(id.Slot())
	for len(w.wrappers) <= slot {
		w.wrappers = append(w.wrappers, nil)
	}
	if w.wrappers[slot] == nil || w.wrappers[slot].id != id {
		w.wrappers[slot] = &entity{id: id, w: w}
	}
	return w.wrappers[slot], nil
}

func (w *world) Locked() bool {
	return !w.locks.IsEmpty()
}

func (w *world) AddLock(bit uint32) {
	w.locks.Mark(bit)
}

func (w *world) RemoveLock(bit uint32) {
	w.locks.Unmark(bit)
	if w.locks.IsEmpty() {
		if err := w.queue.ProcessAll(w); err != nil {
			panic(fmt.Errorf("ecs: error draining queued operations: %w", err))
		}
	}
}

// Lock and Unlock are the public, reentrancy-unaware convenience form
// of AddLock/RemoveLock for callers who just want to batch a run of
// mutations behind one flush, using lockMutation's bit.
func (w *world) Lock()   { w.AddLock(lockMutation) }
func (w *world) Unlock() { w.RemoveLock(lockMutation) }

func (w *world) Enqueue(op EntityOperation) {
	w.queue.Enqueue(op)
}
