package ecs

import (
	"iter"

	"github.com/spectre256/ecs/mask"
	"github.com/spectre256/ecs/table"
)

// GetComponent returns a pointer to T on the given entity, and false if
// T was never registered or the entity doesn't carry it: absent
// rather than erroring when the column is missing.
func GetComponent[T any](w World, id EntityID) (*T, bool) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, false
	}
	compID, ok := table.IDOf[T]()
	if !ok {
		return nil, false
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	ptr := table.GetByID[T](entry.Table(), compID, entry.Index())
	return ptr, ptr != nil
}

// GetMany2 is the two-component form of get_many<Projection>: it
// returns pointers to T1 and T2 on the given entity if both are
// present. c1/c2 exist only so the caller doesn't have to separately
// name the types via FactoryNewComponent; the arity-bounded family
// (here through 4) mirrors the hand-written GetComponentN functions
// edwinsyarief-lazyecs generates for the same reason: Go has no
// variadic type parameters.
func GetMany2[T1, T2 any](w World, id EntityID, c1, c2 Component) (*T1, *T2, bool) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, nil, false
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	tbl := entry.Table()
	if !tbl.Contains(c1) || !tbl.Contains(c2) {
		return nil, nil, false
	}
	row := entry.Index()
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row), true
}

// GetMany3 is GetMany2 for three components.
func GetMany3[T1, T2, T3 any](w World, id EntityID, c1, c2, c3 Component) (*T1, *T2, *T3, bool) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, nil, nil, false
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	tbl := entry.Table()
	if !tbl.Contains(c1) || !tbl.Contains(c2) || !tbl.Contains(c3) {
		return nil, nil, nil, false
	}
	row := entry.Index()
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row), table.GetByID[T3](tbl, c3.ID(), row), true
}

// GetMany4 is GetMany2 for four components.
func GetMany4[T1, T2, T3, T4 any](w World, id EntityID, c1, c2, c3, c4 Component) (*T1, *T2, *T3, *T4, bool) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, nil, nil, nil, false
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	tbl := entry.Table()
	if !tbl.Contains(c1) || !tbl.Contains(c2) || !tbl.Contains(c3) || !tbl.Contains(c4) {
		return nil, nil, nil, nil, false
	}
	row := entry.Index()
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row),
		table.GetByID[T3](tbl, c3.ID(), row), table.GetByID[T4](tbl, c4.ID(), row), true
}

// GetRow2 is the get_row<RowType> contract for a two-component
// projection: unlike GetMany2, it requires the entity's archetype to
// match c1,c2 exactly (no extra components), and returns
// ComponentMissingError rather than ok=false so a caller can tell "not
// this exact shape" from "dead entity".
func GetRow2[T1, T2 any](w World, id EntityID, c1, c2 Component) (*T1, *T2, error) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, nil, EntityDeadError{ID: id}
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	tbl := entry.Table()
	var want mask.Mask
	want.Mark(int(c1.ID()))
	want.Mark(int(c2.ID()))
	if !tbl.ContainsExact(want) {
		return nil, nil, ComponentMissingError{Entity: id, Component: c1}
	}
	row := entry.Index()
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row), nil
}

// GetRow3 is GetRow2 for three components.
func GetRow3[T1, T2, T3 any](w World, id EntityID, c1, c2, c3 Component) (*T1, *T2, *T3, error) {
	ww := w.(*world)
	if !ww.entries.Alive(id) {
		return nil, nil, nil, EntityDeadError{ID: id}
	}
	entry, _ := ww.entries.Entry(int(id.Slot()))
	tbl := entry.Table()
	var want mask.Mask
	want.Mark(int(c1.ID()))
	want.Mark(int(c2.ID()))
	want.Mark(int(c3.ID()))
	if !tbl.ContainsExact(want) {
		return nil, nil, nil, ComponentMissingError{Entity: id, Component: c1}
	}
	row := entry.Index()
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row),
		table.GetByID[T3](tbl, c3.ID(), row), nil
}

// GetRowFromCursor2 reads a two-component projection at the cursor's
// current row. Unlike GetRow2, it trusts the Query that produced cursor
// to already guarantee the exact archetype shape {c1, c2}, so it skips
// cursor.CurrentEntity()'s EntityID round-trip entirely. When
// Config.Debug is set it re-verifies that contract with
// table.EnsureInOrder/table.RequireExact and panics rather than
// returning an error, since a mismatch here means the query and the
// projection were built inconsistently: a programmer error, not
// something a caller should branch on.
func GetRowFromCursor2[T1, T2 any](cursor *Cursor, c1, c2 Component) (*T1, *T2) {
	tbl := cursor.currentArchetype.table
	if cursor.w.cfg.Debug {
		table.EnsureInOrder(c1, c2)
		table.RequireExact(tbl, c1, c2)
	}
	row := cursor.entityIndex - 1
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row)
}

// GetRowFromCursor3 is GetRowFromCursor2 for three components.
func GetRowFromCursor3[T1, T2, T3 any](cursor *Cursor, c1, c2, c3 Component) (*T1, *T2, *T3) {
	tbl := cursor.currentArchetype.table
	if cursor.w.cfg.Debug {
		table.EnsureInOrder(c1, c2, c3)
		table.RequireExact(tbl, c1, c2, c3)
	}
	row := cursor.entityIndex - 1
	return table.GetByID[T1](tbl, c1.ID(), row), table.GetByID[T2](tbl, c2.ID(), row), table.GetByID[T3](tbl, c3.ID(), row)
}

// Each iterates every entity whose archetype is exactly {T}: a
// homogeneous fast path for the common case of a system touching a
// single component with no filtering.
func Each[T any](w World) iter.Seq2[EntityID, *T] {
	ww := w.(*world)
	compID, ok := table.IDOf[T]()
	if !ok {
		return func(func(EntityID, *T) bool) {}
	}
	var want mask.Mask
	want.Mark(int(compID))

	return func(yield func(EntityID, *T) bool) {
		ww.AddLock(lockIteration)
		defer ww.RemoveLock(lockIteration)
		for _, rec := range ww.archList {
			if !rec.table.ContainsExact(want) {
				continue
			}
			for row := 0; row < rec.table.Length(); row++ {
				slot := rec.table.BackRef(row)
				entry, err := ww.entries.Entry(slot)
				if err != nil {
					continue
				}
				ptr := table.GetByID[T](rec.table, compID, row)
				if !yield(entry.ID(), ptr) {
					return
				}
			}
		}
	}
}
