package ecs

import "github.com/spectre256/ecs/table"

// AccessibleComponent pairs a Component's identity with a typed
// Accessor for it, so callers who already have one in hand (from
// FactoryNewComponent) can read/write it directly against a Cursor or
// Entity without a second type-parameterized lookup.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T]
}

// cursorRow resolves the (row, table) pair a Cursor currently points
// at, the shape every Cursor-based accessor below needs.
func cursorRow(cursor *Cursor) (int, table.Table) {
	return cursor.entityIndex - 1, cursor.currentArchetype.table
}

func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	_, tbl := cursorRow(cursor)
	return c.Accessor.Check(tbl)
}

// GetFromCursor returns a pointer to T at the cursor's current
// position. The caller must have already confirmed CheckCursor, or
// know the query guarantees this component is present.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	row, tbl := cursorRow(cursor)
	return c.Get(row, tbl)
}

// GetFromCursorSafe checks presence first, returning (false, nil)
// rather than a dangling pointer when the archetype lacks T.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if !c.CheckCursor(cursor) {
		return false, nil
	}
	return true, c.GetFromCursor(cursor)
}

// GetFromEntity returns a pointer to T on the given entity. The caller
// must have already confirmed the entity carries this component.
func (c AccessibleComponent[T]) GetFromEntity(e Entity) *T {
	return c.Get(e.Index(), e.Table())
}
