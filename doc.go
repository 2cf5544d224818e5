/*
Package ecs is an archetype-based Entity-Component-System storage
engine. Entities sharing an identical component set live packed
together in one dense, row-major Table; adding or removing a component
migrates an entity's row to a different Table rather than leaving gaps
in the one it came from.

Core concepts:

  - EntityID: an opaque, copyable handle, a (slot, generation) pair
    packed into a uint64. A stale handle (its entity was deleted, and
    possibly the slot reused) is detected by generation mismatch, never
    by dereferencing freed memory.
  - Component: a type's registered identity, obtained once via
    FactoryNewComponent and reused everywhere that type is named.
  - World: owns the component registry, the Entry Table, and every
    archetype; the sole entry point for create/delete/add/remove/query.
  - Query/Cursor: a composable filter over archetypes and the iterator
    that walks the entities matching it.

Basic usage:

	w := ecs.Factory.NewWorld()

	position := ecs.FactoryNewComponent[Position]()
	velocity := ecs.FactoryNewComponent[Velocity]()

	id, _ := w.Create(position, velocity)

	q := ecs.Factory.NewQuery()
	node := q.And(position, velocity)
	cursor := ecs.Factory.NewCursor(node, w)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

This package assumes a single mutator at a time: nothing here is safe
for concurrent use from multiple goroutines.
*/
package ecs
