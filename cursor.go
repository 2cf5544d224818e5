package ecs

import (
	"iter"

	"github.com/spectre256/ecs/table"
)

var _ iCursor = &Cursor{}

type iCursor interface {
	Entities() iter.Seq2[int, table.Table]
	Next() bool
}

// Cursor drives a Scanning/YieldingFrom/Done iterator state machine
// over the archetypes a Query matches. storageIndex plays the role of
// the scan position; currentArchetype and entityIndex together track
// the archetype currently being yielded from. Reaching the end of the
// matched archetype list (or the query matching nothing) is Done.
type Cursor struct {
	query QueryNode
	w     *world

	currentArchetype *archetype
	storageIndex     int
	entityIndex      int
	remaining        int

	initialized     bool
	matchedStorages []*archetype
}

func newCursor(query QueryNode, w World) *Cursor {
	return &Cursor{query: query, w: w.(*world)}
}

// Next advances to the next matching entity, returning false once
// exhausted (Done). While a Cursor holds its iteration lock, the World
// rejects Create, CreateMany, Add, AddWithValue and Remove with
// LockedWorldError, and defers Delete and the Enqueue* calls into its
// operation queue until the lock is released.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.Initialize()
	}
	for c.storageIndex < len(c.matchedStorages) {
		c.currentArchetype = c.matchedStorages[c.storageIndex]
		c.remaining = c.currentArchetype.table.Length()
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.storageIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

// Entities yields (row, Table) pairs across every matching archetype,
// for callers who want to walk whole archetypes rather than single
// entities at a time.
func (c *Cursor) Entities() iter.Seq2[int, table.Table] {
	return func(yield func(int, table.Table) bool) {
		c.Initialize()
		for c.storageIndex < len(c.matchedStorages) {
			c.currentArchetype = c.matchedStorages[c.storageIndex]
			c.remaining = c.currentArchetype.table.Length()
			for c.entityIndex < c.remaining {
				if !yield(c.entityIndex, c.currentArchetype.table) {
					c.Reset()
					return
				}
				c.entityIndex++
			}
			c.entityIndex = 0
			c.storageIndex++
		}
		c.Reset()
	}
}

// Initialize evaluates the query against every archetype once and
// locks the World against iteration-unsafe mutation until Reset.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.w.AddLock(lockIteration)
	c.matchedStorages = c.matchedStorages[:0]
	for _, a := range c.w.archList {
		if c.query.Evaluate(a, c.w) {
			c.matchedStorages = append(c.matchedStorages, a)
		}
	}
	if len(c.matchedStorages) > 0 {
		c.storageIndex = 0
		c.currentArchetype = c.matchedStorages[0]
		c.remaining = c.currentArchetype.table.Length()
	}
	c.initialized = true
}

// Reset clears iteration state and releases the iteration lock,
// draining any operations the World queued up while it was held.
func (c *Cursor) Reset() {
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matchedStorages = nil
	c.initialized = false
	c.w.RemoveLock(lockIteration)
}

// CurrentEntity returns the Entity at the cursor's current position.
func (c *Cursor) CurrentEntity() (Entity, error) {
	row := c.entityIndex - 1
	slot := c.currentArchetype.table.BackRef(row)
	entry, err := c.w.entries.Entry(slot)
	if err != nil {
		return nil, err
	}
	return c.w.Entity(entry.ID())
}

// EntityAtOffset returns the Entity offset rows from the current
// position, within the current archetype only.
func (c *Cursor) EntityAtOffset(offset int) (Entity, error) {
	row := c.entityIndex - 1 + offset
	slot := c.currentArchetype.table.BackRef(row)
	entry, err := c.w.entries.Entry(slot)
	if err != nil {
		return nil, err
	}
	return c.w.Entity(entry.ID())
}

// EntityIndex returns the cursor's 1-based position within the current
// archetype: the current row's index plus one.
func (c *Cursor) EntityIndex() int { return c.entityIndex }

// RemainingInArchetype returns how many rows are left in the current
// archetype after the current one.
func (c *Cursor) RemainingInArchetype() int { return c.remaining - c.entityIndex }

// TotalMatched returns how many entities match the query in total. It
// forces a fresh Initialize/Reset pass.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.Initialize()
	}
	total := 0
	for _, a := range c.matchedStorages {
		total += a.table.Length()
	}
	c.Reset()
	return total
}
