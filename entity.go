package ecs

import (
	"sort"
	"strings"

	"github.com/TheBitDrifter/bark"
	"github.com/spectre256/ecs/table"
)

// EntityID is an opaque handle: copyable, comparable, and otherwise
// meaningless outside the World that issued it. It is table.EntryID
// directly, the packed (slot, generation) pair, so there is no
// separate wrapper type to keep in sync with it.
type EntityID = table.EntryID

// Verify entity implements Entity.
var _ Entity = &entity{}

// Entity is an ergonomic, object-oriented view bound to one EntityID.
// It exists for callers who want method-call convenience (SetParent,
// AddComponent, ...); the World's own methods, keyed directly by
// EntityID, are the canonical operations and are what Entity's
// methods delegate to.
type Entity interface {
	table.Entry

	World() World
	Valid() bool

	SetParent(parent Entity, callback EntityDestroyCallback) error
	Parent() Entity
	SetDestroyCallback(EntityDestroyCallback) error

	AddComponent(Component) error
	AddComponentWithValue(Component, any) error
	RemoveComponent(Component) error

	EnqueueAddComponent(Component)
	EnqueueAddComponentWithValue(Component, any)
	EnqueueRemoveComponent(Component)

	Components() []Component
	ComponentsAsString() string
}

// EntityDestroyCallback is invoked with the dying entity just before
// its row is swap-removed.
type EntityDestroyCallback func(Entity)

type relationships struct {
	recycled  int
	parent    Entity
	onDestroy EntityDestroyCallback
}

type entity struct {
	id            EntityID
	w             *world
	relationships relationships
}

func (e *entity) ID() EntityID { return e.id }

// entry returns the live Entry Table view backing e. It panics (via
// bark.AddTrace) only if e.id's slot is out of range for the World's
// Entry Table, which can't happen through normal use: entity values
// are only ever constructed by World.Entity, which already validated
// the slot.
func (e *entity) entry() table.Entry {
	en, err := e.w.entries.Entry(int(e.id.Slot()))
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return en
}

func (e *entity) Index() int            { return e.entry().Index() }
func (e *entity) Recycled() int         { return e.entry().Recycled() }
func (e *entity) Table() table.Table    { return e.entry().Table() }
func (e *entity) World() World          { return e.w }
func (e *entity) Valid() bool           { return e.w.entries.Alive(e.id) }

// SetParent establishes a parent-child relationship. The child
// remembers the parent's current Recycled count; if the parent is
// later deleted and its slot reused, Parent() notices the mismatch and
// reports no parent rather than pointing at an unrelated entity.
func (e *entity) SetParent(parent Entity, callback EntityDestroyCallback) error {
	if e.relationships.parent != nil {
		return EntityRelationError{Child: e, Parent: e.relationships.parent}
	}
	e.relationships.parent = parent
	e.relationships.recycled = parent.Recycled()
	return parent.SetDestroyCallback(callback)
}

func (e *entity) Parent() Entity {
	p := e.relationships.parent
	if p == nil {
		return nil
	}
	if p.Recycled() != e.relationships.recycled {
		return nil
	}
	return p
}

func (e *entity) SetDestroyCallback(callback EntityDestroyCallback) error {
	e.relationships.onDestroy = callback
	return nil
}

func (e *entity) AddComponent(c Component) error {
	return e.w.Add(e.id, c)
}

func (e *entity) AddComponentWithValue(c Component, value any) error {
	return e.w.AddWithValue(e.id, c, value)
}

func (e *entity) RemoveComponent(c Component) error {
	return e.w.Remove(e.id, c)
}

func (e *entity) EnqueueAddComponent(c Component) {
	e.w.EnqueueAdd(e.id, c)
}

func (e *entity) EnqueueAddComponentWithValue(c Component, value any) {
	e.w.EnqueueAddWithValue(e.id, c, value)
}

func (e *entity) EnqueueRemoveComponent(c Component) {
	e.w.EnqueueRemove(e.id, c)
}

// Components lists this entity's components in the ascending-ID order
// its archetype stores them.
func (e *entity) Components() []Component {
	rec := e.w.archetypeOf(e.entry().Table())
	if rec == nil {
		return nil
	}
	return rec.elems
}

// ComponentsAsString returns a sorted, formatted list of component
// type names, for debugging and log output.
func (e *entity) ComponentsAsString() string {
	comps := e.Components()
	if len(comps) == 0 {
		return "[]"
	}
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		typeName := c.Type().String()
		typeName = strings.TrimPrefix(typeName, "*")
		parts := strings.Split(typeName, ".")
		names = append(names, parts[len(parts)-1])
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
