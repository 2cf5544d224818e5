package ecs

import (
	"errors"
	"fmt"

	"github.com/spectre256/ecs/table"
)

// ErrOutOfMemory and ErrComponentUniverseFull are re-exported from the
// storage layer so callers only need to errors.Is against this
// package, never reaching into table directly.
var (
	ErrOutOfMemory           = table.ErrOutOfMemory
	ErrComponentUniverseFull = table.ErrComponentUniverseFull
)

// ErrEmptyComponentSet is returned by Remove when removing the given
// component would leave an entity with zero components. A
// zero-component archetype is not representable (its row stride
// would be zero), so an entity's component set can never become
// empty through Remove; destroy the entity with Delete instead.
var ErrEmptyComponentSet = errors.New("ecs: removing this component would leave the entity with no components")

// LockedWorldError is returned by mutating operations while the World
// is locked (typically: called from inside an active Cursor
// iteration). Use the Enqueue* variants instead, which defer the
// operation until the World unlocks.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "ecs: world is currently locked"
}

// EntityDeadError is returned when an operation is given an EntityID
// whose generation no longer matches its slot. The handle refers to an
// entity that has since been deleted (and possibly replaced by a
// newer one reusing the same slot).
type EntityDeadError struct {
	ID EntityID
}

func (e EntityDeadError) Error() string {
	return fmt.Sprintf("ecs: entity %d (generation %d) is dead", e.ID.Slot(), e.ID.Generation())
}

// ComponentAlreadyPresentError is returned by Add when the entity
// already carries the given component.
type ComponentAlreadyPresentError struct {
	Entity    EntityID
	Component Component
}

func (e ComponentAlreadyPresentError) Error() string {
	return fmt.Sprintf("ecs: entity %d already has component %v", e.Entity.Slot(), e.Component.Type())
}

// ComponentMissingError is returned by Remove when the entity does not
// carry the given component. It is a reported error, not a silent
// no-op, because a caller removing a component it believes is present
// almost always has a bug worth surfacing.
type ComponentMissingError struct {
	Entity    EntityID
	Component Component
}

func (e ComponentMissingError) Error() string {
	return fmt.Sprintf("ecs: entity %d has no component %v", e.Entity.Slot(), e.Component.Type())
}

// EntityRelationError is returned by SetParent when the child already
// has a parent.
type EntityRelationError struct {
	Child, Parent Entity
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("ecs: entity %d already has a parent", e.Child.ID().Slot())
}
