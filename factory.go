package ecs

import "github.com/spectre256/ecs/table"

// factory implements the factory-function pattern used throughout this
// package for object construction.
type factory struct{}

// Factory is the package's entry point for World, Query, and Cursor
// construction.
var Factory factory

// NewWorld creates a new World backed by a fresh Schema, using
// Config's current table events and growth options.
func (f factory) NewWorld() World {
	return newWorld(table.Factory.NewSchema(), Config)
}

// NewQuery creates a new empty Query.
func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor creates a new Cursor over query against w.
func (f factory) NewCursor(query QueryNode, w World) *Cursor {
	return newCursor(query, w)
}

// FactoryNewComponent mints (or recalls) the ComponentID for T and
// returns an AccessibleComponent bound to it.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	elem := table.FactoryNewElementType[T]()
	return AccessibleComponent[T]{
		Component: elem,
		Accessor:  table.FactoryNewAccessor[T](elem),
	}
}

// FactoryNewCache creates a new Cache with the given fixed capacity.
func FactoryNewCache[T any](capacity int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}
