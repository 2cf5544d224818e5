package ecs

import (
	"sort"

	"github.com/spectre256/ecs/table"
)

// archetypeID identifies one archetype within a World, in creation
// order. It has no meaning across Worlds.
type archetypeID uint32

// Archetype pairs a backing Table with the identity the World and
// query layer use to refer to it.
type Archetype interface {
	ID() uint32
	Table() table.Table
}

type archetype struct {
	id    archetypeID
	table table.Table
	// elems holds the component identities backing this archetype, in
	// the ascending-ID order newArchetype sorts them into. Kept here
	// (rather than only in the table's Mask) because building a new
	// archetype for a superset/subset mask during add/remove needs the
	// concrete element list, not just the bits.
	elems []Component
}

func newArchetype(schema table.Schema, entries table.EntryIndex, events table.TableEvents, opts table.Options, id archetypeID, components ...Component) (*archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, c := range components {
		elementTypes[i] = c
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entries).
		WithElementTypes(elementTypes...).
		WithEvents(events).
		WithOptions(opts).
		Build()
	if err != nil {
		return nil, err
	}
	elems := append([]Component(nil), components...)
	sort.Slice(elems, func(i, j int) bool { return elems[i].ID() < elems[j].ID() })
	return &archetype{id: id, table: tbl, elems: elems}, nil
}

func (a *archetype) ID() uint32         { return uint32(a.id) }
func (a *archetype) Table() table.Table { return a.table }
