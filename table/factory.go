package table

// factory implements the factory pattern used throughout this package
// for object construction.
type factory struct{}

// Factory is the package's entry point for schema and entry-index
// construction.
var Factory factory

// NewSchema creates an empty component registry.
func (f factory) NewSchema() Schema {
	return NewSchema()
}

// NewEntryIndex creates an empty Entry Table.
func (f factory) NewEntryIndex() EntryIndex {
	return NewEntryIndex()
}
