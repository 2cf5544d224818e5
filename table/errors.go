package table

import "errors"

// Sentinel errors for the storage engine's recoverable conditions.
// EntityDead, ComponentAlreadyPresent, and ComponentMissing are raised
// by the World, not this package, but live alongside ErrOutOfMemory
// and ErrComponentUniverseFull so callers can errors.Is against one
// set.
var (
	// ErrOutOfMemory is returned when a row or buffer allocation fails.
	// Mutations that return it leave the table in its pre-call state.
	ErrOutOfMemory = errors.New("table: allocation failed")

	// ErrComponentUniverseFull is the fatal, unrecoverable condition
	// raised when a component type is registered after the component
	// universe already holds mask.MaxBits distinct types.
	ErrComponentUniverseFull = errors.New("table: component universe full")

	// ErrMaskMismatch guards the ordering and exactness contracts of
	// row access and projection reads. It signals a programming error,
	// not a runtime condition a caller should branch on, and is always
	// wrapped with bark.AddTrace before it reaches a caller.
	ErrMaskMismatch = errors.New("table: mask mismatch")

	// ErrFieldOrder signals a projection whose fields were not supplied
	// in ascending component-ID order.
	ErrFieldOrder = errors.New("table: projection fields out of order")

	// ErrInvalidSlot is returned by EntryIndex.Entry for a slot outside
	// the Entry Table's current range.
	ErrInvalidSlot = errors.New("table: slot out of range")
)
