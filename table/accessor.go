package table

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
	"github.com/spectre256/ecs/mask"
)

// Accessor is a typed, allocation-free handle for reading/writing one
// component column of an archetype table. Every pointer into a
// Table's byte buffer is handed out through here (or through
// GetComponent below), never by callers doing their own offset
// arithmetic.
type Accessor[T any] struct {
	elem ElementType
}

// FactoryNewAccessor builds an Accessor bound to elem's ComponentID.
func FactoryNewAccessor[T any](elem ElementType) Accessor[T] {
	return Accessor[T]{elem: elem}
}

// Check reports whether tbl carries this accessor's component.
func (a Accessor[T]) Check(tbl Table) bool {
	return tbl.Contains(a.elem)
}

// Get returns a pointer to the component's value for row in tbl. The
// caller must have already confirmed Check(tbl); Get does not
// re-validate on the hot path.
func (a Accessor[T]) Get(row int, tbl Table) *T {
	t := tbl.(*archetypeTable)
	return (*T)(t.componentPointer(a.elem.ID(), row))
}

// GetComponent returns a nullable pointer to T on the given row, or nil
// if tbl does not carry that component.
func GetComponent[T any](tbl Table, elem ElementType, row int) *T {
	if !tbl.Contains(elem) {
		return nil
	}
	t := tbl.(*archetypeTable)
	return (*T)(t.componentPointer(elem.ID(), row))
}

// GetByID returns a pointer to component id's value on row, or nil if
// tbl does not carry id. Unlike GetComponent, it needs only the
// ComponentID, not a full ElementType, which is used where the caller
// looked the ID up via IDOf instead of holding an ElementType value.
func GetByID[T any](tbl Table, id ComponentID, row int) *T {
	if !tbl.Mask().IsSet(int(id)) {
		return nil
	}
	t := tbl.(*archetypeTable)
	return (*T)(t.componentPointer(id, row))
}

// SetComponentValue writes value (whose dynamic type must exactly
// match the component's own type) into row's column for id. It is the
// reflect-based counterpart to Get/GetComponent, used where a caller
// supplies a value dynamically (add-with-value) rather than through a
// statically typed Accessor[T].
func SetComponentValue(tbl Table, id ComponentID, row int, value reflect.Value) error {
	if !tbl.Mask().IsSet(int(id)) {
		return bark.AddTrace(fmt.Errorf("%w: table does not carry component %d", ErrMaskMismatch, id))
	}
	t := tbl.(*archetypeTable)
	ptr := t.componentPointer(id, row)
	reflect.NewAt(value.Type(), ptr).Elem().Set(value)
	return nil
}

// EnsureInOrder is the debug-time invariant check for any projection
// row type: its declared fields must be presented in ascending
// component-ID order, because offset resolution walks the archetype's
// mask in that same order. Violating it is flagged as a programming
// error via bark.AddTrace, not returned as a runtime error.
func EnsureInOrder(elems ...ElementType) {
	for i := 1; i < len(elems); i++ {
		if elems[i-1].ID() >= elems[i].ID() {
			panic(bark.AddTrace(fmt.Errorf(
				"%w: component %v (id %d) must come before %v (id %d)",
				ErrFieldOrder, elems[i-1].Type(), elems[i-1].ID(), elems[i].Type(), elems[i].ID(),
			)))
		}
	}
}

// RequireExact panics via bark.AddTrace if tbl's mask is not exactly
// the mask formed by elems, the precondition a row projection read
// requires before it can trust fixed offsets into the table.
func RequireExact(tbl Table, elems ...ElementType) {
	var want mask.Mask
	for _, e := range elems {
		want.Mark(int(e.ID()))
	}
	if !tbl.ContainsExact(want) {
		panic(bark.AddTrace(fmt.Errorf("%w: get_row requires an exact mask match", ErrMaskMismatch)))
	}
}
