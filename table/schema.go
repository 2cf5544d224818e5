package table

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/spectre256/ecs/mask"
)

// ComponentID is a dense nonnegative integer identifying a component
// type, stable within a process. ComponentID < mask.MaxBits always.
type ComponentID uint32

// ElementType is the minimal shape a component type's identity object
// must have: a stable ID, its reflect.Type, and the (size, align) pair
// the layout calculator needs. Components produced by
// FactoryNewElementType satisfy it.
type ElementType interface {
	ID() ComponentID
	Type() reflect.Type
	Size() uintptr
	Align() uintptr
}

var (
	typeRegistryMu sync.Mutex
	typeToID       = make(map[reflect.Type]ComponentID)
	nextID         ComponentID
)

// elementType is the concrete ElementType minted by
// FactoryNewElementType. Identity (ID, reflect.Type) is global and
// process-wide; (size, align) is fixed at minting time from T itself,
// so it never needs a runtime dictionary lookup on the hot path.
type elementType struct {
	id    ComponentID
	typ   reflect.Type
	size  uintptr
	align uintptr
}

func (e elementType) ID() ComponentID    { return e.id }
func (e elementType) Type() reflect.Type { return e.typ }
func (e elementType) Size() uintptr      { return e.size }
func (e elementType) Align() uintptr     { return e.align }

// FactoryNewElementType mints (or recalls) the ComponentID for T. The
// component-universe-full condition is fatal and unrecoverable, so it
// panics rather than returning an error; callers mint component
// identities at init time, not on a hot path where a recoverable
// error would matter.
func FactoryNewElementType[T any]() ElementType {
	var zero T
	typ := reflect.TypeOf(zero)

	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()

	if id, ok := typeToID[typ]; ok {
		return elementType{
			id:    id,
			typ:   typ,
			size:  unsafe.Sizeof(zero),
			align: typeAlign(typ),
		}
	}

	if int(nextID) >= mask.MaxBits {
		panic(bark.AddTrace(fmt.Errorf("%w: cannot register component %s, universe already holds %d types", ErrComponentUniverseFull, typ, mask.MaxBits)))
	}

	id := nextID
	typeToID[typ] = id
	nextID++

	return elementType{
		id:    id,
		typ:   typ,
		size:  unsafe.Sizeof(zero),
		align: typeAlign(typ),
	}
}

func typeAlign(t reflect.Type) uintptr {
	return uintptr(t.Align())
}

// IDOf looks up the ComponentID already minted for T without minting a
// new one. It reports ok=false if T has never been passed to
// FactoryNewElementType.
func IDOf[T any]() (ComponentID, bool) {
	var zero T
	typ := reflect.TypeOf(zero)

	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()

	id, ok := typeToID[typ]
	return id, ok
}

// Schema is the per-World view of the component type registry: it
// records, for each ComponentID this World has seen, the (size, align)
// pair the layout calculator needs. Minting global IDs is handled by
// FactoryNewElementType; Schema only tracks which IDs a given World has
// observed and their sizing, which lets multiple isolated Worlds run
// in one process.
type Schema interface {
	Register(elems ...ElementType)
	RowIndexFor(e ElementType) uint32
	Info(id ComponentID) (size, align uintptr, ok bool)
}

type schema struct {
	sizes  [mask.MaxBits]uintptr
	aligns [mask.MaxBits]uintptr
	seen   mask.Mask
}

// Register records (size, align) for each element's ID. It is
// idempotent: registering the same type twice is a no-op.
func (s *schema) Register(elems ...ElementType) {
	for _, e := range elems {
		id := e.ID()
		s.sizes[id] = e.Size()
		s.aligns[id] = e.Align()
		s.seen.Mark(int(id))
	}
}

// RowIndexFor returns the bit index (ComponentID) for an element type.
func (s *schema) RowIndexFor(e ElementType) uint32 {
	return uint32(e.ID())
}

// Info returns the (size, align) recorded for id, or ok=false if this
// Schema has never seen it.
func (s *schema) Info(id ComponentID) (size, align uintptr, ok bool) {
	if !s.seen.IsSet(int(id)) {
		return 0, 0, false
	}
	return s.sizes[id], s.aligns[id], true
}

// NewSchema creates an empty, grow-as-you-go component registry for one
// World.
func NewSchema() Schema {
	return &schema{}
}
