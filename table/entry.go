package table

// EntryID is an opaque 64-bit handle: a 32-bit slot packed with a
// 32-bit generation. Equality and copyability are the only operations
// callers need; Slot/Generation exist for the World and for tests,
// not for general use.
type EntryID uint64

func newEntryID(slot, generation uint32) EntryID {
	return EntryID(uint64(generation)<<32 | uint64(slot))
}

// Slot returns the handle's index into the Entry Table.
func (id EntryID) Slot() uint32 { return uint32(id) }

// Generation returns the handle's generation, compared against the
// slot's current generation to detect a stale handle.
func (id EntryID) Generation() uint32 { return uint32(id >> 32) }

// Entry is a live view onto one Entry Table slot: which Table currently
// holds the entry's row, which row, and how many times the slot has
// been recycled (its generation). Recycled is the staleness signal a
// caller compares against an earlier-recorded count to detect that a
// slot was freed and reused underneath it.
type Entry interface {
	ID() EntryID
	Index() int
	Recycled() int
	Table() Table
}

// entryRecord is one Entry Table row. When live, table/row describe the
// entry's position; when free, row instead holds the index of the next
// free slot (or this slot's own index, self-terminating the chain).
type entryRecord struct {
	table      Table
	row        uint32
	generation uint32
	live       bool
}

// EntryIndex is a generational handle table: a grow-only vector of
// entries with an embedded free-slot list.
type EntryIndex interface {
	// Alloc reserves a slot for a new entry pointing at (tbl, row),
	// reusing a freed slot if one is available.
	Alloc(tbl Table, row int) Entry
	// Entry returns a live view of slot. The returned Entry is valid
	// only as long as slot is not freed or reused.
	Entry(slot int) (Entry, error)
	// Patch updates the (table, row) of a live slot, used after a
	// migration or a swap-remove that moved a different entity into
	// this slot's old row.
	Patch(slot int, tbl Table, row int)
	// Free marks slot dead, bumps its generation, and links it into
	// the free list. It reports whether the slot was already dead
	// (the double-delete guard is the caller's responsibility, since
	// only the caller holds the EntryID to check against).
	Free(slot int) bool
	// Alive reports whether id's generation matches its slot's current
	// generation.
	Alive(id EntryID) bool
}

type entryIndex struct {
	records  []entryRecord
	freeHead int // -1 means the free list is empty
}

// NewEntryIndex creates an empty Entry Table.
func NewEntryIndex() EntryIndex {
	return &entryIndex{freeHead: -1}
}

func (idx *entryIndex) Alloc(tbl Table, row int) Entry {
	var slot int
	if idx.freeHead >= 0 {
		slot = idx.freeHead
		next := idx.records[slot].row
		if int(next) == slot {
			idx.freeHead = -1
		} else {
			idx.freeHead = int(next)
		}
		idx.records[slot].table = tbl
		idx.records[slot].row = uint32(row)
		idx.records[slot].live = true
	} else {
		slot = len(idx.records)
		idx.records = append(idx.records, entryRecord{
			table: tbl,
			row:   uint32(row),
			live:  true,
		})
	}
	return entryHandle{idx: idx, slot: slot}
}

func (idx *entryIndex) Entry(slot int) (Entry, error) {
	if slot < 0 || slot >= len(idx.records) {
		return nil, ErrInvalidSlot
	}
	return entryHandle{idx: idx, slot: slot}, nil
}

func (idx *entryIndex) Patch(slot int, tbl Table, row int) {
	idx.records[slot].table = tbl
	idx.records[slot].row = uint32(row)
}

func (idx *entryIndex) Free(slot int) bool {
	rec := &idx.records[slot]
	if !rec.live {
		return true
	}
	rec.live = false
	rec.table = nil
	rec.generation++ // wraps on overflow

	if idx.freeHead < 0 {
		rec.row = uint32(slot) // self-terminator
	} else {
		rec.row = uint32(idx.freeHead)
	}
	idx.freeHead = slot
	return false
}

func (idx *entryIndex) Alive(id EntryID) bool {
	slot := int(id.Slot())
	if slot < 0 || slot >= len(idx.records) {
		return false
	}
	rec := idx.records[slot]
	return rec.live && rec.generation == id.Generation()
}

// entryHandle is a thin, always-current view into one entryIndex slot;
// it never caches record fields so it stays correct across Patch/Free.
type entryHandle struct {
	idx  *entryIndex
	slot int
}

func (h entryHandle) ID() EntryID {
	return newEntryID(uint32(h.slot), h.idx.records[h.slot].generation)
}

func (h entryHandle) Index() int {
	return int(h.idx.records[h.slot].row)
}

func (h entryHandle) Recycled() int {
	return int(h.idx.records[h.slot].generation)
}

func (h entryHandle) Table() Table {
	return h.idx.records[h.slot].table
}
