package table

import "github.com/spectre256/ecs/mask"

// rowLayout is the output of the layout calculator: the per-component
// byte offset within a row, the row's stride, and the alignment the
// row buffer's base address must satisfy.
type rowLayout struct {
	offsets [mask.MaxBits]uint32
	stride  uint32
	align   uint32
}

// computeLayout derives a rowLayout from a component Mask and the
// Schema recording each set component's (size, align). Components are
// placed in ascending component-ID order, each at the least offset
// >= the current cursor that satisfies its own alignment; stride is
// the cursor after the last component, NOT padded to the row's
// alignment, since each component's own offset alignment is already
// sufficient once the buffer base is aligned to the row's alignment.
func computeLayout(m mask.Mask, s Schema) rowLayout {
	var l rowLayout
	var cursor uint32
	var rowAlign uint32 = 1

	remaining := m
	for {
		id, ok := remaining.Lowest()
		if !ok {
			break
		}
		remaining.Unmark(id)

		size, align, ok := s.Info(ComponentID(id))
		if !ok {
			continue
		}
		a := uint32(align)
		if a == 0 {
			a = 1
		}
		if a > rowAlign {
			rowAlign = a
		}

		cursor = alignUp(cursor, a)
		l.offsets[id] = cursor
		cursor += uint32(size)
	}

	l.stride = cursor
	l.align = rowAlign
	return l
}

// alignUp rounds n up to the next multiple of align, which must be a
// power of two.
func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
