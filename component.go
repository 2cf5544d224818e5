package ecs

import "github.com/spectre256/ecs/table"

// Component is a component type's identity: a stable ComponentID plus
// the (size, align) pair the layout calculator needs. Obtain one via
// FactoryNewComponent, never by constructing a value directly.
type Component interface {
	table.ElementType
}
