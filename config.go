package ecs

import "github.com/spectre256/ecs/table"

// Config holds process-wide defaults applied to every World created
// through Factory.NewWorld.
var Config config = config{
	tableOptions: table.DefaultOptions(),
}

type config struct {
	tableEvents  table.TableEvents
	tableOptions table.Options
	// Debug enables extra invariant checks (ascending field order,
	// exact-mask row access) on top of the always-on recoverable error
	// checks. Off by default since they walk a projection's fields on
	// every call.
	Debug bool
}

// SetTableEvents configures the row lifecycle callbacks carried by the
// archetype tables of every World created afterwards through
// Factory.NewWorld. A World copies Config when it is created, so
// existing Worlds keep the events they started with.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetTableOptions configures the growth policy and delete-poisoning
// behavior used by the archetype tables of every World created
// afterwards through Factory.NewWorld; existing Worlds keep their own
// copy. An InitialCapacity of zero or less falls back to 8 and a
// GrowthFactor below 2 falls back to 2.
func (c *config) SetTableOptions(opts table.Options) {
	c.tableOptions = opts
}
