package ecs

import (
	"testing"

	"github.com/spectre256/ecs/table"
)

func TestArchetypeReuse(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	tests := []struct {
		name                string
		firstComponents     []Component
		secondComponents    []Component
		expectSameArchetype bool
	}{
		{"Identical components", []Component{posComp, velComp}, []Component{posComp, velComp}, true},
		{"Different order", []Component{posComp, velComp}, []Component{velComp, posComp}, true},
		{"Different components", []Component{posComp}, []Component{velComp}, false},
		{"Subset components", []Component{posComp, velComp}, []Component{posComp}, false},
		{"Superset components", []Component{posComp}, []Component{posComp, velComp, healthComp}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Factory.NewWorld()

			id1, err := w.Create(tt.firstComponents...)
			if err != nil {
				t.Fatalf("Failed to create first entity: %v", err)
			}
			id2, err := w.Create(tt.secondComponents...)
			if err != nil {
				t.Fatalf("Failed to create second entity: %v", err)
			}

			e1, _ := w.Entity(id1)
			e2, _ := w.Entity(id2)
			same := e1.Table() == e2.Table()
			if same != tt.expectSameArchetype {
				t.Errorf("same archetype = %v, want %v", same, tt.expectSameArchetype)
			}
		})
	}
}

func TestEntityDestruction(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()

	ids, err := w.CreateMany(10, posComp)
	if err != nil {
		t.Fatalf("Failed to create entities: %v", err)
	}

	for _, i := range []int{0, 2, 4, 6, 8} {
		w.Delete(ids[i])
	}

	query := Factory.NewQuery()
	queryNode := query.And(posComp)
	cursor := Factory.NewCursor(queryNode, w)

	count := 0
	for cursor.Next() {
		count++
	}
	if count != 5 {
		t.Errorf("Entity count after destruction: %d, want 5", count)
	}
}

func TestDestructionIsSwapRemoveConsistent(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()

	ids, err := w.CreateMany(5, posComp)
	if err != nil {
		t.Fatalf("Failed to create entities: %v", err)
	}
	for i, id := range ids {
		p := posComp.Get(mustIndex(t, w, id), mustTable(t, w, id))
		p.X = float64(i)
	}

	// Delete a middle entity; whichever entity the swap-remove moved
	// into its row must still read its own, un-corrupted value.
	w.Delete(ids[1])

	for i, id := range ids {
		if i == 1 {
			continue
		}
		if !w.Alive(id) {
			t.Fatalf("entity %d should still be alive", i)
		}
		p := posComp.Get(mustIndex(t, w, id), mustTable(t, w, id))
		if p.X != float64(i) {
			t.Errorf("entity %d has X=%v after an unrelated delete, want %v", i, p.X, i)
		}
	}
}

func mustIndex(t *testing.T, w World, id EntityID) int {
	t.Helper()
	e, err := w.Entity(id)
	if err != nil {
		t.Fatalf("Entity() error = %v", err)
	}
	return e.Index()
}

func mustTable(t *testing.T, w World, id EntityID) table.Table {
	t.Helper()
	e, err := w.Entity(id)
	if err != nil {
		t.Fatalf("Entity() error = %v", err)
	}
	return e.Table()
}

func TestHasAndArchetypes(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	id, err := w.Create(posComp)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !w.Has(id, posComp) {
		t.Error("Has(posComp) = false, want true")
	}
	if w.Has(id, velComp) {
		t.Error("Has(velComp) = true, want false")
	}

	if _, err := w.Create(posComp, velComp); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	archetypes := w.Archetypes()
	if len(archetypes) != 2 {
		t.Fatalf("Archetypes() returned %d archetypes, want 2", len(archetypes))
	}
	for _, a := range archetypes {
		if a.Table() == nil {
			t.Error("Archetype.Table() returned nil")
		}
	}
}

func TestQueuedEntityOperationsDrainOnUnlock(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	id, err := w.Create(posComp)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	e, _ := w.Entity(id)

	w.AddLock(lockIteration)
	e.EnqueueAddComponent(velComp)
	if w.Has(id, velComp) {
		t.Fatal("queued AddComponent applied before the world unlocked")
	}
	w.RemoveLock(lockIteration)

	if !w.Has(id, velComp) {
		t.Fatal("queued AddComponent never applied after unlock")
	}

	w.AddLock(lockIteration)
	e.EnqueueRemoveComponent(posComp)
	w.RemoveLock(lockIteration)
	if w.Has(id, posComp) {
		t.Fatal("queued RemoveComponent never applied after unlock")
	}

	w.AddLock(lockIteration)
	w.EnqueueCreate(2, posComp)
	w.RemoveLock(lockIteration)

	query := Factory.NewQuery()
	node := query.And(posComp)
	cursor := Factory.NewCursor(node, w)
	count := 0
	for cursor.Next() {
		count++
	}
	if count != 2 {
		t.Fatalf("queued CreateMany produced %d matching entities, want 2", count)
	}
}

func TestLockUnlockConveniencePair(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()

	w.Lock()
	if !w.Locked() {
		t.Fatal("Lock() did not lock the world")
	}
	w.EnqueueCreate(1, posComp)
	w.Unlock()
	if w.Locked() {
		t.Fatal("Unlock() did not unlock the world")
	}

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(posComp), w)
	if !cursor.Next() {
		t.Fatal("queued create under Lock()/Unlock() never applied")
	}
}

func TestWorldLocking(t *testing.T) {
	tests := []struct {
		name      string
		lockBits  []uint32
		unlockIdx int
		checks    []bool
	}{
		{"Single lock", []uint32{lockIteration}, 0, []bool{true, false}},
		{"Multiple locks", []uint32{lockIteration, lockMutation}, 0, []bool{true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Factory.NewWorld()
			posComp := FactoryNewComponent[Position]()

			for _, bit := range tt.lockBits {
				w.AddLock(bit)
			}
			if w.Locked() != tt.checks[0] {
				t.Errorf("initial lock state: %v, want %v", w.Locked(), tt.checks[0])
			}

			w.EnqueueCreate(5, posComp)

			w.RemoveLock(tt.lockBits[tt.unlockIdx])
			if w.Locked() != tt.checks[1] {
				t.Errorf("mid-operation lock state: %v, want %v", w.Locked(), tt.checks[1])
			}

			for i, bit := range tt.lockBits {
				if i != tt.unlockIdx {
					w.RemoveLock(bit)
				}
			}
			if w.Locked() {
				t.Fatal("world should be fully unlocked")
			}

			query := Factory.NewQuery()
			queryNode := query.And(posComp)
			cursor := Factory.NewCursor(queryNode, w)
			count := 0
			for cursor.Next() {
				count++
			}
			if count != 5 {
				t.Errorf("entity count after unlocking: %d, want 5", count)
			}
		})
	}
}
