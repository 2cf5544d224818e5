package ecs

import (
	"testing"
)

func TestQueryFiltering(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	type entitySetup struct {
		components []Component
		count      int
	}

	tests := []struct {
		name            string
		entitySetups    []entitySetup
		queryType       string
		queryComponents []Component
		expectedMatches int
	}{
		{
			name: "And query matches exact",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "and",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 5,
		},
		{
			name: "Or query matches either",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "or",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 30,
		},
		{
			name: "Not query excludes",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
				{[]Component{healthComp}, 20},
			},
			queryType:       "not",
			queryComponents: []Component{velComp},
			expectedMatches: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Factory.NewWorld()
			for _, setup := range tt.entitySetups {
				if _, err := w.CreateMany(setup.count, setup.components...); err != nil {
					t.Fatalf("Failed to create entities: %v", err)
				}
			}

			query := Factory.NewQuery()
			interfaceComponents := make([]any, len(tt.queryComponents))
			for i, comp := range tt.queryComponents {
				interfaceComponents[i] = comp
			}

			var queryNode QueryNode
			switch tt.queryType {
			case "and":
				queryNode = query.And(interfaceComponents...)
			case "or":
				queryNode = query.Or(interfaceComponents...)
			case "not":
				queryNode = query.Not(interfaceComponents...)
			}

			cursor := Factory.NewCursor(queryNode, w)
			matchCount := 0
			for cursor.Next() {
				matchCount++
			}
			if matchCount != tt.expectedMatches {
				t.Errorf("Query matched %d entities, want %d", matchCount, tt.expectedMatches)
			}
		})
	}
}

func TestComplexQuery(t *testing.T) {
	w := Factory.NewWorld()
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	setups := []struct {
		components []Component
		count      int
	}{
		{[]Component{posComp, velComp, healthComp}, 5},
		{[]Component{posComp, velComp}, 10},
		{[]Component{posComp, healthComp}, 15},
		{[]Component{velComp, healthComp}, 20},
		{[]Component{posComp}, 25},
		{[]Component{velComp}, 30},
		{[]Component{healthComp}, 35},
	}
	for _, s := range setups {
		if _, err := w.CreateMany(s.count, s.components...); err != nil {
			t.Fatalf("Failed to create entities: %v", err)
		}
	}

	query := Factory.NewQuery()
	andQuery1 := query.And(posComp, velComp)
	andQuery2 := query.And(posComp, healthComp)
	queryNode := query.Or(andQuery1, andQuery2)

	cursor := Factory.NewCursor(queryNode, w)
	count := 0
	for cursor.Next() {
		count++
	}
	// (P AND V) OR (P AND H): the 5-count archetype has both and is
	// counted once, plus the 10-count and 15-count archetypes.
	want := 5 + 10 + 15
	if count != want {
		t.Errorf("Complex query matched %d entities, want %d", count, want)
	}
}

func TestQueryWithCursor(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	tests := []struct {
		name            string
		entityTypes     [][]Component
		queryComponents []Component
		expectedCount   int
	}{
		{
			name:            "Query with position",
			entityTypes:     [][]Component{{posComp}, {posComp, velComp}, {velComp}},
			queryComponents: []Component{posComp},
			expectedCount:   20,
		},
		{
			name:            "Query with position and velocity",
			entityTypes:     [][]Component{{posComp}, {posComp, velComp}, {velComp}},
			queryComponents: []Component{posComp, velComp},
			expectedCount:   10,
		},
		{
			name:            "Query with no matches",
			entityTypes:     [][]Component{{posComp}, {velComp}},
			queryComponents: []Component{healthComp},
			expectedCount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Factory.NewWorld()
			for _, componentSet := range tt.entityTypes {
				if _, err := w.CreateMany(10, componentSet...); err != nil {
					t.Fatalf("Failed to create entities: %v", err)
				}
			}

			query := Factory.NewQuery()
			interfaceComponents := make([]any, len(tt.queryComponents))
			for i, comp := range tt.queryComponents {
				interfaceComponents[i] = comp
			}
			queryNode := query.And(interfaceComponents...)

			cursor := Factory.NewCursor(queryNode, w)
			count1 := 0
			for cursor.Next() {
				count1++
			}

			cursor = Factory.NewCursor(queryNode, w)
			count2 := cursor.TotalMatched()

			if count1 != count2 {
				t.Errorf("Cursor counts inconsistent: %d vs %d", count1, count2)
			}
			if count1 != tt.expectedCount {
				t.Errorf("Query matched %d entities, want %d", count1, tt.expectedCount)
			}
		})
	}
}

func TestQueryComponentAccess(t *testing.T) {
	w := Factory.NewWorld()

	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	for i := 0; i < 10; i++ {
		id, err := w.Create(posComp)
		if err != nil {
			t.Fatalf("Failed to create entity: %v", err)
		}
		e, _ := w.Entity(id)

		pos := posComp.GetFromEntity(e)
		pos.X, pos.Y = float64(i), float64(i*2)

		vel := Velocity{X: float64(i) * 0.1, Y: float64(i) * 0.2}
		if err := e.AddComponentWithValue(velComp, vel); err != nil {
			t.Fatalf("Failed to add velocity: %v", err)
		}
	}

	query := Factory.NewQuery()
	queryNode := query.And(posComp, velComp)
	cursor := Factory.NewCursor(queryNode, w)

	for cursor.Next() {
		e, err := cursor.CurrentEntity()
		if err != nil {
			t.Fatalf("Failed to get current entity: %v", err)
		}
		pos := posComp.GetFromEntity(e)
		vel := velComp.GetFromEntity(e)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	cursor = Factory.NewCursor(queryNode, w)
	for cursor.Next() {
		e, err := cursor.CurrentEntity()
		if err != nil {
			t.Fatalf("Failed to get current entity: %v", err)
		}
		pos := posComp.GetFromEntity(e)
		vel := velComp.GetFromEntity(e)

		// X started at 10*vel.X (since X=i, vel.X=i*0.1), then gained
		// one more vel.X from the update pass above.
		expectedX := vel.X * 10
		if !almostEqual(pos.X-vel.X, expectedX, 0.0001) {
			t.Errorf("Position.X=%v with velocity.X=%v doesn't match expected pattern (want pre-update %v)",
				pos.X, vel.X, expectedX)
		}
	}
}

func almostEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
