package grid

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cells(container string, positions ...int) []Item {
	out := make([]Item, len(positions))
	for i, p := range positions {
		out[i] = Item{ID: string(rune('a' + i)), ContainerID: container, Position: p}
	}
	return out
}

func positionsByID(items []Item) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it.ID] = it.Position
	}
	return m
}

func order(items []Item) []string {
	var ids []string
	for _, it := range Sorted(items) {
		ids = append(ids, it.ID)
	}
	return ids
}

// apply executes moves against an in-memory table and fails the test if
// any single write would collide.
func apply(t *testing.T, items []Item, moves []Move) []Item {
	t.Helper()
	out := Sorted(items)
	for _, m := range moves {
		i := IndexOf(out, m.ItemID)
		require.GreaterOrEqual(t, i, 0, "unknown item %s", m.ItemID)
		for _, other := range out {
			require.False(t, other.ID != m.ItemID && other.Position == m.To,
				"write %s -> %d collides with %s", m.ItemID, m.To, other.ID)
		}
		require.Equal(t, m.From, out[i].Position)
		out[i].Position = m.To
	}
	return out
}

func TestParseEdge(t *testing.T) {
	e, err := ParseEdge(" TOP ")
	require.NoError(t, err)
	assert.Equal(t, EdgeTop, e)
	e, err = ParseEdge("bottom")
	require.NoError(t, err)
	assert.Equal(t, EdgeBottom, e)
	_, err = ParseEdge("middle")
	assert.Error(t, err)
}

func TestPayload_IsEmptyAndClone(t *testing.T) {
	assert.True(t, Payload{}.IsEmpty())

	p := Payload{ImageKeys: []string{"k1"}, Caption: "hi"}
	c := p.Clone()
	c.ImageKeys[0] = "changed"
	assert.Equal(t, "k1", p.ImageKeys[0])
	assert.False(t, p.IsEmpty())
}

func TestFind(t *testing.T) {
	items := cells("c", 0, 1)
	it, err := Find(items, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, it.Position)

	_, err = Find(items, "zz")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = Find(items, "")
	assert.ErrorIs(t, err, ErrEmptyItemID)
}

func TestCheckUnique(t *testing.T) {
	assert.NoError(t, CheckUnique(cells("c", 0, 4, 2)))
	err := CheckUnique(cells("c", 0, 2, 2))
	assert.ErrorIs(t, err, ErrDuplicatePosition)
}

func TestParkingPositionAndOffset(t *testing.T) {
	items := cells("c", 0, 3, 7)
	assert.Equal(t, 7+3+1, ParkingPosition(items))
	assert.Equal(t, 0, ParkingPosition(nil))

	off := Offset(items, 3)
	for _, it := range items {
		assert.Greater(t, it.Position+off, 7)
	}
	// target range wider than the current one
	off = Offset(cells("c", 0, 1), 10)
	assert.Greater(t, off, 9)
}

func TestPlanInsert(t *testing.T) {
	t.Run("empty container", func(t *testing.T) {
		for _, edge := range []Edge{EdgeTop, EdgeBottom} {
			plan := PlanInsert(nil, edge)
			assert.Equal(t, 0, plan.Position)
			assert.Empty(t, plan.Shifts)
		}
	})

	t.Run("bottom", func(t *testing.T) {
		plan := PlanInsert(cells("c", 0, 4, 2), EdgeBottom)
		assert.Equal(t, 5, plan.Position)
		assert.Empty(t, plan.Shifts)
	})

	t.Run("top with free room", func(t *testing.T) {
		plan := PlanInsert(cells("c", 3, 5), EdgeTop)
		assert.Equal(t, 2, plan.Position)
		assert.Empty(t, plan.Shifts)
	})

	t.Run("top at zero shifts everything highest first", func(t *testing.T) {
		items := cells("c", 0, 1, 3)
		plan := PlanInsert(items, EdgeTop)
		assert.Equal(t, 0, plan.Position)
		require.Len(t, plan.Shifts, 3)
		assert.Equal(t, Move{ItemID: "c", From: 3, To: 4}, plan.Shifts[0])

		after := apply(t, items, plan.Shifts)
		assert.Equal(t, []string{"a", "b", "c"}, order(after))
		for _, it := range after {
			assert.NotEqual(t, plan.Position, it.Position)
		}
	})
}

func TestPlanInsert_PreservesRelativeOrder(t *testing.T) {
	items := cells("c", 0, 1, 2, 6)
	before := order(items)
	for _, edge := range []Edge{EdgeTop, EdgeBottom} {
		plan := PlanInsert(items, edge)
		after := apply(t, items, plan.Shifts)
		assert.Equal(t, before, order(after))

		after = append(after, Item{ID: "new", ContainerID: "c", Position: plan.Position})
		require.NoError(t, CheckUnique(after))
		got := order(after)
		if edge == EdgeTop {
			assert.Equal(t, "new", got[0])
		} else {
			assert.Equal(t, "new", got[len(got)-1])
		}
	}
}

func TestPlanRemove(t *testing.T) {
	it, err := PlanRemove(cells("c", 0, 1), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", it.ID)

	_, err = PlanRemove(cells("c", 0, 1), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPlanSwap(t *testing.T) {
	items := cells("c", 0, 1, 2)
	items[0].Payload.Caption = "X"
	items[1].Payload.Caption = "Y"
	items[2].Payload.Caption = "Z"

	plan, err := PlanSwap(items, "a", "c")
	require.NoError(t, err)
	require.Len(t, plan.Moves, 3)
	assert.Equal(t, ParkingPosition(items), plan.Parking)

	after := apply(t, items, plan.Moves)
	got := positionsByID(after)
	assert.Equal(t, map[string]int{"a": 2, "b": 1, "c": 0}, got)

	var captions []string
	for _, it := range Sorted(after) {
		captions = append(captions, it.Payload.Caption)
	}
	assert.Equal(t, []string{"Z", "Y", "X"}, captions)
}

func TestPlanSwap_EdgeCases(t *testing.T) {
	items := cells("c", 0, 1)

	plan, err := PlanSwap(items, "a", "a")
	require.NoError(t, err)
	assert.Empty(t, plan.Moves)

	_, err = PlanSwap(items, "a", "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)

	mixed := append(cells("c", 0), Item{ID: "z", ContainerID: "other", Position: 1})
	_, err = PlanSwap(mixed, "a", "z")
	assert.True(t, errors.Is(err, ErrCrossContainer))
}

func TestApplySwap_Involution(t *testing.T) {
	items := cells("c", 0, 3, 5)
	items[1].Payload.Notes = "keep"

	once, err := ApplySwap(items, "a", "b")
	require.NoError(t, err)
	twice, err := ApplySwap(once, "a", "b")
	require.NoError(t, err)

	assert.Equal(t, positionsByID(items), positionsByID(twice))
	b, _ := Find(twice, "b")
	assert.Equal(t, "keep", b.Payload.Notes)
}

func TestPlanBulkReorder(t *testing.T) {
	items := cells("c", 0, 1, 2, 3)
	desired := []Item{items[3], items[2], items[1], items[0]}

	plan, err := PlanBulkReorder(items, desired)
	require.NoError(t, err)
	assert.Len(t, plan.Parks, 4)
	assert.Len(t, plan.Settles, 4)
	assert.Equal(t, 8, plan.Writes())

	after := apply(t, items, append(plan.Parks, plan.Settles...))
	assert.Equal(t, []string{"d", "c", "b", "a"}, order(after))
	assert.Equal(t, map[string]int{"d": 0, "c": 1, "b": 2, "a": 3}, positionsByID(after))
}

func TestPlanBulkReorder_Idempotent(t *testing.T) {
	items := cells("c", 5, 9, 2)
	desired := []Item{items[1], items[2], items[0]}

	plan, err := PlanBulkReorder(items, desired)
	require.NoError(t, err)
	after := apply(t, items, append(plan.Parks, plan.Settles...))

	again, err := PlanBulkReorder(after, desired)
	require.NoError(t, err)
	assert.Zero(t, again.Writes())
}

func TestPlanBulkReorder_InsertAndRemove(t *testing.T) {
	items := cells("c", 0, 1, 2)
	desired := []Item{{ID: "new", ContainerID: "c"}, items[2], items[0]}

	plan, err := PlanBulkReorder(items, desired)
	require.NoError(t, err)
	require.Len(t, plan.Removals, 1)
	assert.Equal(t, "b", plan.Removals[0].ID)
	require.Len(t, plan.Creations, 1)
	assert.Equal(t, 0, plan.Creations[0].Position)

	remaining := []Item{items[0], items[2]}
	after := apply(t, remaining, append(plan.Parks, plan.Settles...))
	after = append(after, plan.Creations...)
	require.NoError(t, CheckUnique(after))
	assert.Equal(t, []string{"new", "c", "a"}, order(after))
}

func TestPlanBulkReorder_Errors(t *testing.T) {
	items := cells("c", 0, 1)
	_, err := PlanBulkReorder(items, []Item{items[0], items[0]})
	assert.ErrorIs(t, err, ErrDuplicateTarget)

	_, err = PlanBulkReorder(cells("c", 1, 1), nil)
	assert.ErrorIs(t, err, ErrDuplicatePosition)

	_, err = PlanBulkReorder(items, []Item{{}})
	assert.ErrorIs(t, err, ErrEmptyItemID)
}

func TestPlanBulkReorder_FromParkedState(t *testing.T) {
	items := cells("c", 0, 1, 2, 3)
	desired := []Item{items[3], items[2], items[1], items[0]}
	plan, err := PlanBulkReorder(items, desired)
	require.NoError(t, err)

	// interrupted right after the offset pass
	parked := apply(t, items, plan.Parks)
	assert.True(t, NeedsRepair(parked))

	repair, err := PlanBulkReorder(parked, desired)
	require.NoError(t, err)
	after := apply(t, parked, append(repair.Parks, repair.Settles...))
	assert.Equal(t, map[string]int{"d": 0, "c": 1, "b": 2, "a": 3}, positionsByID(after))
	assert.False(t, NeedsRepair(after))
}

func TestRelabel(t *testing.T) {
	items := cells("c", 7, 2, 4)
	out := Relabel(items)
	require.Len(t, out, 3)

	var ids []string
	var positions []int
	for _, it := range out {
		ids = append(ids, it.ID)
		positions = append(positions, it.Position)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, []int{1, 2, 3}, positions)
	// "b" sat at position 2, the lowest
	assert.Equal(t, "c", out[0].ContainerID)
}

func TestInspect(t *testing.T) {
	assert.Empty(t, Inspect(cells("c", 0, 1, 3)))

	found := Inspect(cells("c", 0, -1, 1, 1))
	kinds := map[AnomalyKind]int{}
	for _, a := range found {
		kinds[a.Kind]++
	}
	assert.Equal(t, 1, kinds[AnomalyNegative])
	assert.Equal(t, 1, kinds[AnomalyDuplicate])

	// swap interrupted after its first write
	items := cells("c", 0, 1, 2)
	items[0].Position = ParkingPosition(items)
	stranded := Inspect(items)
	require.Len(t, stranded, 1)
	assert.Equal(t, AnomalyStranded, stranded[0].Kind)
	assert.Equal(t, "a", stranded[0].ItemID)
}
