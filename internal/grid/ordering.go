package grid

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

// Sorted returns a copy of items ordered by position, then ID.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	slices.SortStableFunc(out, func(a, b Item) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// IndexOf returns the index of the item with the given ID, or -1.
func IndexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// Find returns the item with the given ID or an error wrapping ErrItemNotFound.
func Find(items []Item, id string) (Item, error) {
	if id == "" {
		return Item{}, ErrEmptyItemID
	}
	i := IndexOf(items, id)
	if i < 0 {
		return Item{}, notFound(id)
	}
	return items[i], nil
}

func bounds(items []Item) (lo, hi int, ok bool) {
	if len(items) == 0 {
		return 0, 0, false
	}
	lo, hi = items[0].Position, items[0].Position
	for _, it := range items[1:] {
		lo = min(lo, it.Position)
		hi = max(hi, it.Position)
	}
	return lo, hi, true
}

// CheckUnique reports the first pair of items sharing a position.
func CheckUnique(items []Item) error {
	seen := make(map[int]string, len(items))
	for _, it := range items {
		if other, ok := seen[it.Position]; ok {
			return fmt.Errorf("%w: position %d held by %s and %s", ErrDuplicatePosition, it.Position, other, it.ID)
		}
		seen[it.Position] = it.ID
	}
	return nil
}

// ParkingPosition is a position no item of the container holds and no
// ordinary operation will assign next: max + count + 1.
func ParkingPosition(items []Item) int {
	_, hi, ok := bounds(items)
	if !ok {
		return 0
	}
	return hi + len(items) + 1
}

// Offset returns a shift that moves every position of items strictly
// above both the current range and the target range 0..targetLen-1.
func Offset(items []Item, targetLen int) int {
	lo, hi, ok := bounds(items)
	if !ok {
		return targetLen + 1
	}
	hi = max(hi, targetLen-1)
	lo = min(lo, 0)
	return hi - lo + len(items) + 1
}

// InsertPlan is the outcome of planning an edge insert. Shifts must be
// applied in order before the new item is created at Position.
type InsertPlan struct {
	Position int
	Shifts   []Move
}

// PlanInsert places a new item before (EdgeTop) or after (EdgeBottom) all
// existing items. When the top has no free position, every existing item
// is shifted up by one, highest first, so each write lands on a vacated
// or unused position.
func PlanInsert(items []Item, edge Edge) InsertPlan {
	lo, hi, ok := bounds(items)
	if !ok {
		return InsertPlan{Position: 0}
	}
	if edge == EdgeBottom {
		return InsertPlan{Position: hi + 1}
	}
	if lo > 0 {
		return InsertPlan{Position: lo - 1}
	}

	sorted := Sorted(items)
	shifts := make([]Move, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		shifts = append(shifts, Move{ItemID: sorted[i].ID, From: sorted[i].Position, To: sorted[i].Position + 1})
	}
	return InsertPlan{Position: lo, Shifts: shifts}
}

// PlanRemove validates that id is present and returns the item to delete.
// Remaining positions are left as they are.
func PlanRemove(items []Item, id string) (Item, error) {
	return Find(items, id)
}

// SwapPlan describes the three writes of a temporary-slot swap. Moves is
// empty when both IDs name the same item.
type SwapPlan struct {
	A, B    Item
	Parking int
	Moves   []Move
}

// PlanSwap exchanges the positions of a and b through a parking position:
// a -> parking, b -> a's position, a -> b's position.
func PlanSwap(items []Item, a, b string) (SwapPlan, error) {
	itemA, err := Find(items, a)
	if err != nil {
		return SwapPlan{}, err
	}
	itemB, err := Find(items, b)
	if err != nil {
		return SwapPlan{}, err
	}
	if a == b {
		return SwapPlan{A: itemA, B: itemB}, nil
	}
	if itemA.ContainerID != itemB.ContainerID {
		return SwapPlan{}, ErrCrossContainer
	}

	parking := ParkingPosition(items)
	return SwapPlan{
		A:       itemA,
		B:       itemB,
		Parking: parking,
		Moves: []Move{
			{ItemID: itemA.ID, From: itemA.Position, To: parking},
			{ItemID: itemB.ID, From: itemB.Position, To: itemA.Position},
			{ItemID: itemA.ID, From: parking, To: itemB.Position},
		},
	}, nil
}

// ApplySwap returns a copy of items with the positions of a and b exchanged.
func ApplySwap(items []Item, a, b string) ([]Item, error) {
	plan, err := PlanSwap(items, a, b)
	if err != nil {
		return nil, err
	}
	out := Sorted(items)
	if len(plan.Moves) == 0 {
		return out, nil
	}
	out[IndexOf(out, a)].Position = plan.B.Position
	out[IndexOf(out, b)].Position = plan.A.Position
	return Sorted(out), nil
}

// ReorderPlan is the offset-then-settle write sequence for a bulk reorder.
// Execution order: Removals, Parks, Settles, Creations.
type ReorderPlan struct {
	Removals  []Item
	Parks     []Move
	Settles   []Move
	Creations []Item
	Offset    int
}

// Writes is the number of store operations the plan performs.
func (p ReorderPlan) Writes() int {
	return len(p.Removals) + len(p.Parks) + len(p.Settles) + len(p.Creations)
}

// PlanBulkReorder plans the writes that give desired[i] position i. Items of
// current missing from desired are removed; items of desired missing from
// current are created. Only items whose position actually changes are parked
// and settled, so planning the current order again yields no writes.
func PlanBulkReorder(current []Item, desired []Item) (ReorderPlan, error) {
	if err := CheckUnique(current); err != nil {
		return ReorderPlan{}, err
	}

	target := make(map[string]int, len(desired))
	for i, it := range desired {
		if it.ID == "" {
			return ReorderPlan{}, ErrEmptyItemID
		}
		if _, dup := target[it.ID]; dup {
			return ReorderPlan{}, fmt.Errorf("%w: %s", ErrDuplicateTarget, it.ID)
		}
		target[it.ID] = i
	}

	var plan ReorderPlan
	kept := make([]Item, 0, len(current))
	known := make(map[string]bool, len(current))
	for _, it := range Sorted(current) {
		known[it.ID] = true
		if _, ok := target[it.ID]; !ok {
			plan.Removals = append(plan.Removals, it)
			continue
		}
		kept = append(kept, it)
	}

	plan.Offset = Offset(kept, len(desired))
	for _, it := range kept {
		to := target[it.ID]
		if it.Position == to {
			continue
		}
		parked := it.Position + plan.Offset
		plan.Parks = append(plan.Parks, Move{ItemID: it.ID, From: it.Position, To: parked})
		plan.Settles = append(plan.Settles, Move{ItemID: it.ID, From: parked, To: to})
	}

	for i, it := range desired {
		if known[it.ID] {
			continue
		}
		created := it.Clone()
		created.Position = i
		plan.Creations = append(plan.Creations, created)
	}
	return plan, nil
}

// Relabel is the legacy array-index-is-identity rewrite: items keep their
// relative order and receive ID "1".."N" and position 1..N.
func Relabel(items []Item) []Item {
	out := Sorted(items)
	for i := range out {
		out[i].ID = strconv.Itoa(i + 1)
		out[i].Position = i + 1
	}
	return out
}
