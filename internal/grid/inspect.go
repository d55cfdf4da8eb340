package grid

// AnomalyKind classifies an inconsistency found by Inspect.
type AnomalyKind string

const (
	AnomalyDuplicate AnomalyKind = "duplicate"
	AnomalyNegative  AnomalyKind = "negative"
	// AnomalyStranded marks an item sitting far above the rest of the
	// container, which is where interrupted swaps and reorders park items.
	AnomalyStranded AnomalyKind = "stranded"
)

type Anomaly struct {
	Kind     AnomalyKind
	ItemID   string
	Position int
}

// Inspect looks for leftovers of an interrupted reconciliation. A position is
// stranded when it is more than len(items) above the previous one: parking
// and offset positions always are, ordinary deletion holes rarely are.
func Inspect(items []Item) []Anomaly {
	var out []Anomaly
	sorted := Sorted(items)
	prev := -1
	for i, it := range sorted {
		switch {
		case it.Position < 0:
			out = append(out, Anomaly{Kind: AnomalyNegative, ItemID: it.ID, Position: it.Position})
		case i > 0 && it.Position == sorted[i-1].Position:
			out = append(out, Anomaly{Kind: AnomalyDuplicate, ItemID: it.ID, Position: it.Position})
		case it.Position-prev > len(sorted):
			out = append(out, Anomaly{Kind: AnomalyStranded, ItemID: it.ID, Position: it.Position})
		}
		prev = it.Position
	}
	return out
}

// NeedsRepair reports whether Inspect found anything.
func NeedsRepair(items []Item) bool {
	return len(Inspect(items)) > 0
}
