// Package snapshot turns the persisted, possibly sparse item list of a
// container into the dense sequence of cells a grid view renders.
package snapshot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
)

const placeholderPrefix = "placeholder-"

// Cell is one rendered slot. Placeholder cells carry a synthetic ID and an
// empty payload.
type Cell struct {
	Index       int
	Item        grid.Item
	Placeholder bool
}

// PlaceholderID is the synthetic identity of the empty cell at index.
func PlaceholderID(index int) string {
	return placeholderPrefix + strconv.Itoa(index)
}

// Densify lays items out by position (0-based) over
// max(maxPosition+1, minSize) cells and fills holes with placeholders.
// Negative positions, duplicate IDs and duplicate positions are logged and
// the later entry is dropped. Placeholder IDs never repeat a real item's ID.
func Densify(ctx context.Context, items []grid.Item, minSize int, logger logging.Logger) []Cell {
	size := minSize
	seenID := make(map[string]bool, len(items))
	byPos := make(map[int]grid.Item, len(items))

	for _, it := range items {
		switch {
		case it.Position < 0:
			logger.Warn(ctx, "dropping item with negative position", "item_id", it.ID, "position", it.Position)
			continue
		case seenID[it.ID]:
			logger.Warn(ctx, "dropping duplicate item", "item_id", it.ID, "position", it.Position)
			continue
		}
		if other, ok := byPos[it.Position]; ok {
			logger.Warn(ctx, "dropping item on occupied position",
				"item_id", it.ID, "position", it.Position, "kept", other.ID)
			continue
		}
		seenID[it.ID] = true
		byPos[it.Position] = it.Clone()
		size = max(size, it.Position+1)
	}

	cells := make([]Cell, size)
	for i := range cells {
		if it, ok := byPos[i]; ok {
			cells[i] = Cell{Index: i, Item: it}
			continue
		}
		id := placeholderFor(i, seenID)
		seenID[id] = true
		cells[i] = Cell{Index: i, Placeholder: true, Item: grid.Item{ID: id, Position: i}}
	}
	return cells
}

// placeholderFor returns PlaceholderID(index), suffixed when a real item
// already uses that ID.
func placeholderFor(index int, taken map[string]bool) string {
	id := PlaceholderID(index)
	for n := 1; taken[id]; n++ {
		id = PlaceholderID(index) + "." + strconv.Itoa(n)
	}
	return id
}

// Lister is the read side of the Data Store.
type Lister interface {
	ListItems(ctx context.Context, containerID string) ([]grid.Item, error)
}

type Loader struct {
	lister  Lister
	minSize int
	logger  logging.Logger
}

// NewLoader builds a Loader. A minSize below 1 falls back to
// common.MinimumGridSize.
func NewLoader(lister Lister, minSize int, logger logging.Logger) *Loader {
	if minSize < 1 {
		minSize = common.MinimumGridSize
	}
	return &Loader{lister: lister, minSize: minSize, logger: logger.With("module", "snapshot")}
}

// Load fetches a container and densifies it.
func (l *Loader) Load(ctx context.Context, containerID string) ([]Cell, error) {
	items, err := l.lister.ListItems(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return Densify(ctx, items, l.minSize, l.logger.With("container_id", containerID)), nil
}

// Rows splits cells into rows of the given width for rendering.
func Rows(cells []Cell, width int) [][]Cell {
	if width < 1 {
		width = common.GridColumns
	}
	var rows [][]Cell
	for i := 0; i < len(cells); i += width {
		rows = append(rows, cells[i:min(i+width, len(cells))])
	}
	return rows
}
