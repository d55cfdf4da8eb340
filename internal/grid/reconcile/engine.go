// Package reconcile turns grid operations into sequences of single-row
// store writes that never put two items of a container on the same
// position, even though the store checks uniqueness after every write and
// offers no multi-row atomicity.
//
// Writes of one reconciliation are issued strictly one after another. When
// a write fails the remaining ones are abandoned and a *PartialError is
// returned; completed writes are not rolled back. Repair re-runs the
// offset-then-settle strategy from whatever state the container is in.
package reconcile

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
)

// Store is the remote Data Store as seen by the engine. Every call is
// atomic for one row only.
type Store interface {
	ListItems(ctx context.Context, containerID string) ([]grid.Item, error)
	CreateItem(ctx context.Context, item grid.Item) (grid.Item, error)
	UpdatePosition(ctx context.Context, containerID, itemID string, position int) (grid.Item, error)
	UpdatePayload(ctx context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error)
	DeleteItem(ctx context.Context, containerID, itemID string) error
}

// Result carries the authoritative rows the store returned. Confirmed holds
// the last row seen per item, in write order.
type Result struct {
	Confirmed []grid.Item
	Deleted   []string
	Writes    int
}

func (r *Result) confirm(it grid.Item) {
	for i := range r.Confirmed {
		if r.Confirmed[i].ID == it.ID {
			r.Confirmed[i] = it
			return
		}
	}
	r.Confirmed = append(r.Confirmed, it)
}

// PartialError reports a reconciliation that stopped after Completed of
// Total writes. The container may hold parked or offset positions. ItemID
// is the item the failing write targeted.
type PartialError struct {
	Op        string
	ItemID    string
	Completed int
	Total     int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s aborted after %d of %d writes: %v", e.Op, e.Completed, e.Total, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

type Engine struct {
	store  Store
	logger logging.Logger
}

func New(store Store, logger logging.Logger) *Engine {
	return &Engine{store: store, logger: logger.With("module", "reconcile")}
}

// write is one store call; it returns the confirmed row, if any.
type write struct {
	itemID string
	desc   string
	do     func(ctx context.Context) (*grid.Item, error)
}

func (e *Engine) run(ctx context.Context, op, containerID string, writes []write) (Result, error) {
	var res Result
	for i, w := range writes {
		if err := ctx.Err(); err != nil {
			return res, &PartialError{Op: op, ItemID: w.itemID, Completed: i, Total: len(writes), Err: err}
		}
		it, err := w.do(ctx)
		if err != nil {
			e.logger.Warn(ctx, "reconciliation aborted",
				"op", op, "container_id", containerID, "step", w.desc,
				"completed", i, "total", len(writes), "error", err)
			return res, &PartialError{Op: op, ItemID: w.itemID, Completed: i, Total: len(writes), Err: err}
		}
		res.Writes++
		if it != nil {
			res.confirm(*it)
		}
		e.logger.Debug(ctx, "write confirmed", "op", op, "step", w.desc)
	}
	e.logger.Info(ctx, "reconciliation finished", "op", op, "container_id", containerID, "writes", res.Writes)
	return res, nil
}

func (e *Engine) move(containerID string, m grid.Move) write {
	return write{
		itemID: m.ItemID,
		desc:   fmt.Sprintf("move %s %d->%d", m.ItemID, m.From, m.To),
		do: func(ctx context.Context) (*grid.Item, error) {
			it, err := e.store.UpdatePosition(ctx, containerID, m.ItemID, m.To)
			if err != nil {
				return nil, err
			}
			return &it, nil
		},
	}
}

func (e *Engine) create(item grid.Item) write {
	return write{
		itemID: item.ID,
		desc:   fmt.Sprintf("create %s@%d", item.ID, item.Position),
		do: func(ctx context.Context) (*grid.Item, error) {
			it, err := e.store.CreateItem(ctx, item)
			if err != nil {
				return nil, err
			}
			return &it, nil
		},
	}
}

func (e *Engine) remove(containerID, itemID string, res *[]string) write {
	return write{
		itemID: itemID,
		desc:   "delete " + itemID,
		do: func(ctx context.Context) (*grid.Item, error) {
			if err := e.store.DeleteItem(ctx, containerID, itemID); err != nil {
				return nil, err
			}
			*res = append(*res, itemID)
			return nil, nil
		},
	}
}

// Insert creates item at the given edge of current. item must carry its
// ID and ContainerID; its Position is assigned here.
func (e *Engine) Insert(ctx context.Context, current []grid.Item, item grid.Item, edge grid.Edge) (Result, error) {
	plan := grid.PlanInsert(current, edge)
	item.Position = plan.Position

	writes := make([]write, 0, len(plan.Shifts)+1)
	for _, m := range plan.Shifts {
		writes = append(writes, e.move(item.ContainerID, m))
	}
	writes = append(writes, e.create(item))
	return e.run(ctx, "insert", item.ContainerID, writes)
}

// Remove deletes one item; the positions of the others are untouched.
func (e *Engine) Remove(ctx context.Context, current []grid.Item, itemID string) (Result, error) {
	it, err := grid.PlanRemove(current, itemID)
	if err != nil {
		return Result{}, err
	}
	var deleted []string
	res, err := e.run(ctx, "remove", it.ContainerID, []write{e.remove(it.ContainerID, it.ID, &deleted)})
	res.Deleted = deleted
	return res, err
}

// Swap exchanges the positions of a and b with the temporary-slot
// strategy. Swapping an item with itself performs no writes.
func (e *Engine) Swap(ctx context.Context, current []grid.Item, a, b string) (Result, error) {
	plan, err := grid.PlanSwap(current, a, b)
	if err != nil {
		return Result{}, err
	}
	if len(plan.Moves) == 0 {
		return Result{}, nil
	}
	writes := make([]write, 0, len(plan.Moves))
	for _, m := range plan.Moves {
		writes = append(writes, e.move(plan.A.ContainerID, m))
	}
	return e.run(ctx, "swap", plan.A.ContainerID, writes)
}

// EditPayload replaces the payload of one item.
func (e *Engine) EditPayload(ctx context.Context, current []grid.Item, itemID string, payload grid.Payload) (Result, error) {
	it, err := grid.Find(current, itemID)
	if err != nil {
		return Result{}, err
	}
	w := write{
		itemID: it.ID,
		desc:   "payload " + itemID,
		do: func(ctx context.Context) (*grid.Item, error) {
			out, err := e.store.UpdatePayload(ctx, it.ContainerID, it.ID, payload)
			if err != nil {
				return nil, err
			}
			return &out, nil
		},
	}
	return e.run(ctx, "edit", it.ContainerID, []write{w})
}

// BulkReorder moves the container from current to desired with the
// offset-then-settle strategy: removals, then every moving item parked at
// position+offset, then every moving item written to its final index,
// then creations.
func (e *Engine) BulkReorder(ctx context.Context, containerID string, current, desired []grid.Item) (Result, error) {
	plan, err := grid.PlanBulkReorder(current, desired)
	if err != nil {
		return Result{}, err
	}

	var deleted []string
	writes := make([]write, 0, plan.Writes())
	for _, it := range plan.Removals {
		writes = append(writes, e.remove(containerID, it.ID, &deleted))
	}
	for _, m := range plan.Parks {
		writes = append(writes, e.move(containerID, m))
	}
	for _, m := range plan.Settles {
		writes = append(writes, e.move(containerID, m))
	}
	for _, it := range plan.Creations {
		it.ContainerID = containerID
		writes = append(writes, e.create(it))
	}

	res, err := e.run(ctx, "reorder", containerID, writes)
	res.Deleted = deleted
	return res, err
}

// Repair reloads the container and settles it onto order (IDs, first
// gets position 0). An empty order keeps the current relative order and
// only compacts positions. Items missing from a non-empty order keep
// their relative order after the listed ones.
func (e *Engine) Repair(ctx context.Context, containerID string, order []string) ([]grid.Item, Result, error) {
	current, err := e.store.ListItems(ctx, containerID)
	if err != nil {
		return nil, Result{}, fmt.Errorf("list items: %w", err)
	}
	if anomalies := grid.Inspect(current); len(anomalies) > 0 {
		e.logger.Warn(ctx, "repairing container", "container_id", containerID, "anomalies", len(anomalies))
	}

	desired, err := desiredOrder(current, order)
	if err != nil {
		return nil, Result{}, err
	}
	res, err := e.BulkReorder(ctx, containerID, current, desired)
	if err != nil {
		return nil, res, err
	}

	after, err := e.store.ListItems(ctx, containerID)
	if err != nil {
		return nil, res, fmt.Errorf("list items: %w", err)
	}
	return after, res, nil
}

func desiredOrder(current []grid.Item, order []string) ([]grid.Item, error) {
	sorted := grid.Sorted(current)
	if len(order) == 0 {
		return sorted, nil
	}
	out := make([]grid.Item, 0, len(sorted))
	listed := make(map[string]bool, len(order))
	for _, id := range order {
		it, err := grid.Find(sorted, id)
		if err != nil {
			return nil, err
		}
		if listed[id] {
			return nil, fmt.Errorf("%w: %s", grid.ErrDuplicateTarget, id)
		}
		listed[id] = true
		out = append(out, it)
	}
	for _, it := range sorted {
		if !listed[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}
