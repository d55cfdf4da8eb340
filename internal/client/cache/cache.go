// Package cache holds the optimistic client view of one open container.
//
// Every mutation is validated and applied to the in-memory list at once,
// then reconciled with the remote store on a goroutine. Confirmed rows
// replace the optimistic ones. On failure the user is notified; a
// not-found failure drops the local entry, any other failure reloads the
// container from the store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/grid/reconcile"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/google/uuid"
)

var (
	ErrOperationInProgress = errors.New("another operation is in progress for this container")
	ErrNotLoaded           = errors.New("container not loaded")
	ErrClosed              = errors.New("container session closed")
)

// Option customises a Cache.
type Option func(*Cache)

// WithNotifier sets where failures are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Cache) { c.notifier = n }
}

// WithIDGenerator replaces uuid.NewString for new items.
func WithIDGenerator(fn func() string) Option {
	return func(c *Cache) { c.newID = fn }
}

// WithOnChange registers a hook invoked with the item list after every
// confirmation or resync.
func WithOnChange(fn func(ctx context.Context, items []grid.Item)) Option {
	return func(c *Cache) { c.onChange = fn }
}

type Cache struct {
	containerID string
	store       reconcile.Store
	engine      *reconcile.Engine
	notifier    Notifier
	logger      logging.Logger
	newID       func() string
	onChange    func(ctx context.Context, items []grid.Item)

	mu       sync.Mutex
	items    []grid.Item
	loaded   bool
	inflight bool
	closed   bool
}

func New(containerID string, store reconcile.Store, logger logging.Logger, opts ...Option) *Cache {
	c := &Cache{
		containerID: containerID,
		store:       store,
		engine:      reconcile.New(store, logger),
		notifier:    NotifierFunc(func(Notification) {}),
		logger:      logger.With("module", "cache", "container_id", containerID),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) ContainerID() string { return c.containerID }

// Open loads the container once per session. Later calls are no-ops.
func (c *Cache) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	items, err := c.store.ListItems(ctx, c.containerID)
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.loaded {
		c.items = grid.Sorted(items)
		c.loaded = true
		c.logger.Debug(ctx, "container loaded", "items", len(items))
	}
	return nil
}

// Items returns a copy of the current view sorted by position.
func (c *Cache) Items() []grid.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return grid.Sorted(c.items)
}

// Busy reports whether a reconciliation is in flight.
func (c *Cache) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Close ends the session. Reconciliations still running finish against
// the store but no longer touch the cache.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// begin checks the session and reserves the container. It must be called
// with c.mu held.
func (c *Cache) begin() error {
	switch {
	case c.closed:
		return ErrClosed
	case !c.loaded:
		return ErrNotLoaded
	case c.inflight:
		return ErrOperationInProgress
	}
	return nil
}

// Insert adds a new item at the given edge.
func (c *Cache) Insert(ctx context.Context, edge grid.Edge, payload grid.Payload) (grid.Item, *Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return grid.Item{}, nil, err
	}

	current := grid.Sorted(c.items)
	plan := grid.PlanInsert(current, edge)
	item := grid.Item{
		ID:          c.newID(),
		ContainerID: c.containerID,
		Position:    plan.Position,
		Payload:     payload.Clone(),
	}

	next := applyMoves(current, plan.Shifts)
	c.items = append(next, item)

	op := c.start(ctx, "insert", item.ID, func(ctx context.Context) (reconcile.Result, error) {
		return c.engine.Insert(ctx, current, item, edge)
	}, nil)
	return item, op, nil
}

// Remove deletes an item.
func (c *Cache) Remove(ctx context.Context, id string) (*Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	current := grid.Sorted(c.items)
	if _, err := grid.PlanRemove(current, id); err != nil {
		return nil, err
	}
	c.items = without(current, id)

	return c.start(ctx, "remove", id, func(ctx context.Context) (reconcile.Result, error) {
		return c.engine.Remove(ctx, current, id)
	}, nil), nil
}

// Swap exchanges the positions of two items.
func (c *Cache) Swap(ctx context.Context, a, b string) (*Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	current := grid.Sorted(c.items)
	next, err := grid.ApplySwap(current, a, b)
	if err != nil {
		return nil, err
	}
	c.items = next

	return c.start(ctx, "swap", a, func(ctx context.Context) (reconcile.Result, error) {
		return c.engine.Swap(ctx, current, a, b)
	}, nil), nil
}

// EditPayload replaces the payload of an item.
func (c *Cache) EditPayload(ctx context.Context, id string, payload grid.Payload) (*Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	current := grid.Sorted(c.items)
	if _, err := grid.Find(current, id); err != nil {
		return nil, err
	}
	next := grid.Sorted(current)
	next[grid.IndexOf(next, id)].Payload = payload.Clone()
	c.items = next

	return c.start(ctx, "edit", id, func(ctx context.Context) (reconcile.Result, error) {
		return c.engine.EditPayload(ctx, current, id, payload)
	}, nil), nil
}

// Reorder makes target the new container content: target[i] ends up at
// position i, cached items missing from target are removed, and target
// entries without an ID are created with a fresh one.
func (c *Cache) Reorder(ctx context.Context, target []grid.Item) (*Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	current := grid.Sorted(c.items)
	desired := make([]grid.Item, len(target))
	for i, it := range target {
		it = it.Clone()
		if it.ID == "" {
			it.ID = c.newID()
		} else if j := grid.IndexOf(current, it.ID); j >= 0 {
			it = current[j].Clone()
		}
		it.ContainerID = c.containerID
		desired[i] = it
	}
	if _, err := grid.PlanBulkReorder(current, desired); err != nil {
		return nil, err
	}

	next := make([]grid.Item, len(desired))
	for i, it := range desired {
		it.Position = i
		next[i] = it
	}
	c.items = next

	return c.start(ctx, "reorder", "", func(ctx context.Context) (reconcile.Result, error) {
		return c.engine.BulkReorder(ctx, c.containerID, current, desired)
	}, nil), nil
}

// Repair settles the container onto order (or compacts it when order is
// empty). The view is replaced with the store's state once done.
func (c *Cache) Repair(ctx context.Context, order []string) (*Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	var repaired []grid.Item
	return c.start(ctx, "repair", "", func(ctx context.Context) (reconcile.Result, error) {
		items, res, err := c.engine.Repair(ctx, c.containerID, order)
		repaired = items
		return res, err
	}, func() []grid.Item { return repaired }), nil
}

// Refresh reloads the view from the store.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if err := c.begin(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.inflight = true
	c.mu.Unlock()

	err := c.resync(ctx)

	c.mu.Lock()
	c.inflight = false
	c.mu.Unlock()
	return err
}

type running struct {
	*Op
	// replace, when set, supplies the full confirmed view.
	replace func() []grid.Item
}

// start marks the container busy and runs fn on a goroutine. It must be
// called with c.mu held.
func (c *Cache) start(ctx context.Context, name, itemID string, fn func(ctx context.Context) (reconcile.Result, error), replace func() []grid.Item) *Op {
	c.inflight = true
	r := &running{Op: newOp(name), replace: replace}
	c.logger.Debug(ctx, "optimistic change applied", "op", name, "item_id", itemID)

	go func() {
		res, err := fn(ctx)
		c.complete(ctx, r, itemID, res, err)
	}()
	return r.Op
}

func (c *Cache) complete(ctx context.Context, r *running, itemID string, res reconcile.Result, err error) {
	if err != nil {
		c.fail(ctx, r, itemID, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.inflight = false
		c.mu.Unlock()
		c.logger.Debug(ctx, "session closed, dropping confirmation", "op", r.name)
		r.finish(nil)
		return
	}
	if r.replace != nil {
		c.items = grid.Sorted(r.replace())
	} else {
		c.items = merge(c.items, res)
	}
	snapshot := grid.Sorted(c.items)
	c.inflight = false
	c.mu.Unlock()

	c.changed(ctx, snapshot)
	r.finish(nil)
}

// failedItem returns the item whose write failed, falling back to the item
// the operation was started for.
func failedItem(err error, fallback string) (id string, multi bool) {
	var pe *reconcile.PartialError
	if errors.As(err, &pe) {
		if pe.ItemID != "" {
			return pe.ItemID, pe.Total > 1
		}
		return fallback, pe.Total > 1
	}
	return fallback, false
}

func (c *Cache) fail(ctx context.Context, r *running, itemID string, err error) {
	failed, multi := failedItem(err, itemID)
	c.logger.Warn(ctx, "operation failed", "op", r.name, "item_id", failed, "error", err)
	c.notifier.Notify(Notification{
		ContainerID: c.containerID,
		Op:          r.name,
		ItemID:      failed,
		Err:         err,
		At:          time.Now(),
	})

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if !closed {
		notFound := failed != "" && errors.Is(err, common.ErrorNotFound)
		if notFound {
			c.mu.Lock()
			c.items = without(c.items, failed)
			snapshot := grid.Sorted(c.items)
			c.mu.Unlock()
			c.changed(ctx, snapshot)
		}
		// Earlier writes of a multi-write op may have landed; the store wins.
		if !notFound || multi {
			if rerr := c.resync(ctx); rerr != nil {
				c.logger.Error(ctx, "resync failed", "error", rerr)
				c.notifier.Notify(Notification{
					ContainerID: c.containerID,
					Op:          "resync",
					Err:         rerr,
					At:          time.Now(),
				})
			}
		}
	}

	c.mu.Lock()
	c.inflight = false
	c.mu.Unlock()
	r.finish(err)
}

// resync replaces the view with the store's state.
func (c *Cache) resync(ctx context.Context) error {
	items, err := c.store.ListItems(ctx, c.containerID)
	if err != nil {
		return fmt.Errorf("reload container: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.items = grid.Sorted(items)
	snapshot := grid.Sorted(c.items)
	c.mu.Unlock()

	c.logger.Info(ctx, "container resynced", "items", len(items))
	c.changed(ctx, snapshot)
	return nil
}

func (c *Cache) changed(ctx context.Context, items []grid.Item) {
	if c.onChange != nil {
		c.onChange(ctx, items)
	}
}

func applyMoves(items []grid.Item, moves []grid.Move) []grid.Item {
	out := grid.Sorted(items)
	for _, m := range moves {
		if i := grid.IndexOf(out, m.ItemID); i >= 0 {
			out[i].Position = m.To
		}
	}
	return out
}

func without(items []grid.Item, id string) []grid.Item {
	out := make([]grid.Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it.Clone())
		}
	}
	return out
}

// merge replaces cached rows with the rows the store confirmed.
func merge(items []grid.Item, res reconcile.Result) []grid.Item {
	out := grid.Sorted(items)
	for _, id := range res.Deleted {
		out = without(out, id)
	}
	for _, confirmed := range res.Confirmed {
		if i := grid.IndexOf(out, confirmed.ID); i >= 0 {
			out[i] = confirmed.Clone()
		} else {
			out = append(out, confirmed.Clone())
		}
	}
	return grid.Sorted(out)
}
