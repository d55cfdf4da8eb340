package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/client/autosave"
	"github.com/dmitrijs2005/gridplanner/internal/client/cache"
	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/client/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/client/snapshot"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
)

// SnapshotStore keeps whole-container backups.
type SnapshotStore interface {
	autosave.SnapshotStore
	Load(ctx context.Context, containerID string) ([]grid.Item, error)
}

// GridView is a rendered container.
type GridView struct {
	ContainerID string
	Cells       []snapshot.Cell
	Anomalies   []grid.Anomaly
	// Offline is set when Cells come from the local mirror.
	Offline  bool
	SyncedAt time.Time
}

type GridService interface {
	CreateContainer(ctx context.Context, name string) (models.Container, error)
	ListContainers(ctx context.Context) ([]models.Container, error)

	Show(ctx context.Context, containerID string) (*GridView, error)
	Insert(ctx context.Context, containerID string, edge grid.Edge, payload grid.Payload) (grid.Item, error)
	Remove(ctx context.Context, containerID, itemID string) error
	Swap(ctx context.Context, containerID, a, b string) error
	Reorder(ctx context.Context, containerID string, order []string) error
	Edit(ctx context.Context, containerID, itemID string, fn func(*grid.Payload) error) error
	Repair(ctx context.Context, containerID string, order []string) error

	Backup(ctx context.Context, containerID string) (int, error)
	Restore(ctx context.Context, containerID string) (int, error)
}

type GridOptions struct {
	Client    client.Client
	Mirror    items.Repository
	Snapshots SnapshotStore
	Notifier  cache.Notifier
	Logger    logging.Logger

	MinGridSize      int
	AutosaveDebounce time.Duration
}

type gridService struct {
	client    client.Client
	mirror    items.Repository
	snapshots SnapshotStore
	notifier  cache.Notifier
	logger    logging.Logger
	minSize   int
	debounce  time.Duration
	now       func() time.Time
}

func NewGridService(opts GridOptions) GridService {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = cache.NotifierFunc(func(cache.Notification) {})
	}
	return &gridService{
		client:    opts.Client,
		mirror:    opts.Mirror,
		snapshots: opts.Snapshots,
		notifier:  notifier,
		logger:    opts.Logger.With("service", "grid"),
		minSize:   opts.MinGridSize,
		debounce:  opts.AutosaveDebounce,
		now:       time.Now,
	}
}

func (s *gridService) CreateContainer(ctx context.Context, name string) (models.Container, error) {
	if name == "" {
		return models.Container{}, fmt.Errorf("container name is required: %w", common.ErrorValidation)
	}
	return s.client.CreateContainer(ctx, name)
}

func (s *gridService) ListContainers(ctx context.Context) ([]models.Container, error) {
	return s.client.ListContainers(ctx)
}

func (s *gridService) remember(ctx context.Context, containerID string, its []grid.Item) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Replace(ctx, containerID, its, s.now()); err != nil {
		s.logger.Warn(ctx, "local mirror update failed", "container_id", containerID, "error", err)
	}
}

// recordingLister hands the listed items to the caller as well.
type recordingLister struct {
	snapshot.Lister
	items []grid.Item
}

func (r *recordingLister) ListItems(ctx context.Context, containerID string) ([]grid.Item, error) {
	its, err := r.Lister.ListItems(ctx, containerID)
	r.items = its
	return its, err
}

// Show renders the container. When the server is unreachable the last
// mirrored state is shown instead.
func (s *gridService) Show(ctx context.Context, containerID string) (*GridView, error) {
	rec := &recordingLister{Lister: s.client}
	cells, err := snapshot.NewLoader(rec, s.minSize, s.logger).Load(ctx, containerID)
	if err == nil {
		s.remember(ctx, containerID, rec.items)
		return &GridView{ContainerID: containerID, Cells: cells, Anomalies: grid.Inspect(rec.items), SyncedAt: s.now()}, nil
	}
	if !errors.Is(err, client.ErrUnavailable) || s.mirror == nil {
		return nil, err
	}

	syncedAt, ok, merr := s.mirror.SyncedAt(ctx, containerID)
	if merr != nil {
		return nil, merr
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", err, client.ErrLocalDataNotAvailable)
	}
	local, merr := s.mirror.List(ctx, containerID)
	if merr != nil {
		return nil, merr
	}
	s.logger.Info(ctx, "server unavailable, showing local copy", "container_id", containerID, "synced_at", syncedAt)
	return &GridView{
		ContainerID: containerID,
		Cells:       snapshot.Densify(ctx, local, s.minSize, s.logger),
		Anomalies:   grid.Inspect(local),
		Offline:     true,
		SyncedAt:    syncedAt,
	}, nil
}

// session is one open container: the cache plus the autosave that follows
// its confirmed state.
type session struct {
	cache *cache.Cache
	saver *autosave.Saver
}

func (s *gridService) open(ctx context.Context, containerID string) (*session, error) {
	sess := &session{}
	if s.snapshots != nil {
		sess.saver = autosave.NewSaver(autosave.SaverOpts{
			ContainerID: containerID,
			Store:       s.snapshots,
			Notifier:    s.notifier,
			Logger:      s.logger,
			Debounce:    s.debounce,
		})
	}
	sess.cache = cache.New(containerID, s.client, s.logger,
		cache.WithNotifier(s.notifier),
		cache.WithOnChange(func(ctx context.Context, its []grid.Item) {
			s.remember(ctx, containerID, its)
			sess.saver.Notify(its)
		}),
	)
	if err := sess.cache.Open(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (sess *session) close(ctx context.Context) {
	sess.cache.Close()
	if sess.saver != nil {
		sess.saver.Stop(ctx)
	}
}

// run opens the container, starts one mutation and waits for the store to
// confirm or reject it.
func (s *gridService) run(ctx context.Context, containerID string, fn func(c *cache.Cache) (*cache.Op, error)) error {
	sess, err := s.open(ctx, containerID)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	op, err := fn(sess.cache)
	if err != nil {
		return err
	}
	if err := op.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op.Name(), err)
	}
	return nil
}

func (s *gridService) Insert(ctx context.Context, containerID string, edge grid.Edge, payload grid.Payload) (grid.Item, error) {
	var created grid.Item
	err := s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		it, op, err := c.Insert(ctx, edge, payload)
		created = it
		return op, err
	})
	return created, err
}

func (s *gridService) Remove(ctx context.Context, containerID, itemID string) error {
	return s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		return c.Remove(ctx, itemID)
	})
}

func (s *gridService) Swap(ctx context.Context, containerID, a, b string) error {
	return s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		return c.Swap(ctx, a, b)
	})
}

// Reorder moves the listed items to the front in the given order; the rest
// keep their relative order after them.
func (s *gridService) Reorder(ctx context.Context, containerID string, order []string) error {
	return s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		target, err := orderedTarget(c.Items(), order)
		if err != nil {
			return nil, err
		}
		return c.Reorder(ctx, target)
	})
}

func orderedTarget(current []grid.Item, order []string) ([]grid.Item, error) {
	target := make([]grid.Item, 0, len(current))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		it, err := grid.Find(current, id)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", grid.ErrDuplicateTarget, id)
		}
		seen[id] = true
		target = append(target, it)
	}
	for _, it := range current {
		if !seen[it.ID] {
			target = append(target, it)
		}
	}
	return target, nil
}

// Edit applies fn to a copy of the item's payload and stores the result.
func (s *gridService) Edit(ctx context.Context, containerID, itemID string, fn func(*grid.Payload) error) error {
	return s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		it, err := grid.Find(c.Items(), itemID)
		if err != nil {
			return nil, err
		}
		p := it.Payload.Clone()
		if err := fn(&p); err != nil {
			return nil, err
		}
		return c.EditPayload(ctx, itemID, p)
	})
}

func (s *gridService) Repair(ctx context.Context, containerID string, order []string) error {
	return s.run(ctx, containerID, func(c *cache.Cache) (*cache.Op, error) {
		return c.Repair(ctx, order)
	})
}

// Backup writes the current container to the snapshot store right away.
func (s *gridService) Backup(ctx context.Context, containerID string) (int, error) {
	if s.snapshots == nil {
		return 0, fmt.Errorf("snapshot store not configured: %w", common.ErrUnavailable)
	}
	its, err := s.client.ListItems(ctx, containerID)
	if err != nil {
		return 0, err
	}
	s.remember(ctx, containerID, its)
	if err := s.snapshots.Replace(ctx, containerID, its); err != nil {
		return 0, fmt.Errorf("write backup: %w", err)
	}
	return len(its), nil
}

// Restore rewrites the remote container from its last backup. Every item
// gets a new identity ("1".."N").
func (s *gridService) Restore(ctx context.Context, containerID string) (int, error) {
	if s.snapshots == nil {
		return 0, fmt.Errorf("snapshot store not configured: %w", common.ErrUnavailable)
	}
	its, err := s.snapshots.Load(ctx, containerID)
	if err != nil {
		return 0, fmt.Errorf("load backup: %w", err)
	}
	if len(its) == 0 {
		return 0, fmt.Errorf("no backup for %s: %w", containerID, common.ErrorNotFound)
	}
	if err := autosave.NewRemoteStore(s.client).Replace(ctx, containerID, its); err != nil {
		return 0, err
	}

	restored, err := s.client.ListItems(ctx, containerID)
	if err != nil {
		return 0, err
	}
	s.remember(ctx, containerID, restored)
	return len(restored), nil
}
