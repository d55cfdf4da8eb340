// Package autosave implements the legacy whole-container save: changes are
// coalesced for a quiet period, then the stored container is deleted and
// rewritten from the latest snapshot. Item identity is the array index in
// this model, so it only serves backups and imports; live editing goes
// through the reconciliation engine.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/client/cache"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
)

const DefaultDebounce = 2 * time.Second

// SnapshotStore replaces the whole content of a container.
type SnapshotStore interface {
	Replace(ctx context.Context, containerID string, items []grid.Item) error
}

type SaverOpts struct {
	ContainerID string
	Store       SnapshotStore
	Notifier    cache.Notifier
	Logger      logging.Logger
	Debounce    time.Duration
	Timeout     time.Duration
}

type Saver struct {
	containerID string
	store       SnapshotStore
	notifier    cache.Notifier
	logger      logging.Logger
	debounce    time.Duration
	timeout     time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending []grid.Item
	dirty   bool
	running bool
	stopped bool
	idle    *sync.Cond
}

func NewSaver(opts SaverOpts) *Saver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = cache.NotifierFunc(func(cache.Notification) {})
	}
	s := &Saver{
		containerID: opts.ContainerID,
		store:       opts.Store,
		notifier:    notifier,
		logger:      opts.Logger.With("module", "autosave", "container_id", opts.ContainerID),
		debounce:    debounce,
		timeout:     timeout,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Notify records the latest snapshot and restarts the quiet period.
func (s *Saver) Notify(items []grid.Item) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = grid.Sorted(items)
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Saver) onTimer() {
	s.mu.Lock()
	if s.running {
		if s.timer != nil {
			s.timer.Reset(s.debounce)
		}
		s.mu.Unlock()
		return
	}
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	items := s.pending
	s.dirty = false
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.save(ctx, items)
	cancel()

	s.mu.Lock()
	s.running = false
	if s.dirty && s.timer != nil && !s.stopped {
		s.timer.Reset(s.debounce)
	}
	s.idle.Broadcast()
	s.mu.Unlock()
}

func (s *Saver) save(ctx context.Context, items []grid.Item) {
	if err := s.store.Replace(ctx, s.containerID, items); err != nil {
		s.logger.Error(ctx, "snapshot save failed", "items", len(items), "error", err)
		s.notifier.Notify(cache.Notification{
			ContainerID: s.containerID,
			Op:          "autosave",
			Err:         err,
			At:          time.Now(),
		})
		return
	}
	s.logger.Debug(ctx, "snapshot saved", "items", len(items))
}

// Flush waits for a running save and then saves any pending snapshot
// right away.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	items := s.pending
	s.dirty = false
	s.running = true
	s.mu.Unlock()

	s.save(ctx, items)

	s.mu.Lock()
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}

// Stop flushes pending work and ignores later notifications.
func (s *Saver) Stop(ctx context.Context) {
	s.Flush(ctx)
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
