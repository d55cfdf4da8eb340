package autosave

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

// ItemWriter is the part of the Data Store the delete-all-then-rewrite
// save needs.
type ItemWriter interface {
	ListItems(ctx context.Context, containerID string) ([]grid.Item, error)
	CreateItem(ctx context.Context, item grid.Item) (grid.Item, error)
	DeleteItem(ctx context.Context, containerID, itemID string) error
}

// RemoteStore rewrites a container on the remote Data Store. Items are
// relabelled "1".."N" with positions 1..N, so every save replaces every
// identity. A failure part way leaves the container partially rewritten.
type RemoteStore struct {
	w ItemWriter
}

func NewRemoteStore(w ItemWriter) *RemoteStore {
	return &RemoteStore{w: w}
}

func (r *RemoteStore) Replace(ctx context.Context, containerID string, items []grid.Item) error {
	existing, err := r.w.ListItems(ctx, containerID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	for _, it := range existing {
		if err := r.w.DeleteItem(ctx, containerID, it.ID); err != nil {
			return fmt.Errorf("delete item %s: %w", it.ID, err)
		}
	}
	for _, it := range grid.Relabel(items) {
		it.ContainerID = containerID
		if _, err := r.w.CreateItem(ctx, it); err != nil {
			return fmt.Errorf("create item %s: %w", it.ID, err)
		}
	}
	return nil
}
