// Package items keeps a local copy of the last confirmed state of each
// container, used to render a grid while the server is unreachable.
package items

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

type Repository interface {
	Replace(ctx context.Context, containerID string, items []grid.Item, syncedAt time.Time) error
	List(ctx context.Context, containerID string) ([]grid.Item, error)
	SyncedAt(ctx context.Context, containerID string) (time.Time, bool, error)
	Clear(ctx context.Context) error
}
