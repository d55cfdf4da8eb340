// Package kv is the thin key-value layer over Redis: a whole-container
// snapshot store for the legacy save path and a short-lived cache of signed
// object URLs.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/go-redis/redis/v8"
)

// NewClient connects to addr and checks the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return c, nil
}

// SnapshotStore keeps one snapshot per container:
// snapshot:<container>:items is the ID set, snapshot:<container>:item:<id>
// holds the JSON row.
type SnapshotStore struct {
	client redis.Cmdable
}

func NewSnapshotStore(client redis.Cmdable) *SnapshotStore {
	return &SnapshotStore{client: client}
}

func setKey(containerID string) string {
	return fmt.Sprintf("snapshot:%s:items", containerID)
}

func itemKey(containerID, id string) string {
	return fmt.Sprintf("snapshot:%s:item:%s", containerID, id)
}

// Replace deletes the stored snapshot and writes items relabelled
// "1".."N" in one transaction.
func (s *SnapshotStore) Replace(ctx context.Context, containerID string, items []grid.Item) error {
	old, err := s.client.SMembers(ctx, setKey(containerID)).Result()
	if err != nil {
		return fmt.Errorf("read snapshot index: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range old {
		pipe.Del(ctx, itemKey(containerID, id))
	}
	pipe.Del(ctx, setKey(containerID))
	for _, it := range grid.Relabel(items) {
		it.ContainerID = containerID
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		pipe.Set(ctx, itemKey(containerID, it.ID), data, 0)
		pipe.SAdd(ctx, setKey(containerID), it.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot sorted by position. A container that
// was never saved yields common.ErrorNotFound.
func (s *SnapshotStore) Load(ctx context.Context, containerID string) ([]grid.Item, error) {
	ids, err := s.client.SMembers(ctx, setKey(containerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read snapshot index: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("snapshot %s: %w", containerID, common.ErrorNotFound)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, itemKey(containerID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	items := make([]grid.Item, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var it grid.Item
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, fmt.Errorf("decode snapshot row: %w", err)
		}
		items = append(items, it)
	}
	return grid.Sorted(items), nil
}

// ListItems lets a stored snapshot feed the snapshot loader.
func (s *SnapshotStore) ListItems(ctx context.Context, containerID string) ([]grid.Item, error) {
	return s.Load(ctx, containerID)
}

// URLCache remembers signed URLs for less than their validity.
type URLCache struct {
	client redis.Cmdable
	prefix string
}

func NewURLCache(client redis.Cmdable) *URLCache {
	return &URLCache{client: client, prefix: "signed-url:"}
}

// Get returns the cached URL for key; ok is false on a miss.
func (c *URLCache) Get(ctx context.Context, key string) (url string, ok bool, err error) {
	url, err = c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// Set caches url for ttl. Non-positive ttl is ignored.
func (c *URLCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefix+key, url, ttl).Err()
}

// Forget drops a cached URL, e.g. after the object was deleted.
func (c *URLCache) Forget(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
