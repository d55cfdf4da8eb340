package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient is an in-memory server. Like the real store it rejects a
// second item on an occupied position.
type fakeClient struct {
	mu sync.Mutex

	items    map[string]map[string]grid.Item
	comments []models.Comment
	objects  map[string][]models.Object
	shares   map[string][]string

	access, refresh string

	loginErr    error
	unavailable bool
	createErr   error
	deleted     []string
	nextObject  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		items:   make(map[string]map[string]grid.Item),
		objects: make(map[string][]models.Object),
		shares:  make(map[string][]string),
	}
}

func (f *fakeClient) seed(containerID string, its ...grid.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.items[containerID]
	if m == nil {
		m = make(map[string]grid.Item)
		f.items[containerID] = m
	}
	for _, it := range its {
		it.ContainerID = containerID
		m[it.ID] = it
	}
}

func (f *fakeClient) snapshot(containerID string) []grid.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]grid.Item, 0, len(f.items[containerID]))
	for _, it := range f.items[containerID] {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (f *fakeClient) positions(containerID string) map[string]int {
	out := make(map[string]int)
	for _, it := range f.snapshot(containerID) {
		out[it.ID] = it.Position
	}
	return out
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(_ context.Context, username, _ string) (string, error) {
	if username == "taken" {
		return "", common.ErrAlreadyExists
	}
	return "u-" + username, nil
}

func (f *fakeClient) Login(context.Context, string, string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.SetTokens("A", "R")
	return nil
}

func (f *fakeClient) Ping(context.Context) error {
	if f.unavailable {
		return client.ErrUnavailable
	}
	return nil
}

func (f *fakeClient) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeClient) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeClient) CreateContainer(_ context.Context, name string) (models.Container, error) {
	return models.Container{ID: "c-" + name, Name: name, Permission: "owner"}, nil
}

func (f *fakeClient) ListContainers(context.Context) ([]models.Container, error) {
	return []models.Container{{ID: "c1", Name: "feed", Permission: "owner"}}, nil
}

func (f *fakeClient) ListItems(_ context.Context, containerID string) ([]grid.Item, error) {
	if f.unavailable {
		return nil, client.ErrUnavailable
	}
	return f.snapshot(containerID), nil
}

func (f *fakeClient) occupied(containerID, exceptID string, position int) bool {
	for id, it := range f.items[containerID] {
		if id != exceptID && it.Position == position {
			return true
		}
	}
	return false
}

func (f *fakeClient) CreateItem(_ context.Context, item grid.Item) (grid.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return grid.Item{}, f.createErr
	}
	m := f.items[item.ContainerID]
	if m == nil {
		m = make(map[string]grid.Item)
		f.items[item.ContainerID] = m
	}
	if _, ok := m[item.ID]; ok {
		return grid.Item{}, common.ErrAlreadyExists
	}
	if f.occupied(item.ContainerID, "", item.Position) {
		return grid.Item{}, common.ErrConstraintViolation
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	m[item.ID] = item.Clone()
	return item, nil
}

func (f *fakeClient) UpdatePosition(_ context.Context, containerID, itemID string, position int) (grid.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[containerID][itemID]
	if !ok {
		return grid.Item{}, fmt.Errorf("item %s: %w", itemID, common.ErrorNotFound)
	}
	if f.occupied(containerID, itemID, position) {
		return grid.Item{}, common.ErrConstraintViolation
	}
	it.Position = position
	f.items[containerID][itemID] = it
	return it.Clone(), nil
}

func (f *fakeClient) UpdatePayload(_ context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[containerID][itemID]
	if !ok {
		return grid.Item{}, fmt.Errorf("item %s: %w", itemID, common.ErrorNotFound)
	}
	it.Payload = payload.Clone()
	f.items[containerID][itemID] = it
	return it.Clone(), nil
}

func (f *fakeClient) DeleteItem(_ context.Context, containerID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[containerID][itemID]; !ok {
		return fmt.Errorf("item %s: %w", itemID, common.ErrorNotFound)
	}
	delete(f.items[containerID], itemID)
	return nil
}

func (f *fakeClient) GrantShare(_ context.Context, containerID, grantee string) (models.Share, error) {
	f.shares[containerID] = append(f.shares[containerID], grantee)
	return models.Share{ContainerID: containerID, GranteeName: grantee, Permission: "read"}, nil
}

func (f *fakeClient) RevokeShare(_ context.Context, containerID, grantee string) error {
	kept := f.shares[containerID][:0]
	for _, g := range f.shares[containerID] {
		if g != grantee {
			kept = append(kept, g)
		}
	}
	f.shares[containerID] = kept
	return nil
}

func (f *fakeClient) ListShares(_ context.Context, containerID string) ([]models.Share, error) {
	var out []models.Share
	for _, g := range f.shares[containerID] {
		out = append(out, models.Share{ContainerID: containerID, GranteeName: g, Permission: "read"})
	}
	return out, nil
}

func (f *fakeClient) ListComments(_ context.Context, _, itemID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.comments {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClient) AddComment(_ context.Context, containerID, itemID, content string) (models.Comment, error) {
	c := models.Comment{ID: fmt.Sprintf("cm%d", len(f.comments)+1), ContainerID: containerID, ItemID: itemID, Content: content}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeClient) UpdateComment(_ context.Context, commentID, content string) (models.Comment, error) {
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments[i].Content = content
			return f.comments[i], nil
		}
	}
	return models.Comment{}, common.ErrorNotFound
}

func (f *fakeClient) DeleteComment(_ context.Context, commentID string) error {
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return nil
}

// UploadURL hands out keys; a test stores the object by calling putObject.
func (f *fakeClient) UploadURL(_ context.Context, containerID, _ string) (models.SignedURL, error) {
	f.nextObject++
	return models.SignedURL{Key: fmt.Sprintf("containers/%s/obj%d", containerID, f.nextObject)}, nil
}

func (f *fakeClient) putObject(containerID, key string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[containerID] = append(f.objects[containerID], models.Object{Key: key, Size: size})
}

func (f *fakeClient) DownloadURL(_ context.Context, key string) (models.SignedURL, error) {
	return models.SignedURL{Key: key, URL: "https://cdn.example/" + key}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeClient) ListObjects(_ context.Context, containerID string) ([]models.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Object(nil), f.objects[containerID]...), nil
}

var _ client.Client = (*fakeClient)(nil)

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	mu    sync.Mutex
	saved map[string][]grid.Item
	saves int
	err   error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{saved: make(map[string][]grid.Item)}
}

func (m *memSnapshots) Replace(_ context.Context, containerID string, its []grid.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.saved[containerID] = grid.Sorted(its)
	return nil
}

func (m *memSnapshots) Load(_ context.Context, containerID string) ([]grid.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	its, ok := m.saved[containerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return grid.Sorted(its), nil
}
