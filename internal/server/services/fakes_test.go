package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/cryptox"
	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/containers"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/shares"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memDB is an in-memory stand-in for every repository.
type memDB struct {
	users      map[string]*models.User
	tokens     map[string]*models.RefreshToken
	containers map[string]*models.Container
	items      map[string]map[string]grid.Item
	shares     map[string]map[string]models.Share
	comments   map[string]*models.Comment

	usersErr  error
	tokensErr error
}

// issue stores a refresh token the way UserService would have.
func (m *memDB) issue(token, userID string, expiresAt time.Time) {
	d := cryptox.TokenDigest(token)
	m.tokens[d] = &models.RefreshToken{Digest: d, UserID: userID, ExpiresAt: expiresAt}
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]*models.User{},
		tokens:     map[string]*models.RefreshToken{},
		containers: map[string]*models.Container{},
		items:      map[string]map[string]grid.Item{},
		shares:     map[string]map[string]models.Share{},
		comments:   map[string]*models.Comment{},
	}
}

func (m *memDB) RunMigrations(context.Context, *sql.DB) ([]int64, error) { return nil, nil }
func (m *memDB) Users(dbx.DBTX) users.Repository                         { return memUsers{m} }
func (m *memDB) RefreshTokens(dbx.DBTX) refreshtokens.Repository         { return memTokens{m} }
func (m *memDB) Containers(dbx.DBTX) containers.Repository               { return memContainers{m} }
func (m *memDB) Items(dbx.DBTX) items.Repository                         { return memItems{m} }
func (m *memDB) Shares(dbx.DBTX) shares.Repository                       { return memShares{m} }
func (m *memDB) Comments(dbx.DBTX) comments.Repository                   { return memComments{m} }
func (m *memDB) addUser(id, name string)                                 { m.users[id] = &models.User{ID: id, UserName: name} }
func (m *memDB) addContainer(id, owner string) {
	m.containers[id] = &models.Container{ID: id, OwnerID: owner, Name: id}
}
func (m *memDB) share(containerID, granteeID string) {
	m.shares[containerID] = map[string]models.Share{granteeID: {ContainerID: containerID, GranteeID: granteeID, Permission: "read"}}
}
func (m *memDB) addItem(containerID, id string, pos int) {
	m.itemsOf(containerID)[id] = grid.Item{ID: id, ContainerID: containerID, Position: pos}
}
func (m *memDB) itemsOf(containerID string) map[string]grid.Item {
	if m.items[containerID] == nil {
		m.items[containerID] = map[string]grid.Item{}
	}
	return m.items[containerID]
}

type memUsers struct{ m *memDB }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	for _, existing := range r.m.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = fmt.Sprintf("u%d", len(r.m.users)+1)
	r.m.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	for _, u := range r.m.users {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.m.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memTokens struct{ m *memDB }

func (r memTokens) Create(_ context.Context, t *models.RefreshToken) error {
	if r.m.tokensErr != nil {
		return r.m.tokensErr
	}
	cp := *t
	r.m.tokens[t.Digest] = &cp
	return nil
}

func (r memTokens) Consume(_ context.Context, digest string) (*models.RefreshToken, error) {
	t, ok := r.m.tokens[digest]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.m.tokens, digest)
	return t, nil
}

func (r memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.m.tokens {
		if t.Expired(now) {
			delete(r.m.tokens, k)
			n++
		}
	}
	return n, nil
}

type memContainers struct{ m *memDB }

func (r memContainers) Create(_ context.Context, c *models.Container) (*models.Container, error) {
	c.Permission = models.PermissionOwner
	r.m.containers[c.ID] = c
	return c, nil
}

func (r memContainers) ListForUser(ctx context.Context, userID string) ([]models.Container, error) {
	var out []models.Container
	for _, c := range r.m.containers {
		perm, _ := r.Permission(ctx, c.ID, userID)
		if perm != "" {
			cc := *c
			cc.Permission = perm
			out = append(out, cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memContainers) Permission(_ context.Context, containerID, userID string) (string, error) {
	c, ok := r.m.containers[containerID]
	if !ok {
		return "", common.ErrorNotFound
	}
	if c.OwnerID == userID {
		return models.PermissionOwner, nil
	}
	if s, ok := r.m.shares[containerID][userID]; ok {
		return s.Permission, nil
	}
	return "", nil
}

type memItems struct{ m *memDB }

func (r memItems) ListByContainer(_ context.Context, containerID string) ([]grid.Item, error) {
	out := []grid.Item{}
	for _, it := range r.m.items[containerID] {
		out = append(out, it)
	}
	return grid.Sorted(out), nil
}

func (r memItems) Get(_ context.Context, containerID, itemID string) (grid.Item, error) {
	it, ok := r.m.items[containerID][itemID]
	if !ok {
		return grid.Item{}, common.ErrorNotFound
	}
	return it, nil
}

func (r memItems) positionTaken(containerID, itemID string, pos int) bool {
	for id, it := range r.m.items[containerID] {
		if id != itemID && it.Position == pos {
			return true
		}
	}
	return false
}

func (r memItems) Create(_ context.Context, item grid.Item) (grid.Item, error) {
	if _, ok := r.m.items[item.ContainerID][item.ID]; ok {
		return grid.Item{}, common.ErrAlreadyExists
	}
	if r.positionTaken(item.ContainerID, item.ID, item.Position) {
		return grid.Item{}, common.ErrConstraintViolation
	}
	r.m.itemsOf(item.ContainerID)[item.ID] = item
	return item, nil
}

func (r memItems) UpdatePosition(_ context.Context, containerID, itemID string, position int) (grid.Item, error) {
	it, ok := r.m.items[containerID][itemID]
	if !ok {
		return grid.Item{}, common.ErrorNotFound
	}
	if r.positionTaken(containerID, itemID, position) {
		return grid.Item{}, common.ErrConstraintViolation
	}
	it.Position = position
	r.m.items[containerID][itemID] = it
	return it, nil
}

func (r memItems) UpdatePayload(_ context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error) {
	it, ok := r.m.items[containerID][itemID]
	if !ok {
		return grid.Item{}, common.ErrorNotFound
	}
	it.Payload = payload
	r.m.items[containerID][itemID] = it
	return it, nil
}

func (r memItems) Delete(_ context.Context, containerID, itemID string) error {
	if _, ok := r.m.items[containerID][itemID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.items[containerID], itemID)
	return nil
}

type memShares struct{ m *memDB }

func (r memShares) Upsert(_ context.Context, s *models.Share) (*models.Share, error) {
	if r.m.shares[s.ContainerID] == nil {
		r.m.shares[s.ContainerID] = map[string]models.Share{}
	}
	r.m.shares[s.ContainerID][s.GranteeID] = *s
	return s, nil
}

func (r memShares) Delete(_ context.Context, containerID, granteeID string) error {
	delete(r.m.shares[containerID], granteeID)
	return nil
}

func (r memShares) ListByContainer(_ context.Context, containerID string) ([]models.Share, error) {
	var out []models.Share
	for _, s := range r.m.shares[containerID] {
		s.GranteeName = r.m.users[s.GranteeID].UserName
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GranteeName < out[j].GranteeName })
	return out, nil
}

type memComments struct{ m *memDB }

func (r memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	c.UpdatedAt = c.CreatedAt
	cc := *c
	r.m.comments[c.ID] = &cc
	return c, nil
}

func (r memComments) Get(_ context.Context, id string) (*models.Comment, error) {
	c, ok := r.m.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cc := *c
	return &cc, nil
}

func (r memComments) ListByItem(_ context.Context, containerID, itemID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.m.comments {
		if c.ContainerID == containerID && c.ItemID == itemID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memComments) Update(ctx context.Context, id, authorID, content string, at time.Time) (*models.Comment, error) {
	c, ok := r.m.comments[id]
	if !ok || c.AuthorID != authorID {
		return nil, common.ErrorNotFound
	}
	c.Content = content
	c.UpdatedAt = at
	return r.Get(ctx, id)
}

func (r memComments) Delete(_ context.Context, id, authorID string) error {
	c, ok := r.m.comments[id]
	if !ok || c.AuthorID != authorID {
		return common.ErrorNotFound
	}
	delete(r.m.comments, id)
	return nil
}

type recordedEvent struct {
	Type    string
	Comment models.Comment
}

type fakePublisher struct {
	events []recordedEvent
}

func (p *fakePublisher) Publish(eventType string, c models.Comment) {
	p.events = append(p.events, recordedEvent{Type: eventType, Comment: c})
}

func nopLogger() logging.Logger { return logging.NewNopLogger() }
