package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/gridplanner/internal/client/cache"
	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/comments"
	"github.com/dmitrijs2005/gridplanner/internal/client/config"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/client/services"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/muesli/termenv"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeAuth struct {
	services.AuthService
	user       string
	restoreErr error
	pingErr    error
	logins     [][2]string
	registered []string
	loggedOut  bool
}

func (f *fakeAuth) Restore(context.Context) (string, error) {
	if f.restoreErr != nil {
		return "", f.restoreErr
	}
	if f.user == "" {
		return "", client.ErrUnauthorized
	}
	return f.user, nil
}

func (f *fakeAuth) Login(_ context.Context, u, p string) error {
	f.logins = append(f.logins, [2]string{u, p})
	return nil
}

func (f *fakeAuth) Register(_ context.Context, u, _ string) error {
	f.registered = append(f.registered, u)
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

type insertCall struct {
	container string
	edge      grid.Edge
	payload   grid.Payload
}

type fakeGrids struct {
	services.GridService
	notifier cache.Notifier

	view     *services.GridView
	showErr  error
	inserts  []insertCall
	payloads map[string]grid.Payload
	reorders [][]string
	repairs  [][]string
	removed  []string
}

func (f *fakeGrids) Show(context.Context, string) (*services.GridView, error) {
	return f.view, f.showErr
}

func (f *fakeGrids) Insert(_ context.Context, cid string, edge grid.Edge, p grid.Payload) (grid.Item, error) {
	f.inserts = append(f.inserts, insertCall{cid, edge, p})
	return grid.Item{ID: "new", ContainerID: cid, Payload: p}, nil
}

// Remove reports the failure asynchronously, like the cache does when the
// server rejects a delete that was already applied locally.
func (f *fakeGrids) Remove(_ context.Context, cid, id string) error {
	f.removed = append(f.removed, id)
	f.notifier.Notify(cache.Notification{ContainerID: cid, Op: "remove", ItemID: id, Err: client.ErrUnavailable})
	return nil
}

func (f *fakeGrids) Reorder(_ context.Context, _ string, order []string) error {
	f.reorders = append(f.reorders, order)
	return nil
}

func (f *fakeGrids) Repair(_ context.Context, _ string, order []string) error {
	f.repairs = append(f.repairs, order)
	return nil
}

func (f *fakeGrids) Edit(_ context.Context, _, id string, fn func(*grid.Payload) error) error {
	p := f.payloads[id].Clone()
	if err := fn(&p); err != nil {
		return err
	}
	f.payloads[id] = p
	return nil
}

func (f *fakeGrids) ListContainers(context.Context) ([]models.Container, error) {
	return []models.Container{{ID: "c1", Name: "launch", Permission: "owner"}}, nil
}

type fakeComments struct {
	services.CommentService
	added  []string
	events []comments.Event
}

func (f *fakeComments) Add(_ context.Context, cid, iid, content string) (models.Comment, error) {
	f.added = append(f.added, content)
	return models.Comment{ID: "cm1", ContainerID: cid, ItemID: iid, Content: content}, nil
}

func (f *fakeComments) Watch(_ context.Context, _, _ string, fn func([]models.Comment, comments.Event)) error {
	for _, ev := range f.events {
		fn(nil, ev)
	}
	return nil
}

type harness struct {
	auth     *fakeAuth
	grids    *fakeGrids
	comments *fakeComments
	closed   int
	out      bytes.Buffer
	errOut   bytes.Buffer
	app      *App
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	h := &harness{
		auth:     &fakeAuth{user: "alice"},
		grids:    &fakeGrids{payloads: map[string]grid.Payload{}},
		comments: &fakeComments{},
	}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	h.app = newApp(cfg, func(_ context.Context, _ *config.Config, n cache.Notifier, _ logging.Logger) (*Services, func(), error) {
		h.grids.notifier = n
		return &Services{Auth: h.auth, Grids: h.grids, Comments: h.comments}, func() { h.closed++ }, nil
	})
	h.app.reader = bufio.NewReader(strings.NewReader(stdin))
	return h
}

func (h *harness) exec(args ...string) error {
	cmd := newRootCmd(h.app)
	cmd.SetOut(&h.out)
	cmd.SetErr(&h.errOut)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
