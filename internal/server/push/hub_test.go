package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthz struct{}

func (fakeAuthz) Authorize(_ context.Context, userID, containerID string, _ bool) (string, error) {
	if containerID == "missing" {
		return "", common.ErrorNotFound
	}
	if userID != "u1" {
		return "", common.ErrPermissionDenied
	}
	return models.PermissionRead, nil
}

func verify(token string) (string, error) {
	switch token {
	case "good":
		return "u1", nil
	case "other":
		return "u2", nil
	}
	return "", errors.New("invalid token")
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(verify, fakeAuthz{}, logging.NewNopLogger())
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return h, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + Path + "?" + query
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestHub_DeliversMatchingEvents(t *testing.T) {
	h, srv := newTestHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "container_id=c1&item_id=i1"), bearer("good"))
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	h.Publish("insert", models.Comment{ID: "x", ContainerID: "c1", ItemID: "other-item", Content: "not for us"})
	h.Publish("insert", models.Comment{ID: "a", ContainerID: "c1", ItemID: "i1", Content: "hello", AuthorName: "ann"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev gridrpc.CommentEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "insert", ev.Type)
	assert.Equal(t, "a", ev.Comment.ID)
	assert.Equal(t, "ann", ev.Comment.AuthorName)
}

func TestHub_UnsubscribesOnClose(t *testing.T) {
	h, srv := newTestHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "container_id=c1&item_id=i1"), bearer("good"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsBadRequests(t *testing.T) {
	_, srv := newTestHub(t)

	tests := []struct {
		name   string
		query  string
		header http.Header
		want   int
	}{
		{"no token", "container_id=c1&item_id=i1", nil, http.StatusUnauthorized},
		{"bad token", "container_id=c1&item_id=i1", bearer("nope"), http.StatusUnauthorized},
		{"missing item", "container_id=c1", bearer("good"), http.StatusBadRequest},
		{"no access", "container_id=c1&item_id=i1", bearer("other"), http.StatusForbidden},
		{"unknown container", "container_id=missing&item_id=i1", bearer("good"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.query), tt.header)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	h := NewHub(verify, fakeAuthz{}, logging.NewNopLogger())
	sub := &subscriber{containerID: "c1", itemID: "i1", send: make(chan []byte, 1)}
	h.add(sub)

	c := models.Comment{ID: "a", ContainerID: "c1", ItemID: "i1"}
	h.Publish("insert", c)
	assert.Equal(t, 1, h.Subscribers())

	h.Publish("update", c)
	assert.Equal(t, 0, h.Subscribers())

	_, ok := <-sub.send
	assert.True(t, ok, "queued event is still readable")
	_, ok = <-sub.send
	assert.False(t, ok, "queue is closed after the drop")

	// removing twice is harmless
	h.remove(sub)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(r))

	r.Header.Set("Authorization", "Bearer tok ")
	assert.Equal(t, "tok", bearerToken(r))
}
