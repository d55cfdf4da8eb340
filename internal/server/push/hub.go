// Package push fans comment changes out to websocket subscribers.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/gorilla/websocket"
)

const (
	// Path is the route the hub is mounted on.
	Path = "/ws/comments"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	defaultQueueSize = 32
)

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier func(token string) (string, error)

// Authorizer reports whether a user may read a container.
type Authorizer interface {
	Authorize(ctx context.Context, userID, containerID string, needOwner bool) (string, error)
}

type subscriber struct {
	containerID string
	itemID      string
	send        chan []byte
}

// Hub keeps one queue per connected subscriber. A subscriber whose queue
// is full is disconnected.
type Hub struct {
	mu        sync.Mutex
	subs      map[*subscriber]struct{}
	verify    TokenVerifier
	authz     Authorizer
	logger    logging.Logger
	queueSize int
	upgrader  websocket.Upgrader
}

func NewHub(verify TokenVerifier, authz Authorizer, logger logging.Logger) *Hub {
	return &Hub{
		subs:      map[*subscriber]struct{}{},
		verify:    verify,
		authz:     authz,
		logger:    logger.With("module", "push"),
		queueSize: defaultQueueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4 * 1024,
		},
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish delivers the event to every subscriber of the comment's item.
func (h *Hub) Publish(eventType string, c models.Comment) {
	msg, err := json.Marshal(gridrpc.CommentEvent{Type: eventType, Comment: CommentToWire(c)})
	if err != nil {
		h.logger.Error(context.Background(), "encode comment event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.containerID != c.ContainerID || sub.itemID != c.ItemID {
			continue
		}
		select {
		case sub.send <- msg:
		default:
			h.logger.Warn(context.Background(), "dropping slow subscriber", "container_id", sub.containerID, "item_id", sub.itemID)
			h.removeLocked(sub)
		}
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	h.removeLocked(sub)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(sub *subscriber) {
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(v, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// ServeHTTP handles GET /ws/comments?container_id=&item_id=.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	userID, err := h.verify(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	containerID := r.URL.Query().Get("container_id")
	itemID := r.URL.Query().Get("item_id")
	if containerID == "" || itemID == "" {
		http.Error(w, "container_id and item_id are required", http.StatusBadRequest)
		return
	}

	if _, err := h.authz.Authorize(r.Context(), userID, containerID, false); err != nil {
		switch {
		case errors.Is(err, common.ErrPermissionDenied):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, common.ErrorNotFound):
			http.Error(w, "container not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{containerID: containerID, itemID: itemID, send: make(chan []byte, h.queueSize)}
	h.add(sub)
	h.logger.Debug(r.Context(), "subscribed", "user_id", userID, "container_id", containerID, "item_id", itemID)

	go h.readPump(conn, sub)
	h.writePump(conn, sub)
}

// readPump discards client frames and unsubscribes when the peer goes away.
func (h *Hub) readPump(conn *websocket.Conn, sub *subscriber) {
	defer h.remove(sub)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(sub)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(sub)
				return
			}
		}
	}
}

func CommentToWire(c models.Comment) gridrpc.Comment {
	return gridrpc.Comment{
		ID:          c.ID,
		ContainerID: c.ContainerID,
		ItemID:      c.ItemID,
		AuthorID:    c.AuthorID,
		AuthorName:  c.AuthorName,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
