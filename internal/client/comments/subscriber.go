package comments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/gorilla/websocket"
)

type Subscriber struct {
	pushURL string
	dialer  *websocket.Dialer
	logger  logging.Logger
}

func NewSubscriber(pushURL string, logger logging.Logger) *Subscriber {
	return &Subscriber{pushURL: pushURL, dialer: websocket.DefaultDialer, logger: logger.With("module", "comments")}
}

func (s *Subscriber) endpoint(containerID, itemID string) (string, error) {
	u, err := url.Parse(s.pushURL)
	if err != nil {
		return "", fmt.Errorf("bad push url: %w", err)
	}
	q := u.Query()
	q.Set("container_id", containerID)
	q.Set("item_id", itemID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Watch streams the events of one item's thread to fn until ctx is done
// or the server closes the connection. A cancelled ctx is not an error.
func (s *Subscriber) Watch(ctx context.Context, token, containerID, itemID string, fn func(Event)) error {
	endpoint, err := s.endpoint(containerID, itemID)
	if err != nil {
		return err
	}

	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+token)
	conn, resp, err := s.dialer.DialContext(ctx, endpoint, hdr)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return client.ErrUnauthorized
			case http.StatusForbidden, http.StatusNotFound:
				return fmt.Errorf("subscribe: %s", resp.Status)
			}
		}
		return fmt.Errorf("dial %s: %w", s.pushURL, client.ErrUnavailable)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var ev gridrpc.CommentEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				s.logger.Debug(ctx, "push channel closed", "code", ce.Code)
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		fn(Event{Type: ev.Type, Comment: client.CommentFromWire(ev.Comment)})
	}
}
