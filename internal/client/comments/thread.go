// Package comments follows the discussion thread of one item: Thread merges
// listed comments and pushed events by identity, Subscriber receives the
// events over a websocket.
package comments

import (
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/client/models"
)

// Event types carried by the push channel.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

type Event struct {
	Type    string
	Comment models.Comment
}

// Thread is safe for concurrent use. Events may arrive duplicated or out of
// order: a row is only replaced by a version with a later or equal
// UpdatedAt, and a deleted ID never comes back.
type Thread struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	deleted  map[string]time.Time
}

func NewThread(initial []models.Comment) *Thread {
	t := &Thread{comments: make(map[string]models.Comment), deleted: make(map[string]time.Time)}
	for _, c := range initial {
		t.upsert(c)
	}
	return t
}

func (t *Thread) upsert(c models.Comment) bool {
	if _, gone := t.deleted[c.ID]; gone {
		return false
	}
	if cur, ok := t.comments[c.ID]; ok {
		if c.UpdatedAt.Before(cur.UpdatedAt) || cur == c {
			return false
		}
	}
	t.comments[c.ID] = c
	return true
}

// Apply merges one event and reports whether the visible thread changed.
func (t *Thread) Apply(ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case EventInsert, EventUpdate:
		return t.upsert(ev.Comment)
	case EventDelete:
		_, existed := t.comments[ev.Comment.ID]
		delete(t.comments, ev.Comment.ID)
		t.deleted[ev.Comment.ID] = ev.Comment.UpdatedAt
		return existed
	default:
		return false
	}
}

// Comments returns the thread oldest first.
func (t *Thread) Comments() []models.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Comment, 0, len(t.comments))
	for _, c := range t.comments {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.comments)
}
