// Package grid defines the ordered, per-container collection of grid cells
// and the legal transitions over it. Everything here is pure: functions
// plan position writes, they never perform them.
package grid

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Edge selects where Insert places a new cell.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// ParseEdge accepts "top" or "bottom" (case-insensitive).
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return EdgeTop, nil
	case "bottom":
		return EdgeBottom, nil
	default:
		return 0, fmt.Errorf("unknown edge %q", s)
	}
}

// Payload is the optional content of a cell. A zero Payload is an empty slot.
type Payload struct {
	ImageKeys   []string   `json:"image_keys,omitempty"`
	Caption     string     `json:"caption,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func (p Payload) IsEmpty() bool {
	return len(p.ImageKeys) == 0 && p.Caption == "" && p.ScheduledAt == nil && p.Notes == ""
}

// Clone returns a deep copy so callers can't alias slices or the timestamp.
func (p Payload) Clone() Payload {
	out := p
	out.ImageKeys = slices.Clone(p.ImageKeys)
	if p.ScheduledAt != nil {
		ts := *p.ScheduledAt
		out.ScheduledAt = &ts
	}
	return out
}

// Item is one cell ("post") of a grid. ID never changes once assigned;
// Position is unique within ContainerID but not necessarily contiguous.
type Item struct {
	ID          string    `json:"id"`
	ContainerID string    `json:"container_id"`
	Position    int       `json:"position"`
	Payload     Payload   `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (it Item) Clone() Item {
	out := it
	out.Payload = it.Payload.Clone()
	return out
}

// Move is a single position write.
type Move struct {
	ItemID string
	From   int
	To     int
}
