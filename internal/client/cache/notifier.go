package cache

import (
	"fmt"
	"time"
)

// Notification is a user-visible report of a failed background operation.
type Notification struct {
	ContainerID string
	Op          string
	ItemID      string
	Err         error
	At          time.Time
}

func (n Notification) String() string {
	if n.ItemID != "" {
		return fmt.Sprintf("%s %s failed: %v", n.Op, n.ItemID, n.Err)
	}
	return fmt.Sprintf("%s failed: %v", n.Op, n.Err)
}

// Notifier receives failures the user must see. Implementations must not
// block.
type Notifier interface {
	Notify(n Notification)
}

// ChanNotifier delivers notifications over a buffered channel. When the
// buffer is full the oldest pending notification is discarded.
type ChanNotifier struct {
	ch chan Notification
}

func NewChanNotifier(size int) *ChanNotifier {
	if size < 1 {
		size = 1
	}
	return &ChanNotifier{ch: make(chan Notification, size)}
}

func (c *ChanNotifier) Notify(n Notification) {
	for {
		select {
		case c.ch <- n:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side.
func (c *ChanNotifier) C() <-chan Notification { return c.ch }

// Drain returns every pending notification without blocking.
func (c *ChanNotifier) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-c.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
