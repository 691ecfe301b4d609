package web

import (
	"sync"

	"github.com/zulandar/pdfchat/internal/notify"
)

// Notices keeps the most recent notifications until the next page render
// takes them, so the form-driven page shows what happened without script.
type Notices struct {
	mu    sync.Mutex
	max   int
	items []notify.Notification
}

// NewNotices creates a Notices holding at most max items (default 5).
func NewNotices(max int) *Notices {
	if max <= 0 {
		max = 5
	}
	return &Notices{max: max}
}

// Notify implements notify.Notifier.
func (n *Notices) Notify(note notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, note)
	if len(n.items) > n.max {
		n.items = n.items[len(n.items)-n.max:]
	}
}

// Take returns and clears the pending notifications.
func (n *Notices) Take() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}
