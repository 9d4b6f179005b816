// Package notify holds the in-memory notification feed. Notifications are
// session-local state: they live for the life of the process and are never
// persisted, so clearing the feed destroys nothing of record.
package notify

import (
	"sync"
	"time"

	"github.com/rs/xid"
)

// Notification kinds.
const (
	KindInfo    = "info"
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Store keeps one most-recent-first list per user. All methods are safe for
// concurrent use; mutation for different users never blocks reads for
// others longer than the single lock hold.
type Store struct {
	mu    sync.RWMutex
	feeds map[string][]Notification
}

func NewStore() *Store {
	return &Store{feeds: make(map[string][]Notification)}
}

// Add prepends a new unread notification to the user's feed.
func (s *Store) Add(userID, title, message, kind string) Notification {
	n := Notification{
		ID:        xid.New().String(),
		Title:     title,
		Message:   message,
		Kind:      kind,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.feeds[userID] = append([]Notification{n}, s.feeds[userID]...)
	s.mu.Unlock()
	return n
}

// List returns a copy of the user's feed, most recent first.
func (s *Store) List(userID string) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed := s.feeds[userID]
	out := make([]Notification, len(feed))
	copy(out, feed)
	return out
}

// MarkAsRead flags the matching notification as read. Unknown ids are a
// no-op, not an error.
func (s *Store) MarkAsRead(userID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := s.feeds[userID]
	for i := range feed {
		if feed[i].ID == id {
			feed[i].Read = true
			return
		}
	}
}

// ClearAll empties the user's feed.
func (s *Store) ClearAll(userID string) {
	s.mu.Lock()
	delete(s.feeds, userID)
	s.mu.Unlock()
}

// UnreadCount returns the number of unread notifications in the user's feed.
func (s *Store) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.feeds[userID] {
		if !n.Read {
			count++
		}
	}
	return count
}
