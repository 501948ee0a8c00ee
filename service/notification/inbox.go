package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/contentflow/model"
)

// Inbox keeps per-user notifications with a read flag. It is a Notifier so
// it can sit next to external sinks in a Multi.
type Inbox struct {
	mu    sync.RWMutex
	users map[string][]*model.Notification
	limit int
}

// NewInbox creates an inbox keeping at most limit notifications per user;
// zero keeps everything.
func NewInbox(limit int) *Inbox {
	return &Inbox{users: map[string][]*model.Notification{}, limit: limit}
}

// Notify stores a copy of n.
func (i *Inbox) Notify(_ context.Context, n *model.Notification) error {
	if n == nil || n.UserID == "" {
		return nil
	}
	stored := *n
	i.mu.Lock()
	defer i.mu.Unlock()
	list := append(i.users[n.UserID], &stored)
	if i.limit > 0 && len(list) > i.limit {
		list = list[len(list)-i.limit:]
	}
	i.users[n.UserID] = list
	return nil
}

// List returns the user's notifications, newest first.
func (i *Inbox) List(userID string, unreadOnly bool) []*model.Notification {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var ret []*model.Notification
	for _, n := range i.users[userID] {
		if unreadOnly && n.IsRead {
			continue
		}
		c := *n
		ret = append(ret, &c)
	}
	sort.SliceStable(ret, func(a, b int) bool { return ret[a].CreatedAt.After(ret[b].CreatedAt) })
	return ret
}

// UnreadCount returns the number of unread notifications of the user.
func (i *Inbox) UnreadCount(userID string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	count := 0
	for _, n := range i.users[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead flags one notification of the user as read.
func (i *Inbox) MarkRead(userID, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, n := range i.users[userID] {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
}

// MarkAllRead flags every notification of the user as read and returns how
// many changed. Other users are untouched.
func (i *Inbox) MarkAllRead(userID string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	changed := 0
	for _, n := range i.users[userID] {
		if !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed
}
