package content

import "github.com/viant/contentflow/model"

// Effects collects side effects of a mutation; they fire after commit.
type Effects struct {
	notifications []*model.Notification
	hooks         []func()
}

// Notify queues a notification.
func (e *Effects) Notify(notifications ...*model.Notification) {
	for _, n := range notifications {
		if n != nil && n.UserID != "" {
			e.notifications = append(e.notifications, n)
		}
	}
}

// AfterCommit queues fn to run once the item is saved.
func (e *Effects) AfterCommit(fn func()) {
	e.hooks = append(e.hooks, fn)
}

// Notifications returns queued notifications.
func (e *Effects) Notifications() []*model.Notification {
	return e.notifications
}
