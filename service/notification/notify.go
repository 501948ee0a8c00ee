// Package notification decides nothing: it carries notifications the engine
// emits to an inbox and to external sinks.
package notification

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/messaging"
)

// Notifier delivers a single notification. Implementations should not
// block for long; the engine calls them outside item locks.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// New builds a notification for userID about item.
func New(userID string, kind model.NotificationType, item *model.ContentItem, title, message string) *model.Notification {
	ret := &model.Notification{
		ID:        idgen.New(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: clock.Now(),
	}
	if item != nil {
		ret.ContentID = item.ID
		ret.Metadata = map[string]string{"clientId": item.ClientID, "status": string(item.Status)}
	}
	return ret
}

// Fanout builds one notification per distinct non-empty user.
func Fanout(users []string, kind model.NotificationType, item *model.ContentItem, title, message string) []*model.Notification {
	seen := map[string]bool{}
	var ret []*model.Notification
	for _, u := range users {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		ret = append(ret, New(u, kind, item, title, message))
	}
	return ret
}

// Multi sends every notification to each notifier; a failing notifier does
// not stop the others.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n *model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, *model.Notification) error { return nil }

// LogNotifier writes notifications to a logrus entry.
type LogNotifier struct {
	logger *logrus.Entry
}

// NewLogNotifier creates a notifier writing at info level.
func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(_ context.Context, n *model.Notification) error {
	entry := l.logger.WithFields(logrus.Fields{
		"notification": n.ID,
		"type":         n.Type,
		"user":         n.UserID,
		"item":         n.ContentID,
	})
	if n.Type == model.NotificationEscalation {
		entry.Warn(n.Title)
		return nil
	}
	entry.Info(n.Title)
	return nil
}

// QueueNotifier publishes notifications for an external delivery worker.
type QueueNotifier struct {
	queue messaging.Publisher[model.Notification]
}

// NewQueueNotifier wraps queue.
func NewQueueNotifier(queue messaging.Publisher[model.Notification]) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

// Notify implements Notifier. Queues able to refuse work when full are not
// waited on; the refusal is returned to the dispatcher.
func (q *QueueNotifier) Notify(ctx context.Context, n *model.Notification) error {
	if queue, ok := q.queue.(messaging.NonBlockingPublisher[model.Notification]); ok {
		return queue.TryPublish(n)
	}
	return q.queue.Publish(ctx, n)
}

// Dispatcher fans collected notifications to a Notifier, logging failures.
type Dispatcher struct {
	notifier Notifier
	logger   *logrus.Entry
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(notifier Notifier, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Dispatch delivers each notification; errors are logged, not returned.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications []*model.Notification) {
	for _, n := range notifications {
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{"type": n.Type, "user": n.UserID}).Warn("notification delivery failed")
		}
	}
}
