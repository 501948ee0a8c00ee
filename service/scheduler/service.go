// Package scheduler finds overdue items and drives reminders and escalation.
// Candidates are selected from an unlocked listing; every change is then
// re-checked and applied inside the item's critical section.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/policy"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao/criteria"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/tracing"
)

// Task is extra housekeeping run on every pass, e.g. link expiry.
type Task func(ctx context.Context) (int, error)

// Service drives the reminder cadence.
type Service struct {
	store  *content.Store
	policy policy.Reminder
	tasks  map[string]Task
	logger *logrus.Entry
}

// Option customises the service.
type Option func(*Service)

// WithPolicy sets the reminder cadence.
func WithPolicy(p policy.Reminder) Option {
	return func(s *Service) { s.policy = p }
}

// WithTask registers housekeeping executed after reminders and escalation.
func WithTask(name string, task Task) Option {
	return func(s *Service) { s.tasks[name] = task }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Service) { s.logger = entry }
}

// New creates a scheduler over store.
func New(store *content.Store, options ...Option) *Service {
	ret := &Service{
		store:  store,
		policy: policy.DefaultReminder(),
		tasks:  map[string]Task{},
		logger: logger.Entry(logger.Scheduler),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

var awaiting = criteria.ByStatus(
	model.StatusDraft, model.StatusPending, model.StatusInReview,
	model.StatusRevisionRequested, model.StatusRejected, model.StatusScheduled,
)

// GetOverdueItems returns items past due that are neither approved nor
// published, soonest due first.
func (s *Service) GetOverdueItems(ctx context.Context) ([]*model.ContentItem, error) {
	items, err := s.store.List(ctx, awaiting)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	var ret []*model.ContentItem
	for _, item := range items {
		if item.IsOverdue(now) {
			ret = append(ret, item.Redacted())
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].DueDate.Before(*ret[j].DueDate) })
	return ret, nil
}

var errSkip = errors.New("skip")

// SendReminders reminds item creators. Without ids it covers every overdue
// item whose cadence is due; explicit ids are a manual send that ignores
// the timing but still respects the cap. It returns the reminded ids; a
// failing item is logged and skipped, and a manual send joins the failures
// into err.
func (s *Service) SendReminders(ctx context.Context, ids ...string) (reminded []string, err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.SendReminders", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	cadence := policy.FromContext(ctx, s.policy)
	manual := len(ids) > 0
	if !manual {
		overdue, err := s.GetOverdueItems(ctx)
		if err != nil {
			return nil, err
		}
		now := clock.Now()
		for _, item := range overdue {
			if cadence.Due(item, now) {
				ids = append(ids, item.ID)
			}
		}
	}
	var failures []error
	for _, id := range ids {
		_, err := s.store.Update(ctx, id, func(item *model.ContentItem, fx *content.Effects) error {
			now := clock.Now()
			if due := cadence.Due(item, now); !due && (!manual || !cadence.Allowed(item)) {
				return errSkip
			}
			item.RemindersSent++
			item.LastReminderAt = &now
			item.Touch(now)
			fx.Notify(notification.New(item.CreatedBy, model.NotificationReminder, item,
				"Approval overdue: "+item.Title, reminderMessage(item, now)))
			return nil
		})
		switch {
		case errors.Is(err, errSkip):
		case err != nil:
			s.logger.WithError(err).WithField("item", id).Warn("reminder failed")
			if manual {
				failures = append(failures, fmt.Errorf("item %s: %w", id, err))
			}
		default:
			reminded = append(reminded, id)
		}
	}
	if len(reminded) > 0 {
		s.logger.WithField("items", len(reminded)).Info("reminders sent")
	}
	return reminded, errors.Join(failures...)
}

// AutoEscalate raises the priority of items that exhausted their reminders
// and notifies their approvers, at most once per cooldown. It returns the
// escalated ids.
func (s *Service) AutoEscalate(ctx context.Context) (escalated []string, err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.AutoEscalate", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	cadence := policy.FromContext(ctx, s.policy)
	overdue, err := s.GetOverdueItems(ctx)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	for _, candidate := range overdue {
		if !cadence.Escalate(candidate, now) {
			continue
		}
		_, err := s.store.Update(ctx, candidate.ID, func(item *model.ContentItem, fx *content.Effects) error {
			now := clock.Now()
			if !cadence.Escalate(item, now) {
				return errSkip
			}
			item.Priority = item.Priority.Raise()
			item.LastEscalatedAt = &now
			item.Touch(now)
			recipients := item.AssignedTo
			if len(recipients) == 0 {
				recipients = []string{item.CreatedBy}
			}
			fx.Notify(notification.Fanout(recipients, model.NotificationEscalation, item,
				"Escalated: "+item.Title, fmt.Sprintf("priority raised to %s after %d reminders", item.Priority, item.RemindersSent))...)
			return nil
		})
		switch {
		case errors.Is(err, errSkip):
		case err != nil:
			s.logger.WithError(err).WithField("item", candidate.ID).Warn("escalation failed")
		default:
			escalated = append(escalated, candidate.ID)
		}
	}
	if len(escalated) > 0 {
		s.logger.WithField("items", len(escalated)).Warn("items escalated")
	}
	return escalated, nil
}

// Pass runs reminders, escalation and housekeeping once.
func (s *Service) Pass(ctx context.Context) {
	if _, err := s.SendReminders(ctx); err != nil {
		s.logger.WithError(err).Warn("reminder pass failed")
	}
	if _, err := s.AutoEscalate(ctx); err != nil {
		s.logger.WithError(err).Warn("escalation pass failed")
	}
	for name, task := range s.tasks {
		count, err := task(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("task", name).Warn("housekeeping failed")
			continue
		}
		s.logger.WithFields(logrus.Fields{"task": name, "changed": count}).Debug("housekeeping done")
	}
}

// Run starts a goroutine calling Pass every interval. It returns stop();
// call it (or cancel ctx) to exit.
func (s *Service) Run(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				s.Pass(ctx)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}

func reminderMessage(item *model.ContentItem, now time.Time) string {
	if !item.IsOverdue(now) {
		return fmt.Sprintf("%s awaits action in status %s (reminder %d)", item.Title, item.Status, item.RemindersSent)
	}
	overdue := now.Sub(*item.DueDate).Round(time.Hour)
	return fmt.Sprintf("%s is %s overdue in status %s (reminder %d)", item.Title, overdue, item.Status, item.RemindersSent)
}
