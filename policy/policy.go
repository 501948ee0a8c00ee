package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/contentflow/model"
)

// Reminder is the cadence of overdue reminders and escalation.
//
//   - the first reminder goes out FirstAfter past the due date,
//   - further ones every Interval after the previous reminder,
//   - at most MaxReminders; after that only escalation applies,
//   - an item escalates at most once per EscalationCooldown.
type Reminder struct {
	FirstAfter         time.Duration `json:"firstAfter" yaml:"firstAfter" env:"REMINDERS_FIRST_AFTER"`
	Interval           time.Duration `json:"interval" yaml:"interval" env:"REMINDERS_INTERVAL"`
	MaxReminders       int           `json:"maxReminders" yaml:"maxReminders" env:"REMINDERS_MAX"`
	EscalationCooldown time.Duration `json:"escalationCooldown" yaml:"escalationCooldown" env:"REMINDERS_ESCALATION_COOLDOWN"`
}

// DefaultReminder returns 24h / 12h / 3 / 24h.
func DefaultReminder() Reminder {
	return Reminder{
		FirstAfter:         24 * time.Hour,
		Interval:           12 * time.Hour,
		MaxReminders:       3,
		EscalationCooldown: 24 * time.Hour,
	}
}

// Validate reports unusable settings.
func (r Reminder) Validate() error {
	switch {
	case r.FirstAfter < 0:
		return fmt.Errorf("reminders.firstAfter must be >= 0")
	case r.Interval <= 0:
		return fmt.Errorf("reminders.interval must be > 0")
	case r.MaxReminders < 0:
		return fmt.Errorf("reminders.maxReminders must be >= 0")
	case r.EscalationCooldown <= 0:
		return fmt.Errorf("reminders.escalationCooldown must be > 0")
	}
	return nil
}

// Due reports whether an automatic reminder should go out at now.
func (r Reminder) Due(item *model.ContentItem, now time.Time) bool {
	if !item.IsOverdue(now) || item.RemindersSent >= r.MaxReminders {
		return false
	}
	if item.RemindersSent == 0 || item.LastReminderAt == nil {
		return now.Sub(*item.DueDate) >= r.FirstAfter
	}
	return now.Sub(*item.LastReminderAt) >= r.Interval
}

// Allowed reports whether a manual reminder may still be sent.
func (r Reminder) Allowed(item *model.ContentItem) bool {
	return item.RemindersSent < r.MaxReminders
}

// Escalate reports whether an overdue item has exhausted its reminders and
// is outside the escalation cooldown.
func (r Reminder) Escalate(item *model.ContentItem, now time.Time) bool {
	if !item.IsOverdue(now) || item.RemindersSent < r.MaxReminders {
		return false
	}
	return item.LastEscalatedAt == nil || now.Sub(*item.LastEscalatedAt) >= r.EscalationCooldown
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithReminder embeds a cadence override in ctx.
func WithReminder(ctx context.Context, r Reminder) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, r)
}

// FromContext returns the cadence carried by ctx or fallback.
func FromContext(ctx context.Context, fallback Reminder) Reminder {
	if ctx == nil {
		return fallback
	}
	if v, ok := ctx.Value(ctxKey).(Reminder); ok {
		return v
	}
	return fallback
}
