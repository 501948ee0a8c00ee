package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/contentflow/model"
)

func TestReminder_Due(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(-d); return &v }
	policy := DefaultReminder()

	testCases := []struct {
		description string
		item        *model.ContentItem
		due         bool
		escalate    bool
	}{
		{description: "not overdue", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(-time.Hour)}},
		{description: "10h overdue", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(10 * time.Hour)}},
		{description: "30h overdue", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(30 * time.Hour)}, due: true},
		{description: "approved item", item: &model.ContentItem{Status: model.StatusApproved, DueDate: at(30 * time.Hour)}},
		{description: "second too soon", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(40 * time.Hour), RemindersSent: 1, LastReminderAt: at(6 * time.Hour)}},
		{description: "second due", item: &model.ContentItem{Status: model.StatusInReview, DueDate: at(40 * time.Hour), RemindersSent: 1, LastReminderAt: at(12 * time.Hour)}, due: true},
		{description: "cap reached", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(90 * time.Hour), RemindersSent: 3, LastReminderAt: at(20 * time.Hour)}, escalate: true},
		{description: "recently escalated", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(90 * time.Hour), RemindersSent: 3, LastEscalatedAt: at(2 * time.Hour)}},
		{description: "escalation cooldown over", item: &model.ContentItem{Status: model.StatusPending, DueDate: at(90 * time.Hour), RemindersSent: 3, LastEscalatedAt: at(25 * time.Hour)}, escalate: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.due, policy.Due(testCase.item, now), testCase.description)
		assert.Equal(t, testCase.escalate, policy.Escalate(testCase.item, now), testCase.description)
	}
}

func TestReminder_ValidateAndContext(t *testing.T) {
	assert.NoError(t, DefaultReminder().Validate())
	assert.Error(t, Reminder{Interval: 0, EscalationCooldown: time.Hour}.Validate())

	custom := Reminder{FirstAfter: time.Hour, Interval: time.Hour, MaxReminders: 1, EscalationCooldown: time.Hour}
	ctx := WithReminder(context.Background(), custom)
	assert.Equal(t, custom, FromContext(ctx, DefaultReminder()))
	assert.Equal(t, DefaultReminder(), FromContext(context.Background(), DefaultReminder()))
	assert.True(t, custom.Allowed(&model.ContentItem{}))
	assert.False(t, custom.Allowed(&model.ContentItem{RemindersSent: 1}))
}
