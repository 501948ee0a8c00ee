package approval

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/audit"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/notification"
)

// AssignApprovers replaces the item's approvers; the status is kept.
func (s *Service) AssignApprovers(ctx context.Context, id, actor string, approverIDs []string) (*model.ContentItem, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, validation.Failf("actor is required")
	}
	return s.update(ctx, "assign", id, func(item *model.ContentItem, fx *content.Effects) error {
		s.assign(item, fx, actor, approverIDs, "", true)
		item.Touch(clock.Now())
		return nil
	})
}

// ApplyWorkflow attaches a workflow of the item's client and assigns the
// approvers of the stage matching the current status, or of the first
// stage when none matches.
func (s *Service) ApplyWorkflow(ctx context.Context, id, workflowID, actor string) (*model.ContentItem, error) {
	if s.workflows == nil {
		return nil, validation.Failf("workflows are not enabled")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, validation.Failf("actor is required")
	}
	wf, err := s.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "apply-workflow", id, func(item *model.ContentItem, fx *content.Effects) error {
		if wf.ClientID != item.ClientID {
			return validation.Failf("workflow %s belongs to another client", wf.ID)
		}
		stage := wf.StageFor(item.Status)
		if stage == nil {
			stage = wf.Stages[0]
		}
		item.WorkflowID = wf.ID
		s.assign(item, fx, actor, stage.Approvers, fmt.Sprintf("workflow %s, stage %s", wf.Name, stage.Name), true)
		item.Touch(clock.Now())
		return nil
	})
}

// SetDueDate moves or clears the due date and restarts the reminder
// cadence.
func (s *Service) SetDueDate(ctx context.Context, id string, due *time.Time) (*model.ContentItem, error) {
	return s.update(ctx, "due-date", id, func(item *model.ContentItem, _ *content.Effects) error {
		if due != nil {
			at := due.UTC()
			item.DueDate = &at
		} else {
			item.DueDate = nil
		}
		item.RemindersSent = 0
		item.LastReminderAt = nil
		item.Touch(clock.Now())
		return nil
	})
}

// assign replaces the approvers, logs one assignment action and notifies
// the approvers that were not assigned before. Unless forced an unchanged
// assignment is left alone.
func (s *Service) assign(item *model.ContentItem, fx *content.Effects, actor string, approverIDs []string, reason string, force bool) {
	approvers := unique(approverIDs)
	if !force && slices.Equal(approvers, item.AssignedTo) {
		return
	}
	var added []string
	for _, a := range approvers {
		if !item.IsAssigned(a) {
			added = append(added, a)
		}
	}
	item.AssignedTo = approvers
	details := "assigned to " + strings.Join(approvers, ", ")
	if len(approvers) == 0 {
		details = "approvers cleared"
	}
	if reason != "" {
		details += " (" + reason + ")"
	}
	audit.Append(item, audit.Entry{Type: model.ActionAssignment, Actor: actor, Details: details})
	fx.Notify(notification.Fanout(without(added, actor), model.NotificationAssigned, item,
		"New content to review", fmt.Sprintf("You were assigned to %q", item.Title))...)
}
