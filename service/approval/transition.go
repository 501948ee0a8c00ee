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
	"github.com/viant/contentflow/service/comment"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/notification"
)

// Decision is a reviewer verdict; a rejection needs a reason.
type Decision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// step customises a transition after it was validated and before the
// status changes.
type step func(item *model.ContentItem, fx *content.Effects) error

// transition moves the item along t, logs one status change and notifies
// the creator. With a workflow attached the approvers of the stage
// matching the new status replace the assignment.
func (s *Service) transition(ctx context.Context, id, actor string, t model.Transition, details string, steps ...step) (*model.ContentItem, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, validation.Failf("actor is required")
	}
	wf := s.workflowOf(ctx, id)
	return s.update(ctx, string(t), id, func(item *model.ContentItem, fx *content.Effects) error {
		from := item.Status
		to, err := model.Next(from, t)
		if err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
		for _, fn := range steps {
			if err = fn(item, fx); err != nil {
				return err
			}
		}
		item.Status = to
		audit.Append(item, audit.StatusChange(from, to, actor, details))
		if wf != nil && wf.ID == item.WorkflowID {
			if stage := wf.StageFor(to); stage != nil {
				s.assign(item, fx, actor, stage.Approvers, "stage "+stage.Name, false)
			}
		}
		item.Touch(clock.Now())
		if item.CreatedBy != actor {
			fx.Notify(notification.New(item.CreatedBy, model.NotificationStatusChanged, item,
				"Status changed", fmt.Sprintf("%q moved from %s to %s", item.Title, from, to)))
		}
		return nil
	})
}

// AdvanceToNextStage moves the item one step along
// draft, pending, in-review, approved, published.
func (s *Service) AdvanceToNextStage(ctx context.Context, id, actor string) (*model.ContentItem, error) {
	return s.transition(ctx, id, actor, model.TransitionAdvance, "advanced to next stage")
}

// SubmitForReview advances a draft to pending.
func (s *Service) SubmitForReview(ctx context.Context, id, actor string) (*model.ContentItem, error) {
	return s.transition(ctx, id, actor, model.TransitionAdvance, "submitted for review", func(item *model.ContentItem, _ *content.Effects) error {
		if item.Status != model.StatusDraft {
			return fmt.Errorf("%w: only drafts can be submitted, item %s is %s", model.ErrInvalidTransition, item.ID, item.Status)
		}
		return nil
	})
}

// Approve records approverID's approval of a pending or in-review item.
func (s *Service) Approve(ctx context.Context, id, approverID, message string) (*model.ContentItem, error) {
	message = strings.TrimSpace(message)
	return s.transition(ctx, id, approverID, model.TransitionApprove, "approved", func(item *model.ContentItem, fx *content.Effects) error {
		if !slices.Contains(item.ApprovedBy, approverID) {
			item.ApprovedBy = append(item.ApprovedBy, approverID)
		}
		if message == "" {
			return nil
		}
		return s.comment(item, fx, approverID, message)
	})
}

// Reject records a rejection; reason is mandatory and kept as a comment.
func (s *Service) Reject(ctx context.Context, id, rejectorID, reason string) (*model.ContentItem, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return nil, validation.Failf("rejection reason is required")
	}
	return s.transition(ctx, id, rejectorID, model.TransitionReject, "rejected: "+reason, func(item *model.ContentItem, fx *content.Effects) error {
		if !slices.Contains(item.RejectedBy, rejectorID) {
			item.RejectedBy = append(item.RejectedBy, rejectorID)
		}
		return s.comment(item, fx, rejectorID, reason)
	})
}

// RequestRevision sends the item back to its author with feedback kept as
// an unresolved comment. Only a new version leaves revision-requested.
func (s *Service) RequestRevision(ctx context.Context, id, requesterID, feedback string) (*model.ContentItem, error) {
	if feedback = strings.TrimSpace(feedback); feedback == "" {
		return nil, validation.Failf("revision feedback is required")
	}
	return s.transition(ctx, id, requesterID, model.TransitionRequestRevision, "revision requested", func(item *model.ContentItem, fx *content.Effects) error {
		return s.comment(item, fx, requesterID, feedback)
	})
}

// Decide applies a verdict as Approve or Reject.
func (s *Service) Decide(ctx context.Context, id, reviewerID string, decision Decision) (*model.ContentItem, error) {
	if decision.Approved {
		return s.Approve(ctx, id, reviewerID, decision.Reason)
	}
	return s.Reject(ctx, id, reviewerID, decision.Reason)
}

// Schedule plans publication of an approved item; rescheduling a scheduled
// item moves the date.
func (s *Service) Schedule(ctx context.Context, id, actor string, publishAt time.Time) (*model.ContentItem, error) {
	if publishAt.IsZero() {
		return nil, validation.Failf("publish date is required")
	}
	if !publishAt.After(clock.Now()) {
		return nil, validation.Failf("publish date %s is in the past", publishAt.Format(time.RFC3339))
	}
	details := "scheduled for " + publishAt.UTC().Format(time.RFC3339)
	return s.transition(ctx, id, actor, model.TransitionSchedule, details, func(item *model.ContentItem, _ *content.Effects) error {
		at := publishAt.UTC()
		item.ScheduledPublishDate = &at
		return nil
	})
}

// Publish marks an approved or scheduled item as published.
func (s *Service) Publish(ctx context.Context, id, actor string) (*model.ContentItem, error) {
	return s.transition(ctx, id, actor, model.TransitionPublish, "published")
}

// comment appends a reviewer comment; the thread records its own action.
func (s *Service) comment(item *model.ContentItem, fx *content.Effects, authorID, message string) error {
	added, err := comment.Add(item, comment.Input{
		Author:  model.Author{ID: authorID, Role: model.RoleAgency},
		Message: message,
	})
	if err != nil {
		return err
	}
	s.mentioned(item, fx, added)
	return nil
}

func (s *Service) mentioned(item *model.ContentItem, fx *content.Effects, c *model.ApprovalComment) {
	fx.Notify(notification.Fanout(c.Mentions, model.NotificationMention, item,
		"You were mentioned", fmt.Sprintf("%s mentioned you on %q", c.Author.ID, item.Title))...)
}
