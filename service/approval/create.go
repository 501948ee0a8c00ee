package approval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/audit"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/service/version"
	"github.com/viant/contentflow/tracing"
)

// CreateInput describes a new item together with its first version.
type CreateInput struct {
	ClientID    string            `json:"clientId" validate:"required"`
	CampaignID  string            `json:"campaignId,omitempty"`
	Title       string            `json:"title" validate:"required,max=300"`
	Description string            `json:"description,omitempty" validate:"max=5000"`
	ContentType model.ContentType `json:"contentType" validate:"required,content_type"`
	Platform    model.Platform    `json:"platform" validate:"required,platform"`
	Priority    model.Priority    `json:"priority,omitempty" validate:"omitempty,priority"`
	AssignedTo  []string          `json:"assignedTo,omitempty" validate:"dive,required"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	Tags        []string          `json:"tags,omitempty" validate:"dive,required,max=50"`
	WorkflowID  string            `json:"workflowId,omitempty"`
	Content     model.Payload     `json:"content"`
	CreatedBy   string            `json:"createdBy" validate:"required"`
}

// CreateContent stores a draft item with version 1. Without an explicit
// workflow the client's default workflow, if any, is applied.
func (s *Service) CreateContent(ctx context.Context, in CreateInput) (*model.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.create", "INTERNAL")
	item, err := s.create(ctx, in)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"item": item.ID, "client": item.ClientID}).Debug("item created")
	return item.Redacted(), nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.ContentItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	wf, err := s.resolveWorkflow(ctx, in.ClientID, in.WorkflowID)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	item := &model.ContentItem{
		ID:          idgen.New(),
		ClientID:    in.ClientID,
		CampaignID:  in.CampaignID,
		Title:       in.Title,
		Description: in.Description,
		ContentType: in.ContentType,
		Platform:    in.Platform,
		Priority:    in.Priority,
		Status:      model.StatusDraft,
		AssignedTo:  unique(in.AssignedTo),
		DueDate:     in.DueDate,
		Tags:        unique(in.Tags),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Versions:    []*model.ContentVersion{},
		Actions:     []*model.ApprovalAction{},
		Comments:    []*model.ApprovalComment{},
	}
	if in.Content.Title == "" {
		in.Content.Title = in.Title
	}
	if _, err = version.Initial(item, in.Content, in.CreatedBy); err != nil {
		return nil, err
	}
	if wf != nil {
		item.WorkflowID = wf.ID
		if len(item.AssignedTo) == 0 && len(wf.Stages) > 0 {
			item.AssignedTo = slices.Clone(wf.Stages[0].Approvers)
		}
	}
	audit.Append(item, audit.Entry{Type: model.ActionStatusChange, To: model.StatusDraft.Ptr(), Actor: in.CreatedBy, Details: "content created"})
	item.Touch(now)
	err = s.store.Create(ctx, item, func(fx *content.Effects) {
		fx.Notify(notification.Fanout(without(item.AssignedTo, in.CreatedBy), model.NotificationAssigned, item,
			"New content to review", fmt.Sprintf("You were assigned to %q", item.Title))...)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// resolveWorkflow returns the named workflow or the client default; a
// client without a default yields nil.
func (s *Service) resolveWorkflow(ctx context.Context, clientID, workflowID string) (*model.ApprovalWorkflow, error) {
	if s.workflows == nil {
		if workflowID != "" {
			return nil, validation.Failf("workflows are not enabled")
		}
		return nil, nil
	}
	if workflowID == "" {
		wf, err := s.workflows.Default(ctx, clientID)
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return wf, err
	}
	wf, err := s.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.ClientID != clientID {
		return nil, validation.Failf("workflow %s belongs to another client", workflowID)
	}
	return wf, nil
}

func unique(values []string) []string {
	var ret []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(ret, v) {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

func without(users []string, user string) []string {
	return slices.DeleteFunc(slices.Clone(users), func(u string) bool { return u == user })
}
