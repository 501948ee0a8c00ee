package api

import (
	"time"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/bulk"
)

// TransitionRequest carries the optional inputs of a status change.
type TransitionRequest struct {
	Message   string     `json:"message,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Feedback  string     `json:"feedback,omitempty"`
	PublishAt *time.Time `json:"publishAt,omitempty"`
}

// AssignRequest replaces the approvers of an item.
type AssignRequest struct {
	Approvers []string `json:"approvers"`
}

// WorkflowRequest attaches a workflow to an item.
type WorkflowRequest struct {
	WorkflowID string `json:"workflowId"`
}

// DueDateRequest moves or clears a due date.
type DueDateRequest struct {
	DueDate *time.Time `json:"dueDate"`
}

// CommentRequest adds a comment as the calling user.
type CommentRequest struct {
	Name            string     `json:"name,omitempty"`
	Email           string     `json:"email,omitempty"`
	Role            model.Role `json:"role,omitempty"`
	Message         string     `json:"message"`
	ParentCommentID string     `json:"parentCommentId,omitempty"`
	Mentions        []string   `json:"mentions,omitempty"`
}

// ReactionRequest adds an emoji reaction.
type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

// LinkRequest issues a review link.
type LinkRequest struct {
	ClientID string              `json:"clientId"`
	Settings *model.LinkSettings `json:"settings,omitempty"`
	Password string              `json:"password,omitempty"`
}

// BulkRequest applies one action to many items.
type BulkRequest struct {
	IDs       []string   `json:"ids"`
	Message   string     `json:"message,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Approvers []string   `json:"approvers,omitempty"`
	PublishAt *time.Time `json:"publishAt,omitempty"`
}

// BulkResponse lists per item outcomes in request order.
type BulkResponse struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []bulk.Result `json:"results"`
}

// ReminderRequest limits reminders to the given items.
type ReminderRequest struct {
	IDs []string `json:"ids,omitempty"`
}

// ReminderResponse lists reminded items and the messages of those that failed.
type ReminderResponse struct {
	Reminded []string `json:"reminded"`
	Failed   []string `json:"failed,omitempty"`
}
