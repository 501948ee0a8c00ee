package model

import "time"

// ActionType classifies audit entries.
type ActionType string

const (
	ActionStatusChange  ActionType = "status_change"
	ActionVersionUpdate ActionType = "version_update"
	ActionComment       ActionType = "comment"
	ActionAssignment    ActionType = "assignment"
)

// ApprovalAction is an immutable audit record of one state-changing event.
type ApprovalAction struct {
	ID          string     `json:"id" bson:"id"`
	ContentID   string     `json:"contentId" bson:"contentId"`
	ActionType  ActionType `json:"actionType" bson:"actionType"`
	FromStatus  *Status    `json:"fromStatus,omitempty" bson:"fromStatus,omitempty"`
	ToStatus    *Status    `json:"toStatus,omitempty" bson:"toStatus,omitempty"`
	PerformedBy string     `json:"performedBy" bson:"performedBy"`
	PerformedAt time.Time  `json:"performedAt" bson:"performedAt"`
	Details     string     `json:"details,omitempty" bson:"details,omitempty"`
}

// Clone returns a deep copy of the action.
func (a *ApprovalAction) Clone() *ApprovalAction {
	if a == nil {
		return nil
	}
	ret := *a
	if a.FromStatus != nil {
		s := *a.FromStatus
		ret.FromStatus = &s
	}
	if a.ToStatus != nil {
		s := *a.ToStatus
		ret.ToStatus = &s
	}
	return &ret
}
