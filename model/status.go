package model

import "fmt"

// Status is the approval lifecycle state of an item.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPending           Status = "pending"
	StatusInReview          Status = "in-review"
	StatusRevisionRequested Status = "revision-requested"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusPublished         Status = "published"
	StatusScheduled         Status = "scheduled"
)

// Statuses lists every status.
var Statuses = []Status{
	StatusDraft, StatusPending, StatusInReview, StatusRevisionRequested,
	StatusApproved, StatusRejected, StatusPublished, StatusScheduled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Ptr returns a pointer to a copy of s, used for nullable audit fields.
func (s Status) Ptr() *Status { return &s }

// Transition names a command that may change an item's status.
type Transition string

const (
	TransitionAdvance         Transition = "advance"
	TransitionApprove         Transition = "approve"
	TransitionReject          Transition = "reject"
	TransitionRequestRevision Transition = "request-revision"
	TransitionSchedule        Transition = "schedule"
	TransitionPublish         Transition = "publish"
	// TransitionEdit covers new versions and reverts; always lands on draft.
	TransitionEdit Transition = "edit"
)

type transitionKey struct {
	from Status
	via  Transition
}

// transitions is the complete table of permitted status changes.
var transitions = map[transitionKey]Status{
	{StatusDraft, TransitionAdvance}:      StatusPending,
	{StatusPending, TransitionAdvance}:    StatusInReview,
	{StatusInReview, TransitionAdvance}:   StatusApproved,
	{StatusApproved, TransitionAdvance}:   StatusPublished,
	{StatusPending, TransitionApprove}:    StatusApproved,
	{StatusInReview, TransitionApprove}:   StatusApproved,
	{StatusPending, TransitionReject}:     StatusRejected,
	{StatusInReview, TransitionReject}:    StatusRejected,
	{StatusApproved, TransitionSchedule}:  StatusScheduled,
	{StatusScheduled, TransitionSchedule}: StatusScheduled,
	{StatusApproved, TransitionPublish}:   StatusPublished,
	{StatusScheduled, TransitionPublish}:  StatusPublished,

	{StatusPending, TransitionRequestRevision}:  StatusRevisionRequested,
	{StatusInReview, TransitionRequestRevision}: StatusRevisionRequested,
}

func init() {
	for _, s := range Statuses {
		transitions[transitionKey{s, TransitionEdit}] = StatusDraft
	}
}

// Next returns the status reached from `from` via t, or ErrTerminalState /
// ErrInvalidTransition when the table has no such edge.
func Next(from Status, t Transition) (Status, error) {
	if to, ok := transitions[transitionKey{from, t}]; ok {
		return to, nil
	}
	if from == StatusPublished && t == TransitionAdvance {
		return from, fmt.Errorf("%w: %s is the last stage", ErrTerminalState, from)
	}
	return from, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, t, from)
}

// Allowed lists the transitions permitted from s.
func Allowed(s Status) []Transition {
	var ret []Transition
	for _, t := range []Transition{TransitionAdvance, TransitionApprove, TransitionReject,
		TransitionRequestRevision, TransitionSchedule, TransitionPublish, TransitionEdit} {
		if _, ok := transitions[transitionKey{s, t}]; ok {
			ret = append(ret, t)
		}
	}
	return ret
}
