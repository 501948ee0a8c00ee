// Package audit maintains the append-only action log of an item.
package audit

import (
	"sort"

	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/model"
)

// Entry describes an action to record.
type Entry struct {
	Type    model.ActionType
	From    *model.Status
	To      *model.Status
	Actor   string
	Details string
}

// StatusChange builds an entry moving from one status to another.
func StatusChange(from, to model.Status, actor, details string) Entry {
	return Entry{Type: model.ActionStatusChange, From: from.Ptr(), To: to.Ptr(), Actor: actor, Details: details}
}

// Append records an action on item. It is the only writer of item.Actions.
func Append(item *model.ContentItem, entry Entry) *model.ApprovalAction {
	action := &model.ApprovalAction{
		ID:          idgen.New(),
		ContentID:   item.ID,
		ActionType:  entry.Type,
		FromStatus:  entry.From,
		ToStatus:    entry.To,
		PerformedBy: entry.Actor,
		PerformedAt: clock.Now(),
		Details:     entry.Details,
	}
	item.Actions = append(item.Actions, action)
	return action
}

// Replay folds the toStatus of every action; the result equals the item
// status when the log is complete. ok is false for a log without any
// status-bearing action.
func Replay(actions []*model.ApprovalAction) (status model.Status, ok bool) {
	for _, action := range actions {
		if action.ToStatus != nil {
			status = *action.ToStatus
			ok = true
		}
	}
	return status, ok
}

// Recent returns up to limit actions across items, newest first.
func Recent(items []*model.ContentItem, limit int) []*model.ApprovalAction {
	var all []*model.ApprovalAction
	for _, item := range items {
		all = append(all, item.Actions...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PerformedAt.After(all[j].PerformedAt)
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	ret := make([]*model.ApprovalAction, len(all))
	for i, action := range all {
		ret[i] = action.Clone()
	}
	return ret
}
