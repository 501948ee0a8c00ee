// Package comment implements the discussion thread of an item. Every change
// of the thread counters goes through adjust.
package comment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/idgen"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/audit"
)

// Input carries a new comment.
type Input struct {
	Author          model.Author `json:"author" validate:"required"`
	Message         string       `json:"message" validate:"required,max=5000"`
	ParentCommentID string       `json:"parentCommentId,omitempty"`
	Mentions        []string     `json:"mentions,omitempty"`
}

// Add appends a comment. The parent, when given, must exist on the item.
func Add(item *model.ContentItem, in Input) (*model.ApprovalComment, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.ParentCommentID != "" && item.Comment(in.ParentCommentID) == nil {
		return nil, fmt.Errorf("parent comment %s: %w", in.ParentCommentID, model.ErrNotFound)
	}
	now := clock.Now()
	ret := &model.ApprovalComment{
		ID:              idgen.New(),
		ContentID:       item.ID,
		ParentCommentID: in.ParentCommentID,
		Author:          in.Author,
		Message:         in.Message,
		Mentions:        uniqueMentions(in.Mentions, in.Author.ID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	item.Comments = append(item.Comments, ret)
	adjust(item, 1, 1)
	record(item, in.Author.ID, "comment added")
	return ret.Clone(), nil
}

// Update replaces the message; only the author may edit.
func Update(item *model.ContentItem, commentID, authorID, message string) (*model.ApprovalComment, error) {
	target, err := lookup(item, commentID)
	if err != nil {
		return nil, err
	}
	if target.Author.ID != authorID {
		return nil, validation.Failf("only the author may edit comment %s", commentID)
	}
	if message = strings.TrimSpace(message); message == "" {
		return nil, validation.Failf("message is required")
	}
	target.Message = message
	target.UpdatedAt = clock.Now()
	record(item, authorID, "comment edited")
	return target.Clone(), nil
}

// Delete removes a comment together with its replies.
func Delete(item *model.ContentItem, commentID, actor string) error {
	if _, err := lookup(item, commentID); err != nil {
		return err
	}
	doomed := map[string]bool{commentID: true}
	for changed := true; changed; {
		changed = false
		for _, c := range item.Comments {
			if !doomed[c.ID] && doomed[c.ParentCommentID] {
				doomed[c.ID] = true
				changed = true
			}
		}
	}
	kept := item.Comments[:0]
	for _, c := range item.Comments {
		if !doomed[c.ID] {
			kept = append(kept, c)
			continue
		}
		unresolved := 0
		if !c.Resolved {
			unresolved = -1
		}
		adjust(item, -1, unresolved)
	}
	item.Comments = kept
	record(item, actor, fmt.Sprintf("comment deleted (%d removed)", len(doomed)))
	return nil
}

// Resolve marks a comment resolved; resolving twice changes nothing.
func Resolve(item *model.ContentItem, commentID, actor string) (*model.ApprovalComment, error) {
	target, err := lookup(item, commentID)
	if err != nil {
		return nil, err
	}
	if target.Resolved {
		return target.Clone(), nil
	}
	now := clock.Now()
	target.Resolved = true
	target.ResolvedBy = actor
	target.ResolvedAt = &now
	target.UpdatedAt = now
	adjust(item, 0, -1)
	record(item, actor, "comment resolved")
	return target.Clone(), nil
}

// Unresolve reopens a resolved comment.
func Unresolve(item *model.ContentItem, commentID, actor string) (*model.ApprovalComment, error) {
	target, err := lookup(item, commentID)
	if err != nil {
		return nil, err
	}
	if !target.Resolved {
		return target.Clone(), nil
	}
	target.Resolved = false
	target.ResolvedBy = ""
	target.ResolvedAt = nil
	target.UpdatedAt = clock.Now()
	adjust(item, 0, 1)
	record(item, actor, "comment reopened")
	return target.Clone(), nil
}

// AddReaction adds userID to the emoji set; repeating it is a no-op.
func AddReaction(item *model.ContentItem, commentID, emoji, userID string) (*model.ApprovalComment, error) {
	target, err := lookup(item, commentID)
	if err != nil {
		return nil, err
	}
	if emoji == "" || userID == "" {
		return nil, validation.Failf("emoji and user are required")
	}
	if slices.Contains(target.Reactions[emoji], userID) {
		return target.Clone(), nil
	}
	if target.Reactions == nil {
		target.Reactions = map[string][]string{}
	}
	target.Reactions[emoji] = append(target.Reactions[emoji], userID)
	record(item, userID, "reaction "+emoji+" added")
	return target.Clone(), nil
}

// RemoveReaction drops userID from the emoji set and prunes empty sets.
func RemoveReaction(item *model.ContentItem, commentID, emoji, userID string) (*model.ApprovalComment, error) {
	target, err := lookup(item, commentID)
	if err != nil {
		return nil, err
	}
	users := target.Reactions[emoji]
	idx := slices.Index(users, userID)
	if idx == -1 {
		return target.Clone(), nil
	}
	users = slices.Delete(users, idx, idx+1)
	if len(users) == 0 {
		delete(target.Reactions, emoji)
	} else {
		target.Reactions[emoji] = users
	}
	record(item, userID, "reaction "+emoji+" removed")
	return target.Clone(), nil
}

// Consistent reports whether the counters match the thread.
func Consistent(item *model.ContentItem) bool {
	unresolved := 0
	for _, c := range item.Comments {
		if !c.Resolved {
			unresolved++
		}
	}
	return item.TotalComments == len(item.Comments) && item.UnresolvedComments == unresolved
}

// adjust is the single writer of the comment counters; both floor at 0.
func adjust(item *model.ContentItem, total, unresolved int) {
	item.TotalComments = max(0, item.TotalComments+total)
	item.UnresolvedComments = max(0, item.UnresolvedComments+unresolved)
	item.Touch(clock.Now())
}

func record(item *model.ContentItem, actor, details string) {
	audit.Append(item, audit.Entry{Type: model.ActionComment, Actor: actor, Details: details})
	item.Touch(clock.Now())
}

func lookup(item *model.ContentItem, commentID string) (*model.ApprovalComment, error) {
	target := item.Comment(commentID)
	if target == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, model.ErrNotFound)
	}
	return target, nil
}

func uniqueMentions(mentions []string, author string) []string {
	var ret []string
	for _, m := range mentions {
		m = strings.TrimPrefix(strings.TrimSpace(m), "@")
		if m == "" || m == author || slices.Contains(ret, m) {
			continue
		}
		ret = append(ret, m)
	}
	return ret
}
