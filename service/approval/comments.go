package approval

import (
	"context"

	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/comment"
	"github.com/viant/contentflow/service/content"
)

// AddComment appends a comment and notifies mentioned users.
func (s *Service) AddComment(ctx context.Context, id string, in comment.Input) (*model.ApprovalComment, error) {
	var ret *model.ApprovalComment
	_, err := s.update(ctx, "add-comment", id, func(item *model.ContentItem, fx *content.Effects) error {
		added, err := comment.Add(item, in)
		if err != nil {
			return err
		}
		s.mentioned(item, fx, added)
		ret = added
		return nil
	})
	return ret, err
}

// UpdateComment edits the message of a comment written by authorID.
func (s *Service) UpdateComment(ctx context.Context, id, commentID, authorID, message string) (*model.ApprovalComment, error) {
	return s.commentCommand(ctx, "update-comment", id, func(item *model.ContentItem) (*model.ApprovalComment, error) {
		return comment.Update(item, commentID, authorID, message)
	})
}

// DeleteComment removes a comment and its replies.
func (s *Service) DeleteComment(ctx context.Context, id, commentID, actor string) error {
	_, err := s.update(ctx, "delete-comment", id, func(item *model.ContentItem, _ *content.Effects) error {
		return comment.Delete(item, commentID, actor)
	})
	return err
}

// ResolveComment marks a comment resolved.
func (s *Service) ResolveComment(ctx context.Context, id, commentID, actor string) (*model.ApprovalComment, error) {
	return s.commentCommand(ctx, "resolve-comment", id, func(item *model.ContentItem) (*model.ApprovalComment, error) {
		return comment.Resolve(item, commentID, actor)
	})
}

// UnresolveComment reopens a resolved comment.
func (s *Service) UnresolveComment(ctx context.Context, id, commentID, actor string) (*model.ApprovalComment, error) {
	return s.commentCommand(ctx, "unresolve-comment", id, func(item *model.ContentItem) (*model.ApprovalComment, error) {
		return comment.Unresolve(item, commentID, actor)
	})
}

// AddReaction adds userID's emoji reaction.
func (s *Service) AddReaction(ctx context.Context, id, commentID, emoji, userID string) (*model.ApprovalComment, error) {
	return s.commentCommand(ctx, "add-reaction", id, func(item *model.ContentItem) (*model.ApprovalComment, error) {
		return comment.AddReaction(item, commentID, emoji, userID)
	})
}

// RemoveReaction withdraws userID's emoji reaction.
func (s *Service) RemoveReaction(ctx context.Context, id, commentID, emoji, userID string) (*model.ApprovalComment, error) {
	return s.commentCommand(ctx, "remove-reaction", id, func(item *model.ContentItem) (*model.ApprovalComment, error) {
		return comment.RemoveReaction(item, commentID, emoji, userID)
	})
}

func (s *Service) commentCommand(ctx context.Context, command, id string, fn func(item *model.ContentItem) (*model.ApprovalComment, error)) (*model.ApprovalComment, error) {
	var ret *model.ApprovalComment
	_, err := s.update(ctx, command, id, func(item *model.ContentItem, _ *content.Effects) error {
		var err error
		ret, err = fn(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
