package approval

import (
	"context"
	"time"

	"github.com/viant/contentflow/service/bulk"
)

// BulkApprove approves every item independently.
func (s *Service) BulkApprove(ctx context.Context, ids []string, approverID, message string) []bulk.Result {
	return s.bulk.Run(ctx, "approve", ids, func(ctx context.Context, id string) error {
		_, err := s.Approve(ctx, id, approverID, message)
		return err
	})
}

// BulkReject rejects every item independently with the same reason.
func (s *Service) BulkReject(ctx context.Context, ids []string, rejectorID, reason string) []bulk.Result {
	return s.bulk.Run(ctx, "reject", ids, func(ctx context.Context, id string) error {
		_, err := s.Reject(ctx, id, rejectorID, reason)
		return err
	})
}

// BulkAssign replaces the approvers of every item.
func (s *Service) BulkAssign(ctx context.Context, ids []string, actor string, approverIDs []string) []bulk.Result {
	return s.bulk.Run(ctx, "assign", ids, func(ctx context.Context, id string) error {
		_, err := s.AssignApprovers(ctx, id, actor, approverIDs)
		return err
	})
}

// BulkSchedule schedules every item for the same publish date.
func (s *Service) BulkSchedule(ctx context.Context, ids []string, actor string, publishAt time.Time) []bulk.Result {
	return s.bulk.Run(ctx, "schedule", ids, func(ctx context.Context, id string) error {
		_, err := s.Schedule(ctx, id, actor, publishAt)
		return err
	})
}

// BulkAdvance advances every item one stage.
func (s *Service) BulkAdvance(ctx context.Context, ids []string, actor string) []bulk.Result {
	return s.bulk.Run(ctx, "advance", ids, func(ctx context.Context, id string) error {
		_, err := s.AdvanceToNextStage(ctx, id, actor)
		return err
	})
}
