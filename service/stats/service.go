package stats

import (
	"context"

	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/tracing"
)

// Service evaluates stats over the content store without taking item
// locks.
type Service struct {
	store *content.Store
}

// New creates a stats service.
func New(store *content.Store) *Service {
	return &Service{store: store}
}

// Items returns the items matching c.
func (s *Service) Items(ctx context.Context, c *Criteria) ([]*model.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "stats.items", "INTERNAL")
	items, err := s.store.List(ctx, c.Parameters()...)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	ret := Filter(items, c, clock.Now())
	for i, item := range ret {
		ret[i] = item.Redacted()
	}
	return ret, nil
}

// Query parses a query string and returns the matching items.
func (s *Service) Query(ctx context.Context, query string) ([]*model.ContentItem, error) {
	c, err := Parse(query)
	if err != nil {
		return nil, err
	}
	return s.Items(ctx, c)
}

// Summary rolls up the items matching c; nil means all items.
func (s *Service) Summary(ctx context.Context, c *Criteria) (*Summary, error) {
	items, err := s.Items(ctx, c)
	if err != nil {
		return nil, err
	}
	return Summarize(items, clock.Now()), nil
}

// RecentActions returns the newest limit actions over all items.
func (s *Service) RecentActions(ctx context.Context, limit int) ([]*model.ApprovalAction, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return RecentActions(items, limit), nil
}

// UpcomingDue returns the limit items due soonest.
func (s *Service) UpcomingDue(ctx context.Context, limit int) ([]*model.ContentItem, error) {
	items, err := s.Items(ctx, nil)
	if err != nil {
		return nil, err
	}
	return UpcomingDue(items, clock.Now(), limit), nil
}

// ByUser returns the items assigned to userID.
func (s *Service) ByUser(ctx context.Context, userID string) ([]*model.ContentItem, error) {
	return s.Items(ctx, &Criteria{Assignees: []string{userID}})
}
