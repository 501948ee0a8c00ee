package approval

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/bulk"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/workflow"
	"github.com/viant/contentflow/tracing"
)

// Service runs approval commands over the content store.
type Service struct {
	store     *content.Store
	workflows *workflow.Registry
	bulk      *bulk.Service
	logger    *logrus.Entry
}

// Option customises the service.
type Option func(*Service)

// WithWorkflows enables workflow templates.
func WithWorkflows(registry *workflow.Registry) Option {
	return func(s *Service) { s.workflows = registry }
}

// WithBulk sets the worker pool used by bulk commands.
func WithBulk(pool *bulk.Service) Option {
	return func(s *Service) { s.bulk = pool }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Service) { s.logger = entry }
}

// New creates an approval service.
func New(store *content.Store, options ...Option) *Service {
	ret := &Service{store: store, logger: logger.Entry(logger.App)}
	for _, opt := range options {
		opt(ret)
	}
	if ret.bulk == nil {
		ret.bulk = bulk.New(bulk.WithLogger(ret.logger))
	}
	return ret
}

// Get returns a copy of the item.
func (s *Service) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.Redacted(), nil
}

// List returns copies of the items matching parameters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ContentItem, error) {
	items, err := s.store.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		items[i] = item.Redacted()
	}
	return items, nil
}

// update wraps store.Update with a span and the debug log of the command.
func (s *Service) update(ctx context.Context, command, id string, fn content.MutateFunc) (*model.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "approval."+command, "INTERNAL")
	span.WithAttributes(map[string]string{"item.id": id})
	item, err := s.store.Update(ctx, id, fn)
	tracing.EndSpan(span, err)
	entry := s.logger.WithFields(logrus.Fields{"command": command, "item": id})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrValidation) {
			entry.WithError(err).Debug("command rejected")
		} else {
			entry.WithError(err).Warn("command failed")
		}
		return nil, err
	}
	entry.WithField("status", item.Status).Debug("command applied")
	return item.Redacted(), nil
}

// workflowOf returns the workflow attached to the item, or nil. It is read
// before the item lock is taken.
func (s *Service) workflowOf(ctx context.Context, id string) *model.ApprovalWorkflow {
	if s.workflows == nil {
		return nil
	}
	item, err := s.store.Get(ctx, id)
	if err != nil || item.WorkflowID == "" {
		return nil
	}
	wf, err := s.workflows.Get(ctx, item.WorkflowID)
	if err != nil {
		s.logger.WithError(err).WithField("item", id).Warn("workflow of item is unavailable")
		return nil
	}
	return wf
}
