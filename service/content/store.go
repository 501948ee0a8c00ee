// Package content owns the item repository and the per-item critical
// section every mutation of the engine goes through.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/keylock"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
)

// DispatchFunc delivers notifications collected during a mutation. It is
// invoked after the item lock is released.
type DispatchFunc func(ctx context.Context, notifications []*model.Notification)

// MutateFunc applies a change to a private copy of an item. Returning an
// error discards the copy.
type MutateFunc func(item *model.ContentItem, fx *Effects) error

// Store serialises writers of the same item and commits each mutation with
// a single Save.
type Store struct {
	repo     dao.Service[string, model.ContentItem]
	locks    *keylock.Locker
	dispatch DispatchFunc
	logger   *logrus.Entry
}

// Option customises a Store.
type Option func(*Store)

// WithDispatch sets the notification dispatcher.
func WithDispatch(fn DispatchFunc) Option {
	return func(s *Store) { s.dispatch = fn }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Store) { s.logger = entry }
}

// New wraps repo.
func New(repo dao.Service[string, model.ContentItem], options ...Option) *Store {
	ret := &Store{repo: repo, locks: keylock.New(), logger: logger.Entry(logger.App)}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Create persists a new item under its lock.
func (s *Store) Create(ctx context.Context, item *model.ContentItem, build func(fx *Effects)) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("item id is required: %w", model.ErrValidation)
	}
	fx := &Effects{}
	unlock := s.locks.Lock(item.ID)
	if build != nil {
		build(fx)
	}
	item.Revision = 1
	err := s.repo.Save(ctx, item)
	unlock()
	if err != nil {
		item.Revision = 0
		return fmt.Errorf("failed to create item %s: %w", item.ID, err)
	}
	s.commit(ctx, fx)
	return nil
}

// Get loads a private copy of an item.
func (s *Store) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item id is required: %w", model.ErrValidation)
	}
	item, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, mapError(id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, model.ErrNotFound)
	}
	return item, nil
}

// List returns private copies of all items matching parameters. It takes
// no locks; callers needing consistency re-read through Update.
func (s *Store) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ContentItem, error) {
	return s.repo.List(ctx, parameters...)
}

// Update runs fn on a private copy of the item while holding its lock and
// saves the result once. Notifications and hooks registered on Effects run
// after the lock is released and only when the save succeeded.
func (s *Store) Update(ctx context.Context, id string, fn MutateFunc) (*model.ContentItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item id is required: %w", model.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fx := &Effects{}
	unlock := s.locks.Lock(id)
	item, err := s.mutate(ctx, id, fn, fx)
	unlock()
	if err != nil {
		return nil, err
	}
	s.commit(ctx, fx)
	return item, nil
}

func (s *Store) mutate(ctx context.Context, id string, fn MutateFunc, fx *Effects) (*model.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = fn(item, fx); err != nil {
		return nil, err
	}
	item.Revision++
	if err = s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item %s: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"item": id, "revision": item.Revision}).Debug("item saved")
	return item, nil
}

func (s *Store) commit(ctx context.Context, fx *Effects) {
	for _, hook := range fx.hooks {
		hook()
	}
	if len(fx.notifications) > 0 && s.dispatch != nil {
		s.dispatch(ctx, fx.notifications)
	}
}

func mapError(id string, err error) error {
	if errors.Is(err, dao.ErrNotFound) {
		return fmt.Errorf("item %s: %w", id, model.ErrNotFound)
	}
	if errors.Is(err, dao.ErrInvalidID) {
		return fmt.Errorf("item id %q: %w", id, model.ErrValidation)
	}
	return err
}
