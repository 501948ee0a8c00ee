package content

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao/content/memory"
)

type recorder struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (r *recorder) dispatch(_ context.Context, notifications []*model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notifications...)
}

func newStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := New(memory.New(), WithDispatch(rec.dispatch), WithLogger(logger.Discard()))
	require.NoError(t, s.Create(context.Background(), &model.ContentItem{ID: "i1", Title: "draft"}, nil))
	return s, rec
}

func TestStore_UpdateCommits(t *testing.T) {
	ctx := context.Background()
	s, rec := newStore(t)
	hooked := false
	item, err := s.Update(ctx, "i1", func(item *model.ContentItem, fx *Effects) error {
		item.Title = "final"
		fx.Notify(&model.Notification{UserID: "u1"}, &model.Notification{})
		fx.AfterCommit(func() { hooked = true })
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "final", item.Title)
	assert.EqualValues(t, 2, item.Revision)
	assert.True(t, hooked)
	assert.Len(t, rec.sent, 1)
}

func TestStore_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, rec := newStore(t)
	boom := errors.New("boom")
	_, err := s.Update(ctx, "i1", func(item *model.ContentItem, fx *Effects) error {
		item.Title = "half-done"
		fx.Notify(&model.Notification{UserID: "u1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)
	stored, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "draft", stored.Title)
	assert.EqualValues(t, 1, stored.Revision)
	assert.Empty(t, rec.sent)
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Update(context.Background(), "missing", func(*model.ContentItem, *Effects) error { return nil })
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestStore_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "i1", func(item *model.ContentItem, _ *Effects) error {
				item.RemindersSent++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	stored, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, workers, stored.RemindersSent)
	assert.EqualValues(t, workers+1, stored.Revision)
}
