package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/dao/criteria"
)

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := New("mem://localhost/contentflow/items")
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	item := &model.ContentItem{
		ID:       "item-1",
		ClientID: "c1",
		Title:    "Launch post",
		Status:   model.StatusPending,
		DueDate:  &due,
		ReviewLinks: []*model.ClientReviewLink{
			{ID: "l1", Token: "tok", IsActive: true, PasswordHash: []byte("hash")},
		},
		CreatedAt: due,
	}
	require.NoError(t, srv.Save(ctx, item))
	require.NoError(t, srv.Save(ctx, &model.ContentItem{ID: "item-2", ClientID: "c1", Status: model.StatusDraft, CreatedAt: due.Add(time.Hour)}))

	loaded, err := srv.Load(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Launch post", loaded.Title)
	assert.True(t, loaded.DueDate.Equal(due))
	assert.Equal(t, "tok", loaded.ReviewLinks[0].Token)

	listed, err := srv.List(ctx, criteria.ByStatus(model.StatusPending))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "item-1", listed[0].ID)

	require.NoError(t, srv.Delete(ctx, "item-1"))
	_, err = srv.Load(ctx, "item-1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, srv.Delete(ctx, "item-1"), dao.ErrNotFound)
	assert.ErrorIs(t, srv.Save(ctx, &model.ContentItem{}), dao.ErrInvalidID)
}

func TestService_ListEmpty(t *testing.T) {
	srv := New("mem://localhost/contentflow/empty")
	items, err := srv.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_InvalidID(t *testing.T) {
	ctx := context.Background()
	srv := New("mem://localhost/contentflow/guarded/items")
	outside := New("mem://localhost/contentflow/guarded")
	require.NoError(t, outside.Save(ctx, &model.ContentItem{ID: "secret", Title: "outside"}))

	var useCases = []struct {
		description string
		id          string
	}{
		{description: "empty", id: ""},
		{description: "parent", id: "../secret"},
		{description: "nested parent", id: "a/../../secret"},
		{description: "dot dot", id: ".."},
		{description: "slash", id: "a/b"},
		{description: "backslash", id: `..\secret`},
		{description: "nul", id: "a\x00b"},
	}

	for _, useCase := range useCases {
		assert.ErrorIs(t, srv.Save(ctx, &model.ContentItem{ID: useCase.id}), dao.ErrInvalidID, useCase.description)
		_, err := srv.Load(ctx, useCase.id)
		assert.ErrorIs(t, err, dao.ErrInvalidID, useCase.description)
		assert.ErrorIs(t, srv.Delete(ctx, useCase.id), dao.ErrInvalidID, useCase.description)
	}

	kept, err := outside.Load(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, "outside", kept.Title)
}
