package memory

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

func TestService_List(t *testing.T) {
	ctx := context.Background()
	srv := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []*model.ContentItem{
		{ID: "b", ClientID: "c1", Status: model.StatusDraft, CreatedAt: base.Add(time.Hour)},
		{ID: "a", ClientID: "c1", Status: model.StatusPending, CreatedAt: base},
		{ID: "c", ClientID: "c2", Status: model.StatusPending, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, item := range items {
		require.NoError(t, srv.Save(ctx, item))
	}

	all, err := srv.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	pending, err := srv.List(ctx, criteria.ByStatus(model.StatusPending), dao.NewParameter(criteria.ClientID, "c1"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ID)

	_, err = srv.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
