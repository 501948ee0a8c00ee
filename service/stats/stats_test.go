package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao/content/memory"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := now.Add(offset)
	return &t
}

func sample() []*model.ContentItem {
	return []*model.ContentItem{
		{ID: "a", ClientID: "c1", Title: "Spring launch", Status: model.StatusPending, ContentType: model.ContentTypeSocialPost, Platform: model.PlatformInstagram, AssignedTo: []string{"ann"}, DueDate: at(-2 * time.Hour), CreatedAt: now},
		{ID: "b", ClientID: "c1", Title: "Newsletter", Status: model.StatusApproved, ContentType: model.ContentTypeNewsletter, Platform: model.PlatformEmail, DueDate: at(-time.Hour), CreatedAt: now.Add(time.Second)},
		{ID: "c", ClientID: "c2", Title: "Summer teaser", Status: model.StatusInReview, ContentType: model.ContentTypeSocialPost, Platform: model.PlatformTikTok, AssignedTo: []string{"bob", "ann"}, DueDate: at(48 * time.Hour), Tags: []string{"promo"}, CreatedAt: now.Add(2 * time.Second)},
		{ID: "d", ClientID: "c2", Title: "Blog", Status: model.StatusDraft, ContentType: model.ContentTypeBlogArticle, Platform: model.PlatformBlog, DueDate: at(24 * time.Hour), CreatedAt: now.Add(3 * time.Second)},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sample(), now)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[model.StatusApproved])
	assert.Equal(t, 2, summary.ByContentType[model.ContentTypeSocialPost])
	assert.Equal(t, 1, summary.ByPlatform[model.PlatformEmail])
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 2, summary.PendingApproval)
	assert.InDelta(t, 0.25, summary.ApprovalRate, 1e-9)

	empty := Summarize(nil, now)
	assert.Equal(t, 0.0, empty.ApprovalRate)
	assert.Equal(t, 0, empty.Total)
}

func TestUpcomingDueAndByUser(t *testing.T) {
	upcoming := UpcomingDue(sample(), now, 5)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "d", upcoming[0].ID)
	assert.Equal(t, "c", upcoming[1].ID)
	assert.Len(t, UpcomingDue(sample(), now, 1), 1)

	var ids []string
	for _, item := range ByUser(sample(), "ann") {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestFilter(t *testing.T) {
	testCases := []struct {
		description string
		query       string
		expected    []string
	}{
		{description: "all", query: "", expected: []string{"a", "b", "c", "d"}},
		{description: "status list", query: "status:pending,in-review", expected: []string{"a", "c"}},
		{description: "overdue", query: "overdue", expected: []string{"a"}},
		{description: "text", query: `"spring"`, expected: []string{"a"}},
		{description: "tag and client", query: "tag:promo client:c2", expected: []string{"c"}},
		{description: "platform no match", query: "platform:youtube", expected: nil},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			c, err := Parse(testCase.query)
			require.NoError(t, err)
			var ids []string
			for _, item := range Filter(sample(), c, now) {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, testCase.expected, ids)
		})
	}
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	defer clock.Freeze(now)()
	store := content.New(memory.New(), content.WithLogger(logger.Discard()))
	for _, item := range sample() {
		require.NoError(t, store.Create(ctx, item, nil))
	}
	svc := New(store)

	items, err := svc.Query(ctx, "status:pending,in-review assignee:ann")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)

	_, err = svc.Query(ctx, "status:bogus")
	assert.ErrorIs(t, err, model.ErrValidation)

	summary, err := svc.Summary(ctx, &Criteria{ClientIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.InDelta(t, 0.5, summary.ApprovalRate, 1e-9)

	upcoming, err := svc.UpcomingDue(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	assigned, err := svc.ByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "c", assigned[0].ID)

	actions, err := svc.RecentActions(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
