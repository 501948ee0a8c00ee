package link

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao/content/memory"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/service/version"
)

type fixture struct {
	store   *content.Store
	manager *Manager
	inbox   *notification.Inbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inbox := notification.NewInbox(0)
	dispatcher := notification.NewDispatcher(inbox, logger.Discard())
	store := content.New(memory.New(), content.WithDispatch(dispatcher.Dispatch), content.WithLogger(logger.Discard()))
	item := &model.ContentItem{ID: "i1", ClientID: "c1", Title: "Spring launch", ContentType: model.ContentTypeSocialPost, Status: model.StatusDraft, CreatedBy: "creator", AssignedTo: []string{"approver"}}
	_, err := version.Add(item, model.Payload{Title: "Spring launch", Caption: "Hello"}, "", "", "creator")
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), item, nil))
	config := DefaultConfig()
	config.BaseURL = "https://review.example.com/r/"
	return &fixture{store: store, manager: New(store, config, WithLogger(logger.Discard())), inbox: inbox}
}

func TestManager_Generate(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	defer clock.Freeze(now)()

	issued, err := f.manager.Generate(context.Background(), Request{ItemID: "i1", ClientID: "c1", Actor: "creator"})
	require.NoError(t, err)
	assert.Len(t, issued.Token, 32)
	assert.Equal(t, "https://review.example.com/r/"+issued.Token, issued.URL)
	assert.Equal(t, now.AddDate(0, 0, 7), issued.ExpiresAt)
	assert.Equal(t, model.DefaultLinkSettings(), issued.Settings)
	assert.True(t, issued.IsActive)

	other, err := f.manager.Generate(context.Background(), Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)
	assert.NotEqual(t, issued.Token, other.Token)

	_, err = f.manager.Generate(context.Background(), Request{ItemID: "missing", ClientID: "c1"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.manager.Generate(context.Background(), Request{ItemID: "i1"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	restore := clock.Freeze(now)
	defer func() { restore() }()

	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)

	item, resolved, err := f.manager.Resolve(ctx, issued.Token, "")
	require.NoError(t, err)
	assert.Equal(t, "i1", item.ID)
	assert.Equal(t, issued.ID, resolved.ID)
	assert.EqualValues(t, 0, resolved.AccessCount)

	_, _, err = f.manager.Resolve(ctx, "not-a-token", "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)
	_, _, err = f.manager.Resolve(ctx, strings.ToUpper(issued.Token), "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)

	restore()
	restore = clock.Freeze(now.AddDate(0, 0, 8))
	_, _, err = f.manager.Resolve(ctx, issued.Token, "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)
	_, err = f.manager.Open(ctx, issued.Token, "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)

	count, err := f.manager.ExpireLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = f.manager.ExpireLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	restore()
	restore = clock.Freeze(now)
	_, _, err = f.manager.Resolve(ctx, issued.Token, "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid, "expired links stay deactivated")
}

func TestManager_Deactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)

	deactivated, err := f.manager.Deactivate(ctx, issued.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	again, err := f.manager.Deactivate(ctx, issued.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	_, _, err = f.manager.Resolve(ctx, issued.Token, "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)
	_, err = f.manager.Deactivate(ctx, "unknown")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_Password(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	settings := model.DefaultLinkSettings()
	settings.RequirePassword = true

	_, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1", Settings: &settings})
	assert.ErrorIs(t, err, model.ErrValidation)

	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1", Settings: &settings, Password: "s3cret"})
	require.NoError(t, err)
	assert.Nil(t, issued.PasswordHash)

	for _, password := range []string{"", "wrong"} {
		_, _, err = f.manager.Resolve(ctx, issued.Token, password)
		assert.ErrorIs(t, err, model.ErrLinkInvalid, password)
	}
	_, _, err = f.manager.Resolve(ctx, issued.Token, "s3cret")
	assert.NoError(t, err)

	links, err := f.manager.ListLinks(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Nil(t, links[0].PasswordHash)
}

func TestManager_ConcurrentTrackAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	settings := model.DefaultLinkSettings()
	settings.NotifyOnAccess = false
	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1", Settings: &settings})
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := f.manager.TrackAccess(ctx, issued.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	links, err := f.manager.ListLinks(ctx, "i1")
	require.NoError(t, err)
	assert.EqualValues(t, n, links[0].AccessCount)
	assert.NotNil(t, links[0].LastAccessedAt)
	assert.Equal(t, 0, f.inbox.UnreadCount("creator"))
}

func TestManager_Open(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)

	view, err := f.manager.Open(ctx, issued.Token, "")
	require.NoError(t, err)
	assert.Equal(t, "Spring launch", view.Title)
	assert.Equal(t, "Hello", view.Content.Caption)
	assert.Equal(t, 1, view.VersionNumber)
	assert.True(t, view.AllowComments)

	notifications := f.inbox.List("creator", true)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationLinkAccessed, notifications[0].Type)

	links, err := f.manager.ListLinks(ctx, "i1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, links[0].AccessCount)
}

func TestManager_AddClientComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)
	closedSettings := model.LinkSettings{AllowComments: false}
	closed, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1", Settings: &closedSettings})
	require.NoError(t, err)

	posted, err := f.manager.AddClientComment(ctx, open.Token, "", ClientComment{Name: "Cleo", Message: "Love it"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, posted.Author.Role)
	assert.Equal(t, "c1", posted.Author.ID)

	_, err = f.manager.AddClientComment(ctx, closed.Token, "", ClientComment{Message: "Hi"})
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.manager.AddClientComment(ctx, "bogus", "", ClientComment{Message: "Hi"})
	assert.ErrorIs(t, err, model.ErrLinkInvalid)
	_, err = f.manager.AddClientComment(ctx, open.Token, "", ClientComment{Message: "Hi", ParentCommentID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	item, err := f.store.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.TotalComments)
	assert.Equal(t, 1, f.inbox.UnreadCount("approver"))
}

func TestManager_IndexRebuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)

	fresh := New(f.store, DefaultConfig(), WithLogger(logger.Discard()))
	_, found, err := fresh.Resolve(ctx, issued.Token, "")
	require.NoError(t, err)
	assert.Equal(t, issued.ID, found.ID)
	_, err = fresh.TrackAccess(ctx, issued.ID)
	assert.NoError(t, err)
}

func TestManager_SharedStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := New(f.store, DefaultConfig(), WithLogger(logger.Discard()))

	first, err := other.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)
	_, _, err = other.Resolve(ctx, first.Token, "")
	require.NoError(t, err)

	issued, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)
	_, found, err := other.Resolve(ctx, issued.Token, "")
	require.NoError(t, err)
	assert.Equal(t, issued.ID, found.ID)

	second, err := f.manager.Generate(ctx, Request{ItemID: "i1", ClientID: "c1"})
	require.NoError(t, err)
	tracked, err := other.TrackAccess(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tracked.AccessCount)
	deactivated, err := other.Deactivate(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, _, err = other.Resolve(ctx, "unknown-token", "")
	assert.ErrorIs(t, err, model.ErrLinkInvalid)
	_, err = other.TrackAccess(ctx, "unknown-link")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
