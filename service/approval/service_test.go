package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/internal/clock"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/progress"
	"github.com/viant/contentflow/service/audit"
	"github.com/viant/contentflow/service/bulk"
	"github.com/viant/contentflow/service/comment"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao/content/memory"
	"github.com/viant/contentflow/service/workflow"
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

func (r *recorder) of(kind model.NotificationType) []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ret []*model.Notification
	for _, n := range r.sent {
		if n.Type == kind {
			ret = append(ret, n)
		}
	}
	return ret
}

type fixture struct {
	svc       *Service
	workflows *workflow.Registry
	sent      *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &recorder{}
	store := content.New(memory.New(), content.WithDispatch(rec.dispatch), content.WithLogger(logger.Discard()))
	registry := workflow.New(workflow.WithLogger(logger.Discard()))
	svc := New(store,
		WithWorkflows(registry),
		WithBulk(bulk.New(bulk.WithWorkers(4), bulk.WithLogger(logger.Discard()))),
		WithLogger(logger.Discard()))
	return &fixture{svc: svc, workflows: registry, sent: rec}
}

func (f *fixture) create(t *testing.T, title string) *model.ContentItem {
	t.Helper()
	item, err := f.svc.CreateContent(context.Background(), CreateInput{
		ClientID:    "client-1",
		Title:       title,
		ContentType: model.ContentTypeSocialPost,
		Platform:    model.PlatformInstagram,
		Content:     model.Payload{Body: "Spring launch", CallToAction: "Shop the full collection now"},
		CreatedBy:   "writer",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) advanceTo(t *testing.T, id string, status model.Status) {
	t.Helper()
	for i := 0; i < 4; i++ {
		item, err := f.svc.Get(context.Background(), id)
		require.NoError(t, err)
		if item.Status == status {
			return
		}
		_, err = f.svc.AdvanceToNextStage(context.Background(), id, "lead")
		require.NoError(t, err)
	}
	t.Fatalf("item %s did not reach %s", id, status)
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item := f.create(t, "Spring launch")
	assert.Equal(t, model.StatusDraft, item.Status)
	require.Len(t, item.Versions, 1)
	assert.Equal(t, 1, item.Versions[0].VersionNumber)
	assert.Equal(t, model.PriorityMedium, item.Priority)

	_, err := f.svc.RequestRevision(ctx, item.ID, "lead", "needs shorter CTA")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	f.advanceTo(t, item.ID, model.StatusInReview)

	item, err = f.svc.RequestRevision(ctx, item.ID, "lead", "needs shorter CTA")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevisionRequested, item.Status)
	require.Len(t, item.Comments, 1)
	assert.False(t, item.Comments[0].Resolved)
	assert.Equal(t, 1, item.UnresolvedComments)

	_, err = f.svc.Approve(ctx, item.ID, "lead", "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	v2, err := f.svc.AddVersion(ctx, item.ID, VersionInput{Content: model.Payload{Body: "Spring launch", CallToAction: "Shop now"}, Changes: "shorter CTA", Actor: "writer"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
	item, err = f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, item.Status)
	assert.Equal(t, v2.ID, item.CurrentVersionID)

	f.advanceTo(t, item.ID, model.StatusInReview)
	item, err = f.svc.Approve(ctx, item.ID, "client-owner", "looks great")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, item.Status)
	assert.Equal(t, []string{"client-owner"}, item.ApprovedBy)

	publishAt := clock.Now().Add(48 * time.Hour)
	item, err = f.svc.Schedule(ctx, item.ID, "lead", publishAt)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, item.Status)
	require.NotNil(t, item.ScheduledPublishDate)

	item, err = f.svc.Publish(ctx, item.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, item.Status)

	_, err = f.svc.AdvanceToNextStage(ctx, item.ID, "lead")
	assert.ErrorIs(t, err, model.ErrTerminalState)

	replayed, ok := audit.Replay(item.Actions)
	require.True(t, ok)
	assert.Equal(t, item.Status, replayed)
	assert.Equal(t, model.ActionStatusChange, item.Actions[0].ActionType)
	assert.Nil(t, item.Actions[0].FromStatus)
	assert.True(t, comment.Consistent(item))

	assert.NotEmpty(t, f.sent.of(model.NotificationStatusChanged))
	for _, n := range f.sent.of(model.NotificationStatusChanged) {
		if n.Title == "Status changed" {
			assert.Equal(t, "writer", n.UserID)
		}
	}
}

func TestService_CreateContent_Validation(t *testing.T) {
	valid := CreateInput{
		ClientID:    "c1",
		Title:       "Launch",
		ContentType: model.ContentTypeEmailCampaign,
		Platform:    model.PlatformEmail,
		CreatedBy:   "writer",
	}
	testCases := []struct {
		description string
		mutate      func(in *CreateInput)
		expectErr   bool
	}{
		{description: "valid", mutate: func(*CreateInput) {}},
		{description: "missing client", mutate: func(in *CreateInput) { in.ClientID = "" }, expectErr: true},
		{description: "blank title", mutate: func(in *CreateInput) { in.Title = "  " }, expectErr: true},
		{description: "unknown type", mutate: func(in *CreateInput) { in.ContentType = "hologram" }, expectErr: true},
		{description: "unknown platform", mutate: func(in *CreateInput) { in.Platform = "myspace" }, expectErr: true},
		{description: "unknown priority", mutate: func(in *CreateInput) { in.Priority = "critical" }, expectErr: true},
		{description: "bad media url", mutate: func(in *CreateInput) { in.Content.MediaURLs = []string{"not a url"} }, expectErr: true},
		{description: "video script without body", mutate: func(in *CreateInput) { in.ContentType = model.ContentTypeVideoScript }, expectErr: true},
		{description: "unknown workflow", mutate: func(in *CreateInput) { in.WorkflowID = "missing" }, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f := newFixture(t)
			in := valid
			testCase.mutate(&in)
			item, err := f.svc.CreateContent(context.Background(), in)
			if testCase.expectErr {
				assert.Error(t, err, testCase.description)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Launch", item.CurrentVersion().Content.Title)
		})
	}
}

func TestService_TransitionGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.create(t, "Guards")

	_, err := f.svc.Reject(ctx, item.ID, "lead", " ")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.svc.Approve(ctx, item.ID, "lead", "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.svc.Schedule(ctx, item.ID, "lead", clock.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.svc.Publish(ctx, item.ID, "lead")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.svc.Approve(ctx, "missing", "lead", "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.SubmitForReview(ctx, item.ID, "writer")
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, item.ID, "writer")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	item, err = f.svc.Decide(ctx, item.ID, "lead", Decision{Approved: false, Reason: "off brand"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, item.Status)
	assert.Equal(t, []string{"lead"}, item.RejectedBy)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "off brand", item.Comments[0].Message)

	unchanged, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	before := len(unchanged.Actions)
	_, err = f.svc.Approve(ctx, item.ID, "lead", "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	after, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, after.Actions, before)
}

func TestService_Bulk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		item := f.create(t, title)
		f.advanceTo(t, item.ID, model.StatusPending)
		ids = append(ids, item.ID)
	}
	draft := f.create(t, "still draft")
	batch := []string{ids[0], draft.ID, "missing", ids[1], ids[2]}

	trackedCtx, tracker := progress.WithNewTracker(ctx, "approve", nil)
	results := f.svc.BulkApprove(trackedCtx, batch, "lead", "")
	require.Len(t, results, len(batch))
	for i, r := range results {
		assert.Equal(t, batch[i], r.ID)
	}
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.ErrorIs(t, results[1].Err, model.ErrInvalidTransition)
	assert.ErrorIs(t, results[2].Err, model.ErrNotFound)
	assert.True(t, results[3].OK)
	assert.True(t, results[4].OK)
	succeeded, failed := bulk.Count(results)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, failed)
	snapshot := tracker.Snapshot()
	assert.Equal(t, 5, snapshot.Total)
	assert.Equal(t, 3, snapshot.Succeeded)
	assert.Equal(t, 2, snapshot.Failed)

	item, err := f.svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, item.Status)

	results = f.svc.BulkSchedule(ctx, ids, "lead", clock.Now().Add(24*time.Hour))
	for _, r := range results {
		assert.True(t, r.OK, r.Error)
	}
	results = f.svc.BulkReject(ctx, []string{draft.ID}, "lead", "")
	assert.ErrorIs(t, results[0].Err, model.ErrValidation)
	results = f.svc.BulkAssign(ctx, append(ids, draft.ID), "lead", []string{"ann", "bob", "ann"})
	for _, r := range results {
		assert.True(t, r.OK, r.Error)
	}
	item, err = f.svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "bob"}, item.AssignedTo)
	results = f.svc.BulkAdvance(ctx, []string{draft.ID, ids[0]}, "lead")
	assert.True(t, results[0].OK)
	assert.ErrorIs(t, results[1].Err, model.ErrInvalidTransition)
}

func TestService_Workflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wf, err := f.workflows.Save(ctx, &model.ApprovalWorkflow{
		ClientID:  "client-1",
		Name:      "standard",
		IsDefault: true,
		Stages: []*model.Stage{
			{Name: "internal", Status: model.StatusPending, Approvers: []string{"lead"}},
			{Name: "client", Status: model.StatusInReview, Approvers: []string{"client-owner"}},
		},
	})
	require.NoError(t, err)

	item := f.create(t, "Workflow")
	assert.Equal(t, wf.ID, item.WorkflowID)
	assert.Equal(t, []string{"lead"}, item.AssignedTo)

	item, err = f.svc.AdvanceToNextStage(ctx, item.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, []string{"lead"}, item.AssignedTo)
	item, err = f.svc.AdvanceToNextStage(ctx, item.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, []string{"client-owner"}, item.AssignedTo)

	assigned := f.sent.of(model.NotificationAssigned)
	var users []string
	for _, n := range assigned {
		users = append(users, n.UserID)
	}
	assert.ElementsMatch(t, []string{"lead", "client-owner"}, users)

	other, err := f.workflows.Save(ctx, &model.ApprovalWorkflow{
		ClientID: "client-2",
		Name:     "foreign",
		Stages:   []*model.Stage{{Name: "review", Status: model.StatusPending, Approvers: []string{"x"}}},
	})
	require.NoError(t, err)
	_, err = f.svc.ApplyWorkflow(ctx, item.ID, other.ID, "lead")
	assert.ErrorIs(t, err, model.ErrValidation)
	item, err = f.svc.ApplyWorkflow(ctx, item.ID, wf.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, []string{"client-owner"}, item.AssignedTo)
}

func TestService_Comments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.create(t, "Thread")
	author := model.Author{ID: "writer", Role: model.RoleAgency}

	root, err := f.svc.AddComment(ctx, item.ID, comment.Input{Author: author, Message: "thoughts @lead?", Mentions: []string{"@lead", "lead", "writer"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead"}, root.Mentions)
	require.Len(t, f.sent.of(model.NotificationMention), 1)

	reply, err := f.svc.AddComment(ctx, item.ID, comment.Input{Author: model.Author{ID: "lead", Role: model.RoleAgency}, Message: "fine", ParentCommentID: root.ID})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, item.ID, comment.Input{Author: author, Message: "orphan", ParentCommentID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	other, err := f.svc.AddComment(ctx, item.ID, comment.Input{Author: author, Message: "separate"})
	require.NoError(t, err)

	_, err = f.svc.UpdateComment(ctx, item.ID, reply.ID, "writer", "hijack")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.svc.UpdateComment(ctx, item.ID, reply.ID, "lead", "fine by me")
	require.NoError(t, err)

	_, err = f.svc.ResolveComment(ctx, item.ID, reply.ID, "writer")
	require.NoError(t, err)
	_, err = f.svc.AddReaction(ctx, item.ID, other.ID, "👍", "lead")
	require.NoError(t, err)
	reacted, err := f.svc.AddReaction(ctx, item.ID, other.ID, "👍", "lead")
	require.NoError(t, err)
	assert.Equal(t, []string{"lead"}, reacted.Reactions["👍"])
	reacted, err = f.svc.RemoveReaction(ctx, item.ID, other.ID, "👍", "lead")
	require.NoError(t, err)
	assert.Empty(t, reacted.Reactions)

	current, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.TotalComments)
	assert.Equal(t, 2, current.UnresolvedComments)

	require.NoError(t, f.svc.DeleteComment(ctx, item.ID, root.ID, "writer"))
	current, err = f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.TotalComments)
	assert.Equal(t, 1, current.UnresolvedComments)
	assert.True(t, comment.Consistent(current))

	_, err = f.svc.ResolveComment(ctx, item.ID, other.ID, "writer")
	require.NoError(t, err)
	reopened, err := f.svc.UnresolveComment(ctx, item.ID, other.ID, "writer")
	require.NoError(t, err)
	assert.False(t, reopened.Resolved)
	current, err = f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.UnresolvedComments)
	assert.Equal(t, model.StatusDraft, current.Status)
}

func TestService_RevertAndCompare(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.create(t, "Versions")
	v1 := item.CurrentVersionID
	f.advanceTo(t, item.ID, model.StatusPending)

	v2, err := f.svc.AddVersion(ctx, item.ID, VersionInput{Content: model.Payload{Body: "Spring launch\nNew line", CallToAction: "Shop now", Hashtags: []string{"#spring", " #spring "}}, Actor: "writer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"#spring"}, v2.Content.Hashtags)

	diff, err := f.svc.CompareVersions(ctx, item.ID, v1, v2.ID)
	require.NoError(t, err)
	assert.True(t, diff.BodyChanged)
	assert.True(t, diff.CallToActionChanged)
	assert.False(t, diff.MediaChanged)
	assert.Equal(t, 1, diff.Stats.Added)

	f.advanceTo(t, item.ID, model.StatusPending)
	reverted, err := f.svc.RevertToVersion(ctx, item.ID, v1, "writer")
	require.NoError(t, err)
	assert.Equal(t, 1, reverted.VersionNumber)
	item, err = f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, item.Status)
	assert.Equal(t, v1, item.CurrentVersionID)
	assert.Len(t, item.Versions, 2)

	_, err = f.svc.RevertToVersion(ctx, item.ID, "missing", "writer")
	assert.ErrorIs(t, err, model.ErrVersionNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.AddVersion(ctx, item.ID, VersionInput{Content: model.Payload{}, Actor: "writer"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestService_SetDueDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.create(t, "Due")
	due := clock.Now().Add(72 * time.Hour)
	item, err := f.svc.SetDueDate(ctx, item.ID, &due)
	require.NoError(t, err)
	require.NotNil(t, item.DueDate)
	assert.True(t, item.DueDate.Equal(due))
	item, err = f.svc.SetDueDate(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, item.DueDate)
}
