package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/viant/contentflow"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/approval"
	"github.com/viant/contentflow/service/bulk"
	"github.com/viant/contentflow/service/comment"
	"github.com/viant/contentflow/service/link"
	"github.com/viant/contentflow/service/stats"
)

const (
	// HeaderUser identifies the calling agency user. Authentication happens
	// in front of this service.
	HeaderUser = "X-User-ID"
	// HeaderReviewPassword carries the optional review link password.
	HeaderReviewPassword = "X-Review-Password"

	actorKey = "actor"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	srv *contentflow.Service
}

// NewHandler creates a handler over srv.
func NewHandler(srv *contentflow.Service) *Handler {
	return &Handler{srv: srv}
}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"status": "ok", "data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": data})
}

// parseBody decodes an optional JSON body into out.
func parseBody(c fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return validation.Failf("invalid request body: %v", err)
	}
	return nil
}

func actor(c fiber.Ctx) string {
	if v, ok := c.Locals(actorKey).(string); ok {
		return v
	}
	return ""
}

// requireUser rejects agency calls without a user id.
func requireUser(c fiber.Ctx) error {
	user := c.Get(HeaderUser)
	if user == "" {
		return fiber.NewError(fiber.StatusUnauthorized, HeaderUser+" header is required")
	}
	c.Locals(actorKey, user)
	return c.Next()
}

func queryInt(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, validation.Failf("%s must be a non-negative integer", key)
	}
	return v, nil
}

// CreateItem handles POST /items.
func (h *Handler) CreateItem(c fiber.Ctx) error {
	var in approval.CreateInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	in.CreatedBy = actor(c)
	item, err := h.srv.Approval().CreateContent(c.Context(), in)
	if err != nil {
		return err
	}
	return created(c, item)
}

// ListItems handles GET /items?q=status:pending+platform:instagram.
func (h *Handler) ListItems(c fiber.Ctx) error {
	items, err := h.srv.Stats().Query(c.Context(), c.Query("q"))
	if err != nil {
		return err
	}
	return ok(c, items)
}

// GetItem handles GET /items/:id.
func (h *Handler) GetItem(c fiber.Ctx) error {
	item, err := h.srv.Approval().Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, item)
}

// Transition handles POST /items/:id/transitions/:action.
func (h *Handler) Transition(c fiber.Ctx) error {
	var req TransitionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc := h.srv.Approval()
	ctx, id, user := c.Context(), c.Params("id"), actor(c)
	var item *model.ContentItem
	var err error
	switch c.Params("action") {
	case "advance":
		item, err = svc.AdvanceToNextStage(ctx, id, user)
	case "submit":
		item, err = svc.SubmitForReview(ctx, id, user)
	case "approve":
		item, err = svc.Approve(ctx, id, user, req.Message)
	case "reject":
		item, err = svc.Reject(ctx, id, user, req.Reason)
	case "request-revision":
		item, err = svc.RequestRevision(ctx, id, user, req.Feedback)
	case "schedule":
		var publishAt time.Time
		if req.PublishAt != nil {
			publishAt = *req.PublishAt
		}
		item, err = svc.Schedule(ctx, id, user, publishAt)
	case "publish":
		item, err = svc.Publish(ctx, id, user)
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown action "+c.Params("action"))
	}
	if err != nil {
		return err
	}
	return ok(c, item)
}

// AssignApprovers handles PUT /items/:id/assignees.
func (h *Handler) AssignApprovers(c fiber.Ctx) error {
	var req AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.srv.Approval().AssignApprovers(c.Context(), c.Params("id"), actor(c), req.Approvers)
	if err != nil {
		return err
	}
	return ok(c, item)
}

// ApplyWorkflow handles PUT /items/:id/workflow.
func (h *Handler) ApplyWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.srv.Approval().ApplyWorkflow(c.Context(), c.Params("id"), req.WorkflowID, actor(c))
	if err != nil {
		return err
	}
	return ok(c, item)
}

// SetDueDate handles PUT /items/:id/due-date.
func (h *Handler) SetDueDate(c fiber.Ctx) error {
	var req DueDateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.srv.Approval().SetDueDate(c.Context(), c.Params("id"), req.DueDate)
	if err != nil {
		return err
	}
	return ok(c, item)
}

// AddVersion handles POST /items/:id/versions.
func (h *Handler) AddVersion(c fiber.Ctx) error {
	var in approval.VersionInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	in.Actor = actor(c)
	v, err := h.srv.Approval().AddVersion(c.Context(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return created(c, v)
}

// RevertVersion handles POST /items/:id/versions/:versionId/revert.
func (h *Handler) RevertVersion(c fiber.Ctx) error {
	v, err := h.srv.Approval().RevertToVersion(c.Context(), c.Params("id"), c.Params("versionId"), actor(c))
	if err != nil {
		return err
	}
	return created(c, v)
}

// CompareVersions handles GET /items/:id/compare?from=&to=.
func (h *Handler) CompareVersions(c fiber.Ctx) error {
	diff, err := h.srv.Approval().CompareVersions(c.Context(), c.Params("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}
	return ok(c, diff)
}

// AddComment handles POST /items/:id/comments.
func (h *Handler) AddComment(c fiber.Ctx) error {
	var req CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = model.RoleAgency
	}
	in := comment.Input{
		Author:          model.Author{ID: actor(c), Name: req.Name, Email: req.Email, Role: role},
		Message:         req.Message,
		ParentCommentID: req.ParentCommentID,
		Mentions:        req.Mentions,
	}
	ret, err := h.srv.Approval().AddComment(c.Context(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return created(c, ret)
}

// UpdateComment handles PATCH /items/:id/comments/:commentId.
func (h *Handler) UpdateComment(c fiber.Ctx) error {
	var req CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.srv.Approval().UpdateComment(c.Context(), c.Params("id"), c.Params("commentId"), actor(c), req.Message)
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// DeleteComment handles DELETE /items/:id/comments/:commentId.
func (h *Handler) DeleteComment(c fiber.Ctx) error {
	if err := h.srv.Approval().DeleteComment(c.Context(), c.Params("id"), c.Params("commentId"), actor(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ResolveComment handles POST /items/:id/comments/:commentId/resolve and
// DELETE of the same path.
func (h *Handler) ResolveComment(c fiber.Ctx) error {
	svc := h.srv.Approval()
	resolve := svc.ResolveComment
	if c.Method() == fiber.MethodDelete {
		resolve = svc.UnresolveComment
	}
	ret, err := resolve(c.Context(), c.Params("id"), c.Params("commentId"), actor(c))
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// AddReaction handles POST /items/:id/comments/:commentId/reactions.
func (h *Handler) AddReaction(c fiber.Ctx) error {
	var req ReactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.srv.Approval().AddReaction(c.Context(), c.Params("id"), c.Params("commentId"), req.Emoji, actor(c))
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// RemoveReaction handles DELETE /items/:id/comments/:commentId/reactions/:emoji.
func (h *Handler) RemoveReaction(c fiber.Ctx) error {
	ret, err := h.srv.Approval().RemoveReaction(c.Context(), c.Params("id"), c.Params("commentId"), c.Params("emoji"), actor(c))
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// GenerateLink handles POST /items/:id/links.
func (h *Handler) GenerateLink(c fiber.Ctx) error {
	var req LinkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	l, err := h.srv.Links().Generate(c.Context(), link.Request{
		ItemID:   c.Params("id"),
		ClientID: req.ClientID,
		Actor:    actor(c),
		Settings: req.Settings,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return created(c, l)
}

// ListLinks handles GET /items/:id/links.
func (h *Handler) ListLinks(c fiber.Ctx) error {
	links, err := h.srv.Links().ListLinks(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, links)
}

// DeactivateLink handles DELETE /links/:linkId.
func (h *Handler) DeactivateLink(c fiber.Ctx) error {
	l, err := h.srv.Links().Deactivate(c.Context(), c.Params("linkId"))
	if err != nil {
		return err
	}
	return ok(c, l)
}

// Review handles the public GET /review/:token.
func (h *Handler) Review(c fiber.Ctx) error {
	view, err := h.srv.Links().Open(c.Context(), c.Params("token"), c.Get(HeaderReviewPassword))
	if err != nil {
		return err
	}
	return ok(c, view)
}

// ReviewComment handles the public POST /review/:token/comments.
func (h *Handler) ReviewComment(c fiber.Ctx) error {
	var in link.ClientComment
	if err := parseBody(c, &in); err != nil {
		return err
	}
	ret, err := h.srv.Links().AddClientComment(c.Context(), c.Params("token"), c.Get(HeaderReviewPassword), in)
	if err != nil {
		return err
	}
	return created(c, ret)
}

// Bulk handles POST /bulk/:action.
func (h *Handler) Bulk(c fiber.Ctx) error {
	var req BulkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.IDs) == 0 {
		return validation.Failf("ids are required")
	}
	svc := h.srv.Approval()
	ctx, user := c.Context(), actor(c)
	var results []bulk.Result
	switch c.Params("action") {
	case "approve":
		results = svc.BulkApprove(ctx, req.IDs, user, req.Message)
	case "reject":
		results = svc.BulkReject(ctx, req.IDs, user, req.Reason)
	case "assign":
		results = svc.BulkAssign(ctx, req.IDs, user, req.Approvers)
	case "schedule":
		var publishAt time.Time
		if req.PublishAt != nil {
			publishAt = *req.PublishAt
		}
		results = svc.BulkSchedule(ctx, req.IDs, user, publishAt)
	case "advance":
		results = svc.BulkAdvance(ctx, req.IDs, user)
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown bulk action "+c.Params("action"))
	}
	succeeded, failed := bulk.Count(results)
	return ok(c, BulkResponse{Succeeded: succeeded, Failed: failed, Results: results})
}

// Stats handles GET /stats?q=.
func (h *Handler) Stats(c fiber.Ctx) error {
	criteria, err := stats.Parse(c.Query("q"))
	if err != nil {
		return err
	}
	summary, err := h.srv.Stats().Summary(c.Context(), criteria)
	if err != nil {
		return err
	}
	return ok(c, summary)
}

// RecentActions handles GET /stats/recent?limit=.
func (h *Handler) RecentActions(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return err
	}
	actions, err := h.srv.Stats().RecentActions(c.Context(), limit)
	if err != nil {
		return err
	}
	return ok(c, actions)
}

// UpcomingDue handles GET /stats/upcoming?limit=.
func (h *Handler) UpcomingDue(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return err
	}
	items, err := h.srv.Stats().UpcomingDue(c.Context(), limit)
	if err != nil {
		return err
	}
	return ok(c, items)
}

// MyItems handles GET /me/items.
func (h *Handler) MyItems(c fiber.Ctx) error {
	items, err := h.srv.Stats().ByUser(c.Context(), actor(c))
	if err != nil {
		return err
	}
	return ok(c, items)
}

// Overdue handles GET /overdue.
func (h *Handler) Overdue(c fiber.Ctx) error {
	items, err := h.srv.Scheduler().GetOverdueItems(c.Context())
	if err != nil {
		return err
	}
	return ok(c, items)
}

// SendReminders handles POST /reminders.
func (h *Handler) SendReminders(c fiber.Ctx) error {
	var req ReminderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	reminded, err := h.srv.Scheduler().SendReminders(c.Context(), req.IDs...)
	if err != nil && len(reminded) == 0 {
		return err
	}
	return ok(c, ReminderResponse{Reminded: reminded, Failed: failures(err)})
}

// failures splits a joined error into one message per item.
func failures(err error) []string {
	if err == nil {
		return nil
	}
	joined, isJoined := err.(interface{ Unwrap() []error })
	if !isJoined {
		return []string{err.Error()}
	}
	var ret []string
	for _, e := range joined.Unwrap() {
		ret = append(ret, e.Error())
	}
	return ret
}

// Escalate handles POST /escalations.
func (h *Handler) Escalate(c fiber.Ctx) error {
	escalated, err := h.srv.Scheduler().AutoEscalate(c.Context())
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"escalated": escalated})
}

// Notifications handles GET /notifications?unread=true.
func (h *Handler) Notifications(c fiber.Ctx) error {
	user := actor(c)
	unread := c.Query("unread") == "true"
	inbox := h.srv.Inbox()
	return ok(c, fiber.Map{
		"unread":        inbox.UnreadCount(user),
		"notifications": inbox.List(user, unread),
	})
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c fiber.Ctx) error {
	if err := h.srv.Inbox().MarkRead(actor(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(c fiber.Ctx) error {
	changed := h.srv.Inbox().MarkAllRead(actor(c))
	return ok(c, fiber.Map{"changed": changed})
}

// ListWorkflows handles GET /workflows?clientId=.
func (h *Handler) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.srv.Workflows().List(c.Context(), c.Query("clientId"))
	if err != nil {
		return err
	}
	return ok(c, workflows)
}

// SaveWorkflow handles POST /workflows.
func (h *Handler) SaveWorkflow(c fiber.Ctx) error {
	var w model.ApprovalWorkflow
	if err := parseBody(c, &w); err != nil {
		return err
	}
	saved, err := h.srv.Workflows().Save(c.Context(), &w)
	if err != nil {
		return err
	}
	return created(c, saved)
}

// SetDefaultWorkflow handles PUT /workflows/:id/default.
func (h *Handler) SetDefaultWorkflow(c fiber.Ctx) error {
	w, err := h.srv.Workflows().SetDefault(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, w)
}

// DeleteWorkflow handles DELETE /workflows/:id.
func (h *Handler) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.srv.Workflows().Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
