// Package api serves the approval engine over HTTP with fiber.
package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/tracing"
)

// Options tunes the HTTP application.
type Options struct {
	AllowOrigins []string
	Logger       *logrus.Entry
}

// Option customises the application.
type Option func(*Options)

// WithAllowOrigins sets the CORS origins; the default allows any origin.
func WithAllowOrigins(origins ...string) Option {
	return func(o *Options) { o.AllowOrigins = origins }
}

// WithLogger sets the request error logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(o *Options) { o.Logger = entry }
}

// New builds the fiber application for srv.
func New(srv *contentflow.Service, options ...Option) *fiber.App {
	opts := &Options{AllowOrigins: []string{"*"}, Logger: logger.Entry(logger.App)}
	for _, opt := range options {
		opt(opts)
	}
	cfg := srv.Config().HTTP
	app := fiber.New(fiber.Config{
		AppName:      "contentflow",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler(opts.Logger),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{Header: "X-Request-ID"}))
	app.Use(traced)
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", HeaderUser, HeaderReviewPassword},
	}))
	Register(app, NewHandler(srv))
	return app
}

// Register mounts the agency API under /api/v1 and the public review
// endpoints under /review.
func Register(app *fiber.App, h *Handler) {
	app.Get("/healthz", func(c fiber.Ctx) error { return c.SendString("ok") })

	review := app.Group("/review")
	review.Get("/:token", h.Review)
	review.Post("/:token/comments", h.ReviewComment)

	v1 := app.Group("/api/v1", requireUser)
	v1.Post("/items", h.CreateItem)
	v1.Get("/items", h.ListItems)
	v1.Get("/items/:id", h.GetItem)
	v1.Post("/items/:id/transitions/:action", h.Transition)
	v1.Put("/items/:id/assignees", h.AssignApprovers)
	v1.Put("/items/:id/workflow", h.ApplyWorkflow)
	v1.Put("/items/:id/due-date", h.SetDueDate)
	v1.Post("/items/:id/versions", h.AddVersion)
	v1.Post("/items/:id/versions/:versionId/revert", h.RevertVersion)
	v1.Get("/items/:id/compare", h.CompareVersions)
	v1.Post("/items/:id/comments", h.AddComment)
	v1.Patch("/items/:id/comments/:commentId", h.UpdateComment)
	v1.Delete("/items/:id/comments/:commentId", h.DeleteComment)
	v1.Post("/items/:id/comments/:commentId/resolve", h.ResolveComment)
	v1.Delete("/items/:id/comments/:commentId/resolve", h.ResolveComment)
	v1.Post("/items/:id/comments/:commentId/reactions", h.AddReaction)
	v1.Delete("/items/:id/comments/:commentId/reactions/:emoji", h.RemoveReaction)
	v1.Post("/items/:id/links", h.GenerateLink)
	v1.Get("/items/:id/links", h.ListLinks)
	v1.Delete("/links/:linkId", h.DeactivateLink)
	v1.Post("/bulk/:action", h.Bulk)
	v1.Get("/stats", h.Stats)
	v1.Get("/stats/recent", h.RecentActions)
	v1.Get("/stats/upcoming", h.UpcomingDue)
	v1.Get("/me/items", h.MyItems)
	v1.Get("/overdue", h.Overdue)
	v1.Post("/reminders", h.SendReminders)
	v1.Post("/escalations", h.Escalate)
	v1.Get("/notifications", h.Notifications)
	v1.Post("/notifications/read-all", h.MarkAllRead)
	v1.Post("/notifications/:id/read", h.MarkRead)
	v1.Get("/workflows", h.ListWorkflows)
	v1.Post("/workflows", h.SaveWorkflow)
	v1.Put("/workflows/:id/default", h.SetDefaultWorkflow)
	v1.Delete("/workflows/:id", h.DeleteWorkflow)
}

// traced wraps every request in a SERVER span.
func traced(c fiber.Ctx) error {
	_, span := tracing.StartSpan(c.Context(), c.Method()+" "+c.Path(), "SERVER")
	span.WithAttributes(map[string]string{"http.request_id": requestid.FromContext(c)})
	err := c.Next()
	code := c.Response().StatusCode()
	if err != nil {
		code = StatusOf(err)
	}
	tracing.EndHTTPSpan(span, code)
	return err
}
