// Package contentflow provides a content approval workflow engine.
//
// Marketing content moves from draft through review to approval and
// publication while the engine keeps an immutable version history, an
// append-only audit log, a threaded discussion and time-boxed review links
// for clients without accounts. Overdue items drive reminders and
// escalation notifications.
//
// The root package wires the engine together from a Config:
//
//	srv, _ := contentflow.New(ctx, contentflow.WithConfig(cfg))
//	defer srv.Close(ctx)
//	item, _ := srv.Approval().CreateContent(ctx, approval.CreateInput{...})
//	_, _ = srv.Approval().SubmitForReview(ctx, item.ID, "writer")
//	stop := srv.StartScheduler(ctx)
//	defer stop()
//
// Sub-packages can be used on their own; see service/approval,
// service/link, service/scheduler and service/stats.
package contentflow
