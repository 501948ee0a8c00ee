package contentflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/approval"
	"github.com/viant/contentflow/service/bulk"
	"github.com/viant/contentflow/service/content"
	"github.com/viant/contentflow/service/dao"
	cfs "github.com/viant/contentflow/service/dao/content/fs"
	cmemory "github.com/viant/contentflow/service/dao/content/memory"
	cmongo "github.com/viant/contentflow/service/dao/content/mongo"
	"github.com/viant/contentflow/service/link"
	"github.com/viant/contentflow/service/messaging"
	mmemory "github.com/viant/contentflow/service/messaging/memory"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/service/scheduler"
	"github.com/viant/contentflow/service/stats"
	"github.com/viant/contentflow/service/workflow"
	"github.com/viant/contentflow/tracing"
	"go.mongodb.org/mongo-driver/mongo"
)

// Service wires the engine components over one content store.
type Service struct {
	config    *Config
	logger    *logrus.Entry
	repo      dao.Service[string, model.ContentItem]
	queue     messaging.Queue[model.Notification]
	notifiers []notification.Notifier
	mongo     *mongo.Client

	store     *content.Store
	inbox     *notification.Inbox
	workflows *workflow.Registry
	approval  *approval.Service
	links     *link.Manager
	scheduler *scheduler.Service
	stats     *stats.Service
}

// New builds the engine. It connects to the configured store and loads
// workflow templates when a location is configured.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.config == nil {
		ret.config = DefaultConfig()
	}
	if err := ret.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Close(ctx)
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	cfg := s.config
	if s.logger == nil {
		logger.Init(cfg.Log)
		s.logger = logger.Entry(logger.App)
	}
	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.Tracing.ServiceName, "", cfg.Tracing.Output); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if err := s.ensureRepository(ctx); err != nil {
		return err
	}
	if s.queue == nil && cfg.Queue.Enabled {
		s.queue = mmemory.NewQueue[model.Notification](cfg.Queue.Memory)
	}
	s.inbox = notification.NewInbox(cfg.Inbox.Limit)
	sinks := notification.Multi{s.inbox, notification.NewLogNotifier(logger.Entry(logger.Audit))}
	if s.queue != nil {
		sinks = append(sinks, notification.NewQueueNotifier(s.queue))
	}
	sinks = append(sinks, s.notifiers...)
	dispatcher := notification.NewDispatcher(sinks, s.logger)

	s.store = content.New(s.repo, content.WithDispatch(dispatcher.Dispatch), content.WithLogger(s.logger))
	s.workflows = workflow.New(workflow.WithLogger(s.logger))
	s.approval = approval.New(s.store,
		approval.WithWorkflows(s.workflows),
		approval.WithBulk(bulk.New(bulk.WithConfig(cfg.Bulk), bulk.WithLogger(s.logger))),
		approval.WithLogger(s.logger))
	s.links = link.New(s.store, cfg.Links, link.WithLogger(s.logger))
	s.scheduler = scheduler.New(s.store,
		scheduler.WithPolicy(cfg.Reminders),
		scheduler.WithTask("expire-links", s.links.ExpireLinks),
		scheduler.WithLogger(logger.Entry(logger.Scheduler)))
	s.stats = stats.New(s.store)

	if cfg.Workflows != "" {
		if _, err := s.workflows.Load(ctx, cfg.Workflows); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureRepository(ctx context.Context) error {
	if s.repo != nil {
		return nil
	}
	cfg := s.config.Store
	switch cfg.Kind {
	case StoreFS:
		s.repo = cfs.New(cfg.URL, cfs.WithLogger(s.logger))
	case StoreMongo:
		client, err := cmongo.Connect(ctx, cfg.URL)
		if err != nil {
			return err
		}
		s.mongo = client
		s.repo = cmongo.New(client, cfg.Database, cfg.Collection)
	default:
		s.repo = cmemory.New()
	}
	return nil
}

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// Approval returns the approval state machine.
func (s *Service) Approval() *approval.Service { return s.approval }

// Links returns the review link manager.
func (s *Service) Links() *link.Manager { return s.links }

// Scheduler returns the reminder scheduler.
func (s *Service) Scheduler() *scheduler.Service { return s.scheduler }

// Stats returns the query and stats service.
func (s *Service) Stats() *stats.Service { return s.stats }

// Workflows returns the workflow registry.
func (s *Service) Workflows() *workflow.Registry { return s.workflows }

// Inbox returns the per-user notification inbox.
func (s *Service) Inbox() *notification.Inbox { return s.inbox }

// Queue returns the notification queue external delivery consumes, or nil
// when neither WithQueue nor queue.enabled set one up.
func (s *Service) Queue() messaging.Queue[model.Notification] { return s.queue }

// StartScheduler runs reminder passes at the configured interval. The
// returned stop waits for the running pass to finish.
func (s *Service) StartScheduler(ctx context.Context) (stop func()) {
	if !s.config.Scheduler.Enabled {
		return func() {}
	}
	return s.scheduler.Run(ctx, s.config.Scheduler.Interval)
}

// Close releases the store connection and flushes traces.
func (s *Service) Close(ctx context.Context) error {
	var err error
	if s.mongo != nil {
		err = s.mongo.Disconnect(ctx)
	}
	if s.config != nil && s.config.Tracing.Enabled {
		if tErr := tracing.Shutdown(ctx); tErr != nil && err == nil {
			err = tErr
		}
	}
	return err
}
