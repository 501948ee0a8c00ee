package contentflow

import (
	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/service/dao"
	"github.com/viant/contentflow/service/messaging"
	"github.com/viant/contentflow/service/notification"
	"github.com/viant/contentflow/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the configuration; DefaultConfig is used otherwise.
func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithRepository replaces the repository selected by store.kind.
func WithRepository(repo dao.Service[string, model.ContentItem]) Option {
	return func(s *Service) { s.repo = repo }
}

// WithNotifier adds an external notification sink next to the inbox and
// the queue.
func WithNotifier(notifier notification.Notifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, notifier) }
}

// WithQueue publishes notifications to queue for an external delivery
// worker, whatever queue.enabled says.
func WithQueue(queue messaging.Queue[model.Notification]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithLogger sets the logger shared by engine components.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Service) { s.logger = entry }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times; the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for example
// OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
