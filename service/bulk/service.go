// Package bulk runs one operation over many items on a bounded worker pool.
// Items are independent: a failure is recorded against its id and never
// stops the rest of the batch.
package bulk

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/internal/validation"
	"github.com/viant/contentflow/progress"
	"github.com/viant/contentflow/tracing"
)

// Config represents bulk pool configuration
type Config struct {
	// Workers caps the number of items processed in parallel.
	Workers int `json:"workers" yaml:"workers" env:"BULK_WORKERS"`
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() Config {
	return Config{Workers: 8}
}

// Result is the outcome for a single id.
type Result struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Func processes one id.
type Func func(ctx context.Context, id string) error

// Service is a bounded worker pool.
type Service struct {
	config Config
	logger *logrus.Entry
}

// Option customises the service.
type Option func(*Service)

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) { s.config.Workers = count }
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Service) { s.logger = entry }
}

// New creates a pool.
func New(options ...Option) *Service {
	s := &Service{config: DefaultConfig(), logger: logger.Entry(logger.App)}
	for _, opt := range options {
		opt(s)
	}
	if s.config.Workers <= 0 {
		s.config.Workers = DefaultConfig().Workers
	}
	return s
}

type job struct {
	index int
	id    string
}

// Run applies fn to every id and returns results in input order. Progress
// is reported to the tracker carried by ctx, if any.
func (s *Service) Run(ctx context.Context, operation string, ids []string, fn Func) []Result {
	ctx, span := tracing.StartSpan(ctx, "bulk."+operation, "INTERNAL")
	span.WithAttributes(map[string]string{"bulk.size": fmt.Sprint(len(ids))})
	results := make([]Result, len(ids))
	progress.UpdateCtx(ctx, progress.Delta{Total: len(ids)})

	workers := min(s.config.Workers, len(ids))
	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = s.process(ctx, j.id, fn)
			}
		}()
	}
	for i, id := range ids {
		jobs <- job{index: i, id: id}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	s.logger.WithFields(logrus.Fields{"operation": operation, "items": len(ids), "failed": failed}).Info("bulk operation finished")
	var spanErr error
	if failed > 0 {
		spanErr = fmt.Errorf("%d of %d items failed", failed, len(ids))
	}
	tracing.EndSpan(span, spanErr)
	return results
}

func (s *Service) process(ctx context.Context, id string, fn Func) (result Result) {
	result.ID = id
	progress.UpdateCtx(ctx, progress.Delta{Running: 1})
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("item %s: panic: %v", id, r)
		}
		if result.Err != nil {
			result.OK = false
			result.Error = result.Err.Error()
			progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1})
			s.logger.WithError(result.Err).WithField("item", id).Debug("bulk item failed")
			return
		}
		result.OK = true
		progress.UpdateCtx(ctx, progress.Delta{Running: -1, Succeeded: 1})
	}()
	switch {
	case id == "":
		result.Err = validation.Failf("item id is required")
	case ctx.Err() != nil:
		result.Err = ctx.Err()
	default:
		result.Err = fn(ctx, id)
	}
	return result
}

// Count returns how many results succeeded and failed.
func Count(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.OK {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
