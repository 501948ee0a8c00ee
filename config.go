package contentflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/viant/afs"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/policy"
	"github.com/viant/contentflow/service/bulk"
	"github.com/viant/contentflow/service/link"
	"github.com/viant/contentflow/service/messaging/memory"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFS     = "fs"
	StoreMongo  = "mongo"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from YAML and overridden from environment variables.
type Config struct {
	Links     link.Config     `json:"links" yaml:"links"`
	Reminders policy.Reminder `json:"reminders" yaml:"reminders"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Bulk      bulk.Config     `json:"bulk" yaml:"bulk"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Log       logger.Config   `json:"log" yaml:"log"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Inbox     InboxConfig     `json:"inbox" yaml:"inbox"`
	Queue     QueueConfig     `json:"queue" yaml:"queue"`
	Workflows string          `json:"workflows,omitempty" yaml:"workflows,omitempty" env:"WORKFLOWS_URL"`
}

// SchedulerConfig controls the background reminder loop.
type SchedulerConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled" env:"SCHEDULER_ENABLED"`
	Interval time.Duration `json:"interval" yaml:"interval" env:"SCHEDULER_INTERVAL"`
}

// StoreConfig selects the item repository.
type StoreConfig struct {
	Kind       string `json:"kind" yaml:"kind" env:"STORE_KIND"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty" env:"STORE_URL"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty" env:"STORE_DATABASE"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty" env:"STORE_COLLECTION"`
}

// HTTPConfig configures the HTTP adapter.
type HTTPConfig struct {
	Address      string        `json:"address" yaml:"address" env:"HTTP_ADDRESS"`
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout" env:"HTTP_WRITE_TIMEOUT"`
}

// TracingConfig enables OpenTelemetry spans.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" env:"TRACING_ENABLED"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty" env:"TRACING_OUTPUT"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"TRACING_SERVICE_NAME"`
}

// InboxConfig bounds the per-user notification inbox.
type InboxConfig struct {
	Limit int `json:"limit" yaml:"limit" env:"INBOX_LIMIT"`
}

// QueueConfig enables the notification queue for an external delivery
// worker. Without a consumer the queue fills up, so it is off by default.
type QueueConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled" env:"QUEUE_ENABLED"`
	Memory  memory.Config `json:"memory" yaml:"memory"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Links:     link.DefaultConfig(),
		Reminders: policy.DefaultReminder(),
		Scheduler: SchedulerConfig{Enabled: true, Interval: 15 * time.Minute},
		Bulk:      bulk.DefaultConfig(),
		Store:     StoreConfig{Kind: StoreMemory, Database: "contentflow", Collection: "content"},
		Log:       logger.DefaultConfig(),
		HTTP:      HTTPConfig{Address: ":8080", ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second},
		Tracing:   TracingConfig{ServiceName: "contentflow"},
		Inbox:     InboxConfig{Limit: 500},
		Queue:     QueueConfig{Memory: memory.DefaultConfig()},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Links.ExpirationDays <= 0 {
		errs = append(errs, fmt.Errorf("links.expirationDays must be > 0"))
	}
	if c.Links.BaseURL == "" {
		errs = append(errs, fmt.Errorf("links.baseURL is required"))
	}
	if err := c.Reminders.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.interval must be > 0"))
	}
	if c.Bulk.Workers <= 0 {
		errs = append(errs, fmt.Errorf("bulk.workers must be > 0"))
	}
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFS:
		if c.Store.URL == "" {
			errs = append(errs, fmt.Errorf("store.url is required for the fs store"))
		}
	case StoreMongo:
		if c.Store.URL == "" || c.Store.Database == "" || c.Store.Collection == "" {
			errs = append(errs, fmt.Errorf("store.url, store.database and store.collection are required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.kind %q", c.Store.Kind))
	}
	if c.Inbox.Limit < 0 {
		errs = append(errs, fmt.Errorf("inbox.limit must be >= 0"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config from URL over the defaults, applies
// .env files and environment overrides, and validates the result. An
// empty URL skips the file.
func LoadConfig(ctx context.Context, URL string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()
	if URL != "" {
		data, err := afs.New().DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
		}
	}
	if err := cfg.ApplyEnv(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads the given .env files, when present, into the process
// environment without overriding existing variables, then overrides
// fields tagged with env.
func (c *Config) ApplyEnv(envFiles ...string) error {
	var existing []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("failed to load env files: %w", err)
		}
	}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
