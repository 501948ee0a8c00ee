// Package logger builds the named logrus loggers used across the engine.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Well-known logger names.
const (
	App       = "app"
	Audit     = "audit"
	Scheduler = "scheduler"
)

// Config controls level, format and destination of every named logger.
type Config struct {
	Level      string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format     string `json:"format" yaml:"format" env:"LOG_FORMAT"` // json | text
	File       string `json:"file,omitempty" yaml:"file,omitempty" env:"LOG_FILE"`
	MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty" env:"LOG_MAX_BACKUPS"`
}

// DefaultConfig logs text at info level to stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 5}
}

var (
	mu      sync.Mutex
	config  = DefaultConfig()
	loggers = map[string]*logrus.Logger{}
)

// Init replaces the configuration; loggers created earlier are reconfigured.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
	for _, l := range loggers {
		configure(l)
	}
}

// Get returns the logger registered under name, creating it on first use.
func Get(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := logrus.New()
	configure(l)
	loggers[name] = l
	return l
}

// Entry returns a field-scoped entry of the named logger.
func Entry(name string) *logrus.Entry {
	return Get(name).WithField("logger", name)
}

// Discard returns an entry that drops everything; handy in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func configure(l *logrus.Logger) {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	if config.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if config.File == "" {
		l.SetOutput(os.Stdout)
		return
	}
	l.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		Compress:   true,
	}))
}
