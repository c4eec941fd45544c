// Package config loads runtime settings from the environment and view
// definitions from YAML files. The engine itself never parses files or
// environment variables; everything is handed to it as plain values.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/view"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageS3     = "s3"
)

// Settings is the process configuration, populated from VIEWDECK_*
// environment variables.
type Settings struct {
	// Addr is the HTTP listen address.
	Addr string `env:"VIEWDECK_ADDR" envDefault:":8080"`

	// AuthoringEnabled gates all mutating operations.
	AuthoringEnabled bool `env:"VIEWDECK_AUTHORING_ENABLED" envDefault:"false"`

	// MaxViews caps the number of stored views. 0 means no limit.
	MaxViews int `env:"VIEWDECK_MAX_VIEWS" envDefault:"0"`

	// MaxComponentsPerView caps a view's component tree. 0 means no
	// limit.
	MaxComponentsPerView int `env:"VIEWDECK_MAX_COMPONENTS_PER_VIEW" envDefault:"0"`

	// PushEnabled controls whether a push channel exists at all. When
	// false, mutations still persist and append to history but nothing
	// is broadcast, and client connections are refused.
	PushEnabled bool `env:"VIEWDECK_PUSH_ENABLED" envDefault:"true"`

	// MaxClients caps concurrent push clients. 0 means no limit.
	MaxClients int `env:"VIEWDECK_MAX_CLIENTS" envDefault:"0"`

	// ClientQueueSize is the per-client update queue depth.
	ClientQueueSize int `env:"VIEWDECK_CLIENT_QUEUE_SIZE" envDefault:"64"`

	// MaxHistoryEntries bounds the retained update history.
	MaxHistoryEntries int `env:"VIEWDECK_MAX_HISTORY_ENTRIES" envDefault:"100"`

	// DefaultAdapter is used when a render call names no adapter.
	DefaultAdapter string `env:"VIEWDECK_DEFAULT_ADAPTER" envDefault:"json"`

	// EnabledAdapters restricts registrable adapter types. Empty means
	// all.
	EnabledAdapters []string `env:"VIEWDECK_ENABLED_ADAPTERS" envSeparator:","`

	// StorageBackend selects the view store: memory or s3.
	StorageBackend string `env:"VIEWDECK_STORAGE_BACKEND" envDefault:"memory"`

	// S3Bucket and S3Prefix locate views for the s3 backend.
	S3Bucket string `env:"VIEWDECK_S3_BUCKET"`
	S3Prefix string `env:"VIEWDECK_S3_PREFIX" envDefault:"views/"`

	// ViewsDir holds view-definition YAML files seeded at startup.
	// Empty disables seeding.
	ViewsDir string `env:"VIEWDECK_VIEWS_DIR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"VIEWDECK_LOG_LEVEL" envDefault:"info"`

	// MetricsEnabled exposes the Prometheus endpoint and registers
	// collectors.
	MetricsEnabled bool `env:"VIEWDECK_METRICS_ENABLED" envDefault:"true"`
}

// Load reads settings from the environment.
func Load() (*Settings, error) {
	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings the process cannot start with.
func (s *Settings) Validate() error {
	switch s.StorageBackend {
	case StorageMemory:
	case StorageS3:
		if s.S3Bucket == "" {
			return fmt.Errorf("config: s3 backend requires VIEWDECK_S3_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", s.StorageBackend)
	}
	return nil
}

// ManagerConfig derives the view manager configuration.
func (s *Settings) ManagerConfig() *view.Config {
	return &view.Config{
		AuthoringEnabled:     s.AuthoringEnabled,
		MaxComponentsPerView: s.MaxComponentsPerView,
		MaxHistoryEntries:    s.MaxHistoryEntries,
		DefaultAdapter:       s.DefaultAdapter,
		EnabledAdapters:      s.EnabledAdapters,
	}
}

// PushConfig derives the push channel configuration.
func (s *Settings) PushConfig() *push.Config {
	return &push.Config{
		MaxClients: s.MaxClients,
		QueueSize:  s.ClientQueueSize,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (s *Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
