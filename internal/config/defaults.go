package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPlaceholder       = "[modifier class]"
	DefaultTemplateExtension = ".tmpl"
	DefaultExamplePrefix     = "kss-example-"
	DefaultNavDepth          = 3
	DefaultDebounce          = 300 * time.Millisecond
	DefaultDestination       = "styleguide"
	DefaultBuilder           = "builder"
	DefaultHomepage          = "homepage.md"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&BuildDefaultApplier{},
			&LogDefaultApplier{},
			&WatchDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// BuildDefaultApplier handles builder and rendering defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination
	}
	if cfg.Builder == "" {
		cfg.Builder = DefaultBuilder
	}
	if cfg.Homepage == "" {
		cfg.Homepage = DefaultHomepage
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if cfg.TemplateExtension == "" {
		cfg.TemplateExtension = DefaultTemplateExtension
	}
	if !strings.HasPrefix(cfg.TemplateExtension, ".") {
		cfg.TemplateExtension = "." + cfg.TemplateExtension
	}
	if cfg.ExamplePrefix == "" {
		cfg.ExamplePrefix = DefaultExamplePrefix
	}
	if cfg.NavDepth <= 0 {
		cfg.NavDepth = DefaultNavDepth
	}
	return nil
}

// LogDefaultApplier handles logging defaults.
type LogDefaultApplier struct{}

func (l *LogDefaultApplier) Domain() string { return "log" }

func (l *LogDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return nil
}

// WatchDefaultApplier handles watch loop defaults.
type WatchDefaultApplier struct{}

func (w *WatchDefaultApplier) Domain() string { return "watch" }

func (w *WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Watch.Interval < 0 {
		cfg.Watch.Interval = 0
	}
	return nil
}
