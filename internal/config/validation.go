package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

// minInterval guards against rebuild loops from tiny periodic intervals.
const minInterval = time.Second

// Validate checks a configuration after defaults were applied.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.StyleGuide) == "" {
		return errors.ValidationError("styleguide document is required").Build()
	}
	if len(cfg.Source) == 0 {
		return errors.ValidationError("at least one source directory is required").Build()
	}
	for i, src := range cfg.Source {
		if strings.TrimSpace(src) == "" {
			return errors.ValidationError("source directory must not be empty").
				WithContext("index", i).
				Build()
		}
	}
	if strings.TrimSpace(cfg.Destination) == "" {
		return errors.ValidationError("destination is required").Build()
	}
	if strings.TrimSpace(cfg.Builder) == "" {
		return errors.ValidationError("builder directory is required").Build()
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return errors.ValidationError("log format must be text or json").
			WithContext("format", cfg.Log.Format).
			Build()
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.ValidationError("unknown log level").
			WithContext("level", cfg.Log.Level).
			Build()
	}
	if cfg.Watch.Interval > 0 && cfg.Watch.Interval < minInterval {
		return errors.ValidationError("watch interval must be at least 1s").
			WithContext("interval", cfg.Watch.Interval.String()).
			Build()
	}
	return nil
}
