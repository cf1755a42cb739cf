package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
)

// BuildService is the canonical interface for executing style guide builds.
type BuildService interface {
	// Run executes a complete build: reset → load → templates → resolve →
	// assemble → render and write.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Destination overrides Config.Destination when set.
	Destination string

	// StyleGuide, when set, is used instead of loading Config.StyleGuide.
	StyleGuide *styleguide.StyleGuide
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// BuildID correlates log records of this build.
	BuildID string

	// OutputPath is the destination directory written to.
	OutputPath string

	// Sections is the number of sections in the style guide.
	Sections int

	// Pages lists the written page files in assembly order.
	Pages []string

	// TemplatesMissing lists section references whose template file could
	// not be located in any source root.
	TemplatesMissing []string

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
