package build

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/afero"

	sberrors "git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/stylebuilder/internal/locator"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/markdown"
	"git.home.luguber.info/inful/stylebuilder/internal/metrics"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
	"git.home.luguber.info/inful/stylebuilder/internal/pages"
	"git.home.luguber.info/inful/stylebuilder/internal/pagewriter"
	"git.home.luguber.info/inful/stylebuilder/internal/render"
	"git.home.luguber.info/inful/stylebuilder/internal/resolver"
	"git.home.luguber.info/inful/stylebuilder/internal/samples"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
	"git.home.luguber.info/inful/stylebuilder/internal/templating"
	"git.home.luguber.info/inful/stylebuilder/internal/version"
)

// Stage names used for logging and metrics.
const (
	StageReset     = "reset"
	StageLoad      = "load"
	StageTemplates = "templates"
	StageResolve   = "resolve"
	StageAssemble  = "assemble"
	StageWrite     = "write"
)

// StyleGuideLoader provides the style guide model for a build.
type StyleGuideLoader func(fs afero.Fs, path string) (*styleguide.StyleGuide, error)

// DefaultBuildService is the standard implementation of BuildService. It
// owns one templating service for its lifetime and resets it at the start
// of every build, so builds must not overlap; Run serializes them.
type DefaultBuildService struct {
	fs        afero.Fs
	templates *templating.Service
	markdown  markdown.Converter
	loader    StyleGuideLoader
	recorder  metrics.Recorder

	mu sync.Mutex
}

// NewBuildService creates a new DefaultBuildService reading and writing fs.
func NewBuildService(fs afero.Fs) *DefaultBuildService {
	return &DefaultBuildService{
		fs:        fs,
		templates: templating.New(fs, templating.WithGlobals(map[string]any{"generator": version.String()})),
		markdown:  markdown.New(),
		loader:    styleguide.Load,
		recorder:  metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithStyleGuideLoader replaces the style guide provider.
func (s *DefaultBuildService) WithStyleGuideLoader(l StyleGuideLoader) *DefaultBuildService {
	if l != nil {
		s.loader = l
	}
	return s
}

// WithMarkdown replaces the Markdown converter used for homepage prose.
func (s *DefaultBuildService) WithMarkdown(md markdown.Converter) *DefaultBuildService {
	if md != nil {
		s.markdown = md
	}
	return s
}

// Templates exposes the owned templating service.
func (s *DefaultBuildService) Templates() *templating.Service {
	return s.templates
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := time.Now()
	result := &BuildResult{
		StartTime: startTime,
		BuildID:   observability.NewBuildID(),
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	if req.Config == nil {
		return s.fail(ctx, result, "", sberrors.ConfigError("config required").Build())
	}
	cfg := req.Config
	result.OutputPath = cfg.Destination
	if req.Destination != "" {
		result.OutputPath = req.Destination
	}

	observability.InfoContext(ctx, "Starting build",
		logfields.Path(result.OutputPath),
		logfields.Count(len(cfg.Source)))

	// Stage 1: reset the template registry
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, StageReset)
	s.templates.Reset()
	s.templates.SetSearchPaths(cfg.Source...)
	s.stageDone(StageReset, stageStart)

	// Stage 2: load the style guide
	if err := ctx.Err(); err != nil {
		return s.cancel(ctx, result, StageLoad, err)
	}
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageLoad)
	guide := req.StyleGuide
	if guide == nil {
		var err error
		guide, err = s.loader(s.fs, cfg.StyleGuide)
		if err != nil {
			return s.fail(ctx, result, StageLoad, err)
		}
	}
	result.Sections = len(guide.Sections())
	observability.InfoContext(ctx, "Loaded style guide", logfields.Count(result.Sections))
	s.stageDone(StageLoad, stageStart)

	// Stage 3: page templates
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageTemplates)
	loc := locator.New(s.fs, cfg.Source)
	writer := pagewriter.New(s.fs, s.templates, loc, s.markdown, pagewriter.Options{
		BuilderDir:        cfg.Builder,
		Destination:       result.OutputPath,
		TemplateExtension: cfg.TemplateExtension,
		Homepage:          cfg.Homepage,
		NavDepth:          cfg.NavDepth,
		Title:             cfg.Title,
		CSS:               cfg.CSS,
		JS:                cfg.JS,
	})
	if err := writer.Load(ctx); err != nil {
		return s.fail(ctx, result, StageTemplates, err)
	}
	s.stageDone(StageTemplates, stageStart)

	// Stage 4: resolve section templates (barrier)
	if err := ctx.Err(); err != nil {
		return s.cancel(ctx, result, StageResolve, err)
	}
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageResolve)
	res := resolver.New(s.templates, loc, samples.NewLoader(s.fs),
		resolver.WithTemplateExtension(cfg.TemplateExtension),
		resolver.WithExamplePrefix(cfg.ExamplePrefix),
		resolver.WithRecorder(s.recorder))
	records, err := res.ResolveAll(ctx, guide)
	if err != nil {
		return s.fail(ctx, result, StageResolve, err)
	}
	result.TemplatesMissing = records.NotFound()
	observability.InfoContext(ctx, "Resolved section templates",
		logfields.Count(s.templates.Len()),
		slog.Int("missing", len(result.TemplatesMissing)))
	if len(result.TemplatesMissing) > 0 {
		s.recorder.IncStageResult(StageResolve, metrics.ResultWarning)
	}
	s.stageDone(StageResolve, stageStart)

	// Stage 5: assemble pages
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageAssemble)
	assembled := pages.Assemble(guide, writer.HasTemplate(pages.KindItem))
	observability.InfoContext(ctx, "Assembled pages", logfields.Count(len(assembled)))
	s.stageDone(StageAssemble, stageStart)

	// Stage 6: render and write each page
	if err := ctx.Err(); err != nil {
		return s.cancel(ctx, result, StageWrite, err)
	}
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageWrite)
	written, err := s.writePages(ctx, guide, assembled, records, writer, render.New(cfg.Placeholder))
	if err != nil {
		return s.fail(ctx, result, StageWrite, err)
	}
	result.Pages = written
	s.stageDone(StageWrite, stageStart)

	result.Status = BuildStatusSuccess
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	s.recorder.ObserveBuildDuration(result.Duration)
	observability.InfoContext(ctx, "Build completed",
		logfields.Count(len(result.Pages)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

// writePages fans out one task per page. Each task renders that page's
// sections and then writes the page; tasks never wait on each other.
func (s *DefaultBuildService) writePages(ctx context.Context, guide *styleguide.StyleGuide, assembled []*pages.Page, records *resolver.Records, writer *pagewriter.Writer, renderer *render.Renderer) ([]string, error) {
	paths := make([]string, len(assembled))
	errs := make([]error, len(assembled))

	var wg sync.WaitGroup
	for i, page := range assembled {
		wg.Add(1)
		go func(i int, page *pages.Page) {
			defer wg.Done()
			pctx := observability.WithPage(ctx, page.FileName)

			rendered, err := renderer.RenderSections(pctx, page.Sections, records)
			if err != nil {
				errs[i] = err
				return
			}
			path, err := writer.Write(pctx, guide, page, rendered)
			if err != nil {
				errs[i] = err
				return
			}
			paths[i] = path
			s.recorder.IncPageWritten(string(page.Kind))
		}(i, page)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func (s *DefaultBuildService) stageDone(stage string, start time.Time) {
	s.recorder.ObserveStageDuration(stage, time.Since(start))
	s.recorder.IncStageResult(stage, metrics.ResultSuccess)
}

func (s *DefaultBuildService) fail(ctx context.Context, result *BuildResult, stage string, err error) (*BuildResult, error) {
	result.Status = BuildStatusFailed
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if stage != "" {
		s.recorder.IncStageResult(stage, metrics.ResultFatal)
	}
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	s.recorder.ObserveBuildDuration(result.Duration)
	observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	return result, err
}

func (s *DefaultBuildService) cancel(ctx context.Context, result *BuildResult, stage string, err error) (*BuildResult, error) {
	result.Status = BuildStatusCancelled
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
	observability.WarnContext(ctx, "Build cancelled", logfields.Stage(stage))
	return result, err
}

var _ BuildService = (*DefaultBuildService)(nil)
