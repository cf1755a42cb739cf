// Package resolver turns every section of a style guide into a compiled
// template record, locating file templates and their example overrides
// across the configured source roots.
package resolver

import (
	"context"
	"strings"
	"sync"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/stylebuilder/internal/locator"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/metrics"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
	"git.home.luguber.info/inful/stylebuilder/internal/samples"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
	"git.home.luguber.info/inful/stylebuilder/internal/templating"
)

// DefaultTemplateExtension marks markup that names a template file.
const DefaultTemplateExtension = ".tmpl"

// Resolver resolves sections against one build's templating service.
type Resolver struct {
	templates *templating.Service
	locator   *locator.Locator
	samples   *samples.Loader
	recorder  metrics.Recorder

	extension     string
	examplePrefix string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTemplateExtension sets the extension that marks file references.
func WithTemplateExtension(ext string) Option {
	return func(r *Resolver) {
		if ext != "" {
			r.extension = ext
		}
	}
}

// WithExamplePrefix sets the prefix used to derive example file names.
func WithExamplePrefix(prefix string) Option {
	return func(r *Resolver) {
		if prefix != "" {
			r.examplePrefix = prefix
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New returns a Resolver.
func New(templates *templating.Service, loc *locator.Locator, loader *samples.Loader, opts ...Option) *Resolver {
	r := &Resolver{
		templates:     templates,
		locator:       loc,
		samples:       loader,
		recorder:      metrics.NoopRecorder{},
		extension:     DefaultTemplateExtension,
		examplePrefix: locator.DefaultExamplePrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolveAll resolves every section concurrently and returns once all of
// them have settled. A compile failure in one section does not stop the
// others; the first such failure is returned after the barrier.
func (r *Resolver) ResolveAll(ctx context.Context, guide *styleguide.StyleGuide) (*Records, error) {
	records := NewRecords()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, section := range guide.Sections() {
		if !section.HasMarkup() {
			continue
		}
		wg.Add(1)
		go func(s *styleguide.Section) {
			defer wg.Done()
			rec, err := r.Resolve(ctx, s)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			records.Put(rec)
		}(section)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

// Resolve builds the record for a single section.
func (r *Resolver) Resolve(ctx context.Context, s *styleguide.Section) (*Record, error) {
	if IsFileReference(s.Markup, r.extension) {
		return r.resolveFile(ctx, s)
	}
	return r.resolveInline(ctx, s)
}

func (r *Resolver) resolveInline(ctx context.Context, s *styleguide.Section) (*Record, error) {
	tpl, err := r.templates.Compile(s.Reference, templating.InlineSource(s.Markup))
	if err != nil {
		return nil, withSection(err, s.Reference)
	}
	data := inlineData(ctx, s)
	return &Record{
		Reference:      s.Reference,
		Name:           s.Reference,
		Template:       tpl,
		Context:        data,
		ExampleContext: data,
		Markup:         s.Markup,
	}, nil
}

func (r *Resolver) resolveFile(ctx context.Context, s *styleguide.Section) (*Record, error) {
	name := strings.TrimSpace(s.Markup)
	exampleName := locator.ExampleName(r.examplePrefix, name)
	found := r.locator.Locate(ctx, name, exampleName)

	rec := &Record{
		Reference: s.Reference,
		Name:      name,
		Markup:    s.Markup,
		File:      found.Main,
	}

	switch found.Outcome {
	case locator.FoundNeither:
		observability.WarnContext(ctx, "Template not found in any source root",
			logfields.Section(s.Reference),
			logfields.Template(name))
		r.recorder.IncTemplateMissing()

		// The markup text itself stands in so the page still renders.
		tpl, err := r.templates.Compile(s.Reference, templating.InlineSource(s.Markup))
		if err != nil {
			return nil, withSection(err, s.Reference)
		}
		rec.Name = s.Reference
		rec.Template = tpl
		rec.Context = map[string]any{}
		rec.ExampleContext = rec.Context
		rec.Markup = s.Markup + NotFoundMarker
		rec.NotFound = true
		return rec, nil

	case locator.FoundExampleOnly:
		observability.DebugContext(ctx, "Only example template found",
			logfields.Section(s.Reference),
			logfields.Example(exampleName))
		tpl, err := r.templates.Compile(name, templating.InlineSource(""))
		if err != nil {
			return nil, withSection(err, s.Reference)
		}
		rec.Template = tpl
		rec.Context = map[string]any{}

	default:
		tpl, err := r.templates.Compile(name, templating.FileSource(found.Main))
		if err != nil {
			return nil, withSection(err, s.Reference)
		}
		rec.Template = tpl
		rec.Context = r.fileData(ctx, s, found.Main)
	}

	if found.Example == "" {
		rec.ExampleContext = rec.Context
		return rec, nil
	}

	ex, err := r.templates.Compile(exampleName, templating.FileSource(found.Example))
	if err != nil {
		return nil, withSection(err, s.Reference)
	}
	rec.ExampleName = exampleName
	rec.ExampleTemplate = ex
	rec.ExampleFile = found.Example
	rec.ExampleContext = r.fileData(ctx, s, found.Example)
	return rec, nil
}

// fileData loads the sample file next to path, falling back to the data
// declared on the section when there is none.
func (r *Resolver) fileData(ctx context.Context, s *styleguide.Section, path string) map[string]any {
	data := r.samples.Load(ctx, path)
	if len(data) == 0 && len(s.Data) > 0 {
		return inlineData(ctx, s)
	}
	return data
}

func inlineData(ctx context.Context, s *styleguide.Section) map[string]any {
	if len(s.Data) == 0 {
		return map[string]any{}
	}
	return samples.Sanitize(ctx, samples.Clone(s.Data), logfields.Section(s.Reference))
}

func withSection(err error, ref string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("section", ref)
	}
	return err
}
