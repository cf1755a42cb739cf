// Package pagewriter applies page templates to rendered sections and writes
// the resulting HTML documents.
package pagewriter

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/stylebuilder/internal/locator"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/markdown"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
	"git.home.luguber.info/inful/stylebuilder/internal/pages"
	"git.home.luguber.info/inful/stylebuilder/internal/render"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
	"git.home.luguber.info/inful/stylebuilder/internal/templating"
)

// Options configures a Writer.
type Options struct {
	// BuilderDir holds the page templates: index, section and item.
	BuilderDir        string
	Destination       string
	TemplateExtension string
	// Homepage is the Markdown file located across the source roots and
	// shown on the index page.
	Homepage string
	NavDepth int
	Title    string
	CSS      []string
	JS       []string
}

// Writer renders and writes pages for one build.
type Writer struct {
	fs        afero.Fs
	templates *templating.Service
	locator   *locator.Locator
	markdown  markdown.Converter
	opts      Options

	pageTemplates map[pages.Kind]*templating.Template

	homepageOnce sync.Once
	homepageHTML string
}

// New returns a Writer. Call Load before writing pages.
func New(fs afero.Fs, templates *templating.Service, loc *locator.Locator, md markdown.Converter, opts Options) *Writer {
	if opts.TemplateExtension == "" {
		opts.TemplateExtension = ".tmpl"
	}
	if opts.NavDepth <= 0 {
		opts.NavDepth = DefaultNavDepth
	}
	if md == nil {
		md = markdown.New()
	}
	return &Writer{
		fs:            fs,
		templates:     templates,
		locator:       loc,
		markdown:      md,
		opts:          opts,
		pageTemplates: make(map[pages.Kind]*templating.Template),
	}
}

// Load compiles the page templates found in the builder directory. The
// index template is required; section and item are optional.
func (w *Writer) Load(ctx context.Context) error {
	for _, kind := range pages.Kinds {
		path := filepath.Join(w.opts.BuilderDir, string(kind)+w.opts.TemplateExtension)
		exists, err := afero.Exists(w.fs, path)
		if err != nil || !exists {
			if kind == pages.KindIndex {
				return errors.ConfigError("builder directory has no index template").
					WithContext("path", path).
					Build()
			}
			observability.DebugContext(ctx, "Page template not provided",
				logfields.PageKind(string(kind)),
				logfields.Path(path))
			continue
		}
		tpl, err := w.templates.Compile(path, templating.FileSource(path))
		if err != nil {
			return err
		}
		w.pageTemplates[kind] = tpl
	}
	return nil
}

// HasTemplate reports whether a dedicated template exists for kind.
func (w *Writer) HasTemplate(kind pages.Kind) bool {
	_, ok := w.pageTemplates[kind]
	return ok
}

// TemplateFor returns the template for kind, borrowing the next broader
// page template when the dedicated one is missing: item, section, index.
func (w *Writer) TemplateFor(kind pages.Kind) (*templating.Template, pages.Kind) {
	chain := []pages.Kind{pages.KindIndex}
	switch kind {
	case pages.KindItem:
		chain = []pages.Kind{pages.KindItem, pages.KindSection, pages.KindIndex}
	case pages.KindSection:
		chain = []pages.Kind{pages.KindSection, pages.KindIndex}
	}
	for _, k := range chain {
		if tpl, ok := w.pageTemplates[k]; ok {
			return tpl, k
		}
	}
	return nil, ""
}

// Context assembles the data handed to the page template.
func (w *Writer) Context(ctx context.Context, guide *styleguide.StyleGuide, page *pages.Page, sections []render.RenderedSection) map[string]any {
	title := w.opts.Title
	if title == "" {
		title = guide.Title()
	}

	sectionData := make([]map[string]any, 0, len(sections))
	for _, rs := range sections {
		sectionData = append(sectionData, sectionContext(rs, w.description(ctx, rs.Section)))
	}

	data := map[string]any{
		"styleGuide": styleGuideContext(guide),
		"sections":   sectionData,
		"template":   templateContext(page.Kind),
		"menu":       menuContext(BuildMenu(guide, page.Root, w.opts.NavDepth)),
		"homepage":   "",
		"options": map[string]any{
			"title": title,
			"css":   append([]string(nil), w.opts.CSS...),
			"js":    append([]string(nil), w.opts.JS...),
		},
	}
	if page.IsHomepage() {
		data["homepage"] = w.homepage(ctx)
	}
	return data
}

// Write renders page and writes it to the destination directory. It
// returns the written path.
func (w *Writer) Write(ctx context.Context, guide *styleguide.StyleGuide, page *pages.Page, sections []render.RenderedSection) (string, error) {
	tpl, used := w.TemplateFor(page.Kind)
	if tpl == nil {
		return "", errors.ConfigError("no page template loaded").
			WithContext("page", page.FileName).
			Build()
	}
	if used != page.Kind {
		observability.DebugContext(ctx, "Page template borrowed",
			logfields.Page(page.FileName),
			logfields.PageKind(string(used)))
	}

	body, err := tpl.Render(w.Context(ctx, guide, page, sections))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return "", ce.WithContext("page", page.FileName)
		}
		return "", err
	}

	if err := w.fs.MkdirAll(w.opts.Destination, 0o750); err != nil {
		return "", errors.FileSystemError("failed to create destination").
			WithCause(err).
			WithContext("path", w.opts.Destination).
			Build()
	}
	target := filepath.Join(w.opts.Destination, page.FileName)
	if err := afero.WriteFile(w.fs, target, []byte(body), 0o644); err != nil {
		return "", errors.FileSystemError("failed to write page").
			WithCause(err).
			WithContext("path", target).
			Build()
	}
	observability.DebugContext(ctx, "Wrote page",
		logfields.Page(page.FileName),
		logfields.PageKind(string(page.Kind)),
		logfields.Path(target))
	return target, nil
}

// homepage converts the homepage Markdown once per Writer. A missing or
// unreadable file yields empty prose and a warning.
func (w *Writer) homepage(ctx context.Context) string {
	w.homepageOnce.Do(func() {
		if w.opts.Homepage == "" {
			return
		}
		path := w.opts.Homepage
		if !filepath.IsAbs(path) && w.locator != nil {
			found, ok := w.locator.Find(ctx, filepath.Base(path))
			if !ok {
				observability.WarnContext(ctx, "Homepage file not found in any source root",
					logfields.Path(w.opts.Homepage))
				return
			}
			path = found
		}
		src, err := afero.ReadFile(w.fs, path)
		if err != nil {
			observability.WarnContext(ctx, "Homepage file unreadable",
				logfields.Path(path),
				logfields.Error(err))
			return
		}
		html, err := w.markdown.Convert(src)
		if err != nil {
			observability.WarnContext(ctx, "Homepage conversion failed",
				logfields.Path(path),
				logfields.Error(err))
			return
		}
		w.homepageHTML = html
	})
	return w.homepageHTML
}

func (w *Writer) description(ctx context.Context, s *styleguide.Section) string {
	if strings.TrimSpace(s.Description) == "" {
		return ""
	}
	html, err := w.markdown.Convert([]byte(s.Description))
	if err != nil {
		observability.WarnContext(ctx, "Section description conversion failed",
			logfields.Section(s.Reference),
			logfields.Error(err))
		return s.Description
	}
	return html
}
