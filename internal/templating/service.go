// Package templating wraps the pongo2 engine behind an owned, resettable
// registry of compiled templates.
//
// Each build calls Reset before compiling anything, so a long-lived process
// (the watch loop) never sees handles compiled by an earlier build. Within a
// build every identity is compiled at most once; concurrent callers asking
// for the same identity share one compile result.
package templating

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

// Source is what a template is compiled from: inline text or a file path.
type Source struct {
	Inline string
	Path   string
}

// InlineSource returns a Source for template text.
func InlineSource(text string) Source { return Source{Inline: text} }

// FileSource returns a Source for a template file.
func FileSource(path string) Source { return Source{Path: path} }

// IsFile reports whether the source refers to a file.
func (s Source) IsFile() bool { return s.Path != "" }

// Option configures a Service.
type Option func(*Service)

// WithGlobals seeds values visible to every template rendered by the service.
func WithGlobals(globals map[string]any) Option {
	return func(s *Service) {
		for k, v := range globals {
			s.globals[k] = v
		}
	}
}

// Service compiles and renders templates. The zero value is not usable; use New.
type Service struct {
	fs          afero.Fs
	searchPaths []string
	globals     pongo2.Context

	mu      sync.Mutex
	set     *pongo2.TemplateSet
	entries map[string]*entry
}

type entry struct {
	once sync.Once
	src  []byte
	tmpl *Template
	err  error
}

// New constructs a Service reading template files from fs.
func New(fs afero.Fs, opts ...Option) *Service {
	s := &Service{
		fs:      fs,
		globals: make(pongo2.Context),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.Reset()
	return s
}

// Reset drops every compiled identity. It must be called once at the start
// of each build.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := pongo2.NewSet("stylebuilder", &registryLoader{svc: s})
	set.Globals.Update(s.globals)
	s.set = set
	s.entries = make(map[string]*entry)
}

// SetSearchPaths replaces the directories used to resolve includes that
// name no registered identity.
func (s *Service) SetSearchPaths(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchPaths = append([]string(nil), paths...)
}

func (s *Service) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchPaths
}

// Len returns the number of registered identities.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Compile compiles src under name. If name is already registered in this
// build, the earlier result is returned and src is ignored.
func (s *Service) Compile(name string, src Source) (*Template, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		e = &entry{}
		s.entries[name] = e
	}
	set := s.set
	s.mu.Unlock()

	e.once.Do(func() {
		e.tmpl, e.err = s.compile(set, e, name, src)
	})
	return e.tmpl, e.err
}

func (s *Service) compile(set *pongo2.TemplateSet, e *entry, name string, src Source) (*Template, error) {
	body := []byte(src.Inline)
	if src.IsFile() {
		data, err := afero.ReadFile(s.fs, src.Path)
		if err != nil {
			return nil, errors.TemplateError("failed to read template").
				WithCause(err).
				WithContext("template", name).
				WithContext("path", src.Path).
				Build()
		}
		body = data
	}

	s.mu.Lock()
	e.src = body
	s.mu.Unlock()

	tpl, err := set.FromBytes(body)
	if err != nil {
		b := errors.TemplateError("failed to compile template").
			WithCause(err).
			WithContext("template", name)
		if src.IsFile() {
			b = b.WithContext("path", src.Path)
		}
		return nil, b.Build()
	}
	return &Template{name: name, path: src.Path, tpl: tpl}, nil
}

// source returns the raw text of a registered identity.
func (s *Service) source(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok || e.src == nil {
		return nil, false
	}
	return e.src, true
}

// Template is a compiled, reusable template handle.
type Template struct {
	name string
	path string
	tpl  *pongo2.Template
}

// Name is the identity the template was compiled under.
func (t *Template) Name() string { return t.name }

// Path is the file the template was read from, empty for inline templates.
func (t *Template) Path() string { return t.path }

// Render executes the template against data. The caller owns data; the
// engine does not retain it.
func (t *Template) Render(data map[string]any) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.InternalError("render of nil template").Build()
	}
	var buf bytes.Buffer
	if err := t.tpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", errors.RenderError("failed to render template").
			WithCause(err).
			WithContext("template", t.name).
			Build()
	}
	return buf.String(), nil
}

// registryLoader resolves {% include %} names: registered identities first,
// then absolute paths, then the configured search paths in order.
type registryLoader struct {
	svc *Service
}

func (l *registryLoader) Abs(_ string, name string) string {
	return name
}

func (l *registryLoader) Get(path string) (io.Reader, error) {
	if src, ok := l.svc.source(path); ok {
		return bytes.NewReader(src), nil
	}
	if filepath.IsAbs(path) {
		data, err := afero.ReadFile(l.svc.fs, path)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	for _, dir := range l.svc.paths() {
		data, err := afero.ReadFile(l.svc.fs, filepath.Join(dir, path))
		if err == nil {
			return bytes.NewReader(data), nil
		}
	}
	return nil, fmt.Errorf("template %q not found", path)
}
