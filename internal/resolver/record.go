package resolver

import (
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/stylebuilder/internal/templating"
)

// NotFoundMarker is appended to the displayed markup of a section whose
// template file could not be located.
const NotFoundMarker = " NOT FOUND!"

// Record is the per-section template bookkeeping produced by one build.
type Record struct {
	Reference string

	// Name is the main template identity; ExampleName is set only when a
	// distinct example template was located and compiled.
	Name        string
	ExampleName string

	Template        *templating.Template
	ExampleTemplate *templating.Template

	// Context and ExampleContext are read-only sample data. Renders clone them.
	Context        map[string]any
	ExampleContext map[string]any

	// File and ExampleFile are the located paths, empty for inline markup.
	File        string
	ExampleFile string

	// Markup is the markup string shown on pages, including NotFoundMarker
	// when the template file was missing.
	Markup   string
	NotFound bool
}

// HasExample reports whether the record carries a distinct example template.
func (r *Record) HasExample() bool {
	return r != nil && r.ExampleTemplate != nil
}

// Example returns the template and sample context used for the example view
// and modifier renderings, falling back to the main template.
func (r *Record) Example() (*templating.Template, map[string]any) {
	if r.HasExample() {
		return r.ExampleTemplate, r.ExampleContext
	}
	return r.Template, r.Context
}

// Records is the per-build registry of template records keyed by section
// reference. It is safe for concurrent use.
type Records struct {
	mu   sync.RWMutex
	byID map[string]*Record
}

// NewRecords returns an empty registry.
func NewRecords() *Records {
	return &Records{byID: make(map[string]*Record)}
}

// Put stores rec under its reference.
func (rs *Records) Put(rec *Record) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.byID[rec.Reference] = rec
}

// Get returns the record for a section reference.
func (rs *Records) Get(ref string) (*Record, bool) {
	if rs == nil {
		return nil, false
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	rec, ok := rs.byID[ref]
	return rec, ok
}

// Len returns the number of records.
func (rs *Records) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.byID)
}

// NotFound returns the references whose template file was missing, sorted.
func (rs *Records) NotFound() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	var out []string
	for ref, rec := range rs.byID {
		if rec.NotFound {
			out = append(out, ref)
		}
	}
	sort.Strings(out)
	return out
}

// IsFileReference reports whether markup names a template file rather than
// carrying inline template text: a single line ending in ext.
func IsFileReference(markup, ext string) bool {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" || ext == "" {
		return false
	}
	if strings.ContainsAny(trimmed, "\r\n") {
		return false
	}
	return len(trimmed) > len(ext) && strings.HasSuffix(trimmed, ext)
}
