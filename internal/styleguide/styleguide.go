// Package styleguide holds the read-only style guide model consumed by the
// builder: an ordered list of sections, each with markup, sample data and
// modifiers.
package styleguide

import (
	"regexp"
	"strings"
)

var (
	referenceSplitter = regexp.MustCompile(`\.| - `)
	uriUnsafe         = regexp.MustCompile(`[^\w-]+`)
	numericReference  = regexp.MustCompile(`^[0-9.]+$`)
)

// Modifier is a named style variant of a section, e.g. ".disabled" or ":hover".
type Modifier struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ClassName converts the modifier name into the class string injected into
// sample data: ".primary.large" becomes "primary large" and ":hover" becomes
// "pseudo-class-hover".
func (m Modifier) ClassName() string {
	name := strings.ReplaceAll(m.Name, ".", " ")
	name = strings.ReplaceAll(name, ":", " pseudo-class-")
	return strings.Join(strings.Fields(name), " ")
}

// Section is one documented unit of markup.
type Section struct {
	Reference   string `yaml:"reference" json:"reference"`
	Header      string `yaml:"header,omitempty" json:"header,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Markup is either inline template text or a single-line file name.
	Markup    string         `yaml:"markup,omitempty" json:"markup,omitempty"`
	Data      map[string]any `yaml:"data,omitempty" json:"data,omitempty"`
	Modifiers []Modifier     `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// ReferenceParts splits the reference on "." and " - ".
func (s *Section) ReferenceParts() []string {
	return SplitReference(s.Reference)
}

// RootReference is the first segment of the reference.
func (s *Section) RootReference() string {
	return RootOf(s.Reference)
}

// Depth is the number of reference segments.
func (s *Section) Depth() int {
	return len(s.ReferenceParts())
}

// ReferenceURI is the reference in a form safe for file names and URLs.
func (s *Section) ReferenceURI() string {
	return ReferenceURI(s.Reference)
}

// IsUnder reports whether the section belongs to the page of root: its
// reference equals root or continues it after a path delimiter.
func (s *Section) IsUnder(root string) bool {
	if s.Reference == root {
		return true
	}
	return strings.HasPrefix(s.Reference, root+".") || strings.HasPrefix(s.Reference, root+" - ")
}

// HasMarkup reports whether there is anything to render.
func (s *Section) HasMarkup() bool {
	return strings.TrimSpace(s.Markup) != ""
}

// SplitReference splits a reference on its path delimiters.
func SplitReference(ref string) []string {
	if ref == "" {
		return nil
	}
	return referenceSplitter.Split(ref, -1)
}

// RootOf returns the first segment of a reference.
func RootOf(ref string) string {
	parts := SplitReference(ref)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ReferenceURI encodes a reference for use in file names.
func ReferenceURI(ref string) string {
	encoded := strings.ReplaceAll(ref, " - ", "-")
	encoded = uriUnsafe.ReplaceAllString(encoded, "-")
	return strings.ToLower(encoded)
}

// StyleGuide is the immutable input model. Callers must treat returned
// sections as read-only.
type StyleGuide struct {
	title    string
	files    []string
	sections []*Section
}

// New builds a StyleGuide from sections, copying the inputs.
func New(title string, files []string, sections []Section) *StyleGuide {
	sg := &StyleGuide{
		title:    title,
		files:    append([]string(nil), files...),
		sections: make([]*Section, 0, len(sections)),
	}
	for i := range sections {
		sec := sections[i]
		sec.Reference = normalizeReference(sec.Reference)
		sec.Modifiers = append([]Modifier(nil), sec.Modifiers...)
		sg.sections = append(sg.sections, &sec)
	}
	return sg
}

// Title returns the style guide title from the source document.
func (sg *StyleGuide) Title() string { return sg.title }

// Files lists the documentation source files the model was built from.
func (sg *StyleGuide) Files() []string { return append([]string(nil), sg.files...) }

// Sections returns every section in document order.
func (sg *StyleGuide) Sections() []*Section {
	return append([]*Section(nil), sg.sections...)
}

// Section looks up a section by reference.
func (sg *StyleGuide) Section(ref string) (*Section, bool) {
	for _, s := range sg.sections {
		if s.Reference == ref {
			return s, true
		}
	}
	return nil, false
}

// Roots returns the distinct root references in first-seen order.
func (sg *StyleGuide) Roots() []string {
	seen := make(map[string]struct{})
	var roots []string
	for _, s := range sg.sections {
		root := s.RootReference()
		if root == "" {
			continue
		}
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}

// SectionsUnder returns the sections that belong to root's page.
func (sg *StyleGuide) SectionsUnder(root string) []*Section {
	var out []*Section
	for _, s := range sg.sections {
		if s.IsUnder(root) {
			out = append(out, s)
		}
	}
	return out
}

// HasNumericReferences reports whether every reference is purely numeric.
func (sg *StyleGuide) HasNumericReferences() bool {
	if len(sg.sections) == 0 {
		return false
	}
	for _, s := range sg.sections {
		if !numericReference.MatchString(s.Reference) {
			return false
		}
	}
	return true
}

func normalizeReference(ref string) string {
	return strings.TrimRight(strings.TrimSpace(ref), ".")
}
