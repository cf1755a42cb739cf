// Package pages groups style guide sections into output pages.
package pages

import (
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
)

// Extension is appended to every page file name.
const Extension = ".html"

// Kind discriminates the three page templates.
type Kind string

const (
	KindIndex   Kind = "index"
	KindSection Kind = "section"
	KindItem    Kind = "item"
)

// Kinds lists page kinds from broadest to narrowest.
var Kinds = []Kind{KindIndex, KindSection, KindItem}

// Page is one output document.
type Page struct {
	Kind Kind
	// Root is the root reference for section pages and the full reference
	// for item pages; empty for the homepage.
	Root     string
	Sections []*styleguide.Section
	FileName string
}

// IsHomepage reports whether p is the index page.
func (p *Page) IsHomepage() bool { return p.Kind == KindIndex }

// FileName returns the output file name for a page of kind rooted at ref.
func FileName(kind Kind, ref string) string {
	if kind == KindIndex || ref == "" {
		return string(kind) + Extension
	}
	return string(kind) + "-" + styleguide.ReferenceURI(ref) + Extension
}

// Assemble returns the homepage, one section page per root reference in
// first-seen order and, when withItems is set, one item page per section.
func Assemble(guide *styleguide.StyleGuide, withItems bool) []*Page {
	out := []*Page{{
		Kind:     KindIndex,
		FileName: FileName(KindIndex, ""),
	}}

	for _, root := range guide.Roots() {
		out = append(out, &Page{
			Kind:     KindSection,
			Root:     root,
			Sections: guide.SectionsUnder(root),
			FileName: FileName(KindSection, root),
		})
	}

	if withItems {
		for _, s := range guide.Sections() {
			out = append(out, &Page{
				Kind:     KindItem,
				Root:     s.Reference,
				Sections: []*styleguide.Section{s},
				FileName: FileName(KindItem, s.Reference),
			})
		}
	}
	return out
}
