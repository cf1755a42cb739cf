// Package render produces the HTML fragments shown for each section: the
// canonical markup, the example view, and one rendering per modifier.
package render

import (
	"context"
	"strings"
	"sync"

	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
	"git.home.luguber.info/inful/stylebuilder/internal/resolver"
	"git.home.luguber.info/inful/stylebuilder/internal/samples"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
)

// ModifierClassKey is the sample data field receiving modifier classes.
const ModifierClassKey = "modifier_class"

// DefaultPlaceholder stands in for a modifier class in the canonical markup.
const DefaultPlaceholder = "[modifier class]"

// RenderedModifier is a modifier together with its rendered markup.
type RenderedModifier struct {
	Name        string
	Description string
	ClassName   string
	Markup      string
}

// RenderedSection is a section ready for a page template.
type RenderedSection struct {
	Section *styleguide.Section
	// Markup is the canonical rendering; Example may differ when the
	// section has a distinct example template.
	Markup  string
	Example string
	// SourceMarkup is the markup field as displayed, carrying the
	// not-found marker when the template file was missing.
	SourceMarkup string
	Modifiers    []RenderedModifier
}

// Renderer renders sections from their template records.
type Renderer struct {
	placeholder string
}

// New returns a Renderer using placeholder for the canonical modifier class.
func New(placeholder string) *Renderer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Renderer{placeholder: placeholder}
}

// Placeholder returns the configured placeholder.
func (r *Renderer) Placeholder() string { return r.placeholder }

// RenderSection renders s using rec. A nil record yields the section with
// empty renderings.
func (r *Renderer) RenderSection(s *styleguide.Section, rec *resolver.Record) (RenderedSection, error) {
	out := RenderedSection{
		Section:      s,
		SourceMarkup: s.Markup,
		Modifiers:    make([]RenderedModifier, 0, len(s.Modifiers)),
	}
	for _, m := range s.Modifiers {
		out.Modifiers = append(out.Modifiers, RenderedModifier{
			Name:        m.Name,
			Description: m.Description,
			ClassName:   m.ClassName(),
		})
	}
	if rec == nil || rec.Template == nil {
		return out, nil
	}
	out.SourceMarkup = rec.Markup

	placeholder := ""
	if len(s.Modifiers) > 0 {
		placeholder = r.placeholder
	}

	markup, err := rec.Template.Render(withModifierClass(rec.Context, placeholder))
	if err != nil {
		return out, err
	}
	out.Markup = markup
	out.Example = markup

	exampleTpl, exampleCtx := rec.Example()
	if rec.HasExample() {
		example, err := exampleTpl.Render(withModifierClass(exampleCtx, placeholder))
		if err != nil {
			return out, err
		}
		out.Example = example
	}

	for i, m := range s.Modifiers {
		rendered, err := exampleTpl.Render(withModifierClass(exampleCtx, m.ClassName()))
		if err != nil {
			return out, err
		}
		out.Modifiers[i].Markup = rendered
	}
	return out, nil
}

// RenderSections renders sections concurrently and returns them in input
// order. The first render error is returned after all renders settle.
func (r *Renderer) RenderSections(ctx context.Context, sections []*styleguide.Section, records *resolver.Records) ([]RenderedSection, error) {
	out := make([]RenderedSection, len(sections))
	errs := make([]error, len(sections))

	var wg sync.WaitGroup
	for i, s := range sections {
		wg.Add(1)
		go func(i int, s *styleguide.Section) {
			defer wg.Done()
			rec, _ := records.Get(s.Reference)
			out[i], errs[i] = r.RenderSection(s, rec)
			if errs[i] != nil {
				observability.ErrorContext(ctx, "Section render failed",
					logfields.Section(s.Reference),
					logfields.Error(errs[i]))
			}
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// withModifierClass returns a fresh copy of data whose modifier class is the
// existing value with class appended.
func withModifierClass(data map[string]any, class string) map[string]any {
	c := samples.Clone(data)
	existing, _ := c[ModifierClassKey].(string)
	c[ModifierClassKey] = joinClass(existing, class)
	return c
}

func joinClass(existing, class string) string {
	switch {
	case class == "":
		return existing
	case existing == "":
		return class
	default:
		return strings.TrimRight(existing, " ") + " " + class
	}
}
