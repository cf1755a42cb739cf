package pagewriter

import (
	"git.home.luguber.info/inful/stylebuilder/internal/pages"
	"git.home.luguber.info/inful/stylebuilder/internal/render"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
)

// DefaultNavDepth limits how deep the active root's menu children go.
const DefaultNavDepth = 3

// MenuItem is one navigation entry.
type MenuItem struct {
	Reference    string
	ReferenceURI string
	Header       string
	Depth        int
	IsActive     bool
	Children     []MenuItem
}

// BuildMenu returns one item per root reference. The root containing active
// is marked and carries its descendants down to depth.
func BuildMenu(guide *styleguide.StyleGuide, active string, depth int) []MenuItem {
	if depth <= 0 {
		depth = DefaultNavDepth
	}
	activeRoot := styleguide.RootOf(active)

	roots := guide.Roots()
	menu := make([]MenuItem, 0, len(roots))
	for _, root := range roots {
		item := MenuItem{
			Reference:    root,
			ReferenceURI: styleguide.ReferenceURI(root),
			Header:       root,
			Depth:        1,
			IsActive:     root == activeRoot,
		}
		if s, ok := guide.Section(root); ok && s.Header != "" {
			item.Header = s.Header
		}
		if item.IsActive {
			for _, s := range guide.SectionsUnder(root) {
				d := s.Depth()
				if d < 2 || d > depth {
					continue
				}
				item.Children = append(item.Children, MenuItem{
					Reference:    s.Reference,
					ReferenceURI: s.ReferenceURI(),
					Header:       s.Header,
					Depth:        d,
					IsActive:     s.Reference == active,
				})
			}
		}
		menu = append(menu, item)
	}
	return menu
}

func menuContext(items []MenuItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"reference":    it.Reference,
			"referenceURI": it.ReferenceURI,
			"header":       it.Header,
			"depth":        it.Depth,
			"isActive":     it.IsActive,
			"children":     menuContext(it.Children),
		})
	}
	return out
}

func sectionContext(rs render.RenderedSection, description string) map[string]any {
	s := rs.Section
	mods := make([]map[string]any, 0, len(rs.Modifiers))
	for _, m := range rs.Modifiers {
		mods = append(mods, map[string]any{
			"name":        m.Name,
			"description": m.Description,
			"className":   m.ClassName,
			"markup":      m.Markup,
		})
	}
	return map[string]any{
		"reference":    s.Reference,
		"referenceURI": s.ReferenceURI(),
		"header":       s.Header,
		"description":  description,
		"depth":        s.Depth(),
		"markup":       rs.Markup,
		"example":      rs.Example,
		"sourceMarkup": rs.SourceMarkup,
		"modifiers":    mods,
	}
}

func templateContext(kind pages.Kind) map[string]any {
	return map[string]any{
		"name":       string(kind),
		"isHomepage": kind == pages.KindIndex,
		"isSection":  kind == pages.KindSection,
		"isItem":     kind == pages.KindItem,
	}
}

func styleGuideContext(guide *styleguide.StyleGuide) map[string]any {
	return map[string]any{
		"title":                guide.Title(),
		"files":                guide.Files(),
		"hasNumericReferences": guide.HasNumericReferences(),
	}
}
