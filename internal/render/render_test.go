package render

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuilder/internal/locator"
	"git.home.luguber.info/inful/stylebuilder/internal/resolver"
	"git.home.luguber.info/inful/stylebuilder/internal/samples"
	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
	"git.home.luguber.info/inful/stylebuilder/internal/templating"
)

const buttonMarkup = `<button class="{{ modifier_class }}">{{ text }}</button>`

func resolve(t *testing.T, fs afero.Fs, s *styleguide.Section) *resolver.Record {
	t.Helper()
	r := resolver.New(templating.New(fs), locator.New(fs, []string{"/src"}), samples.NewLoader(fs))
	rec, err := r.Resolve(context.Background(), s)
	require.NoError(t, err)
	return rec
}

func TestRenderSectionWithModifiers(t *testing.T) {
	s := &styleguide.Section{
		Reference: "1",
		Markup:    buttonMarkup,
		Data:      map[string]any{"text": "Hi"},
		Modifiers: []styleguide.Modifier{{Name: ".disabled"}, {Name: ".primary.large"}},
	}
	rec := resolve(t, afero.NewMemMapFs(), s)

	got, err := New("").RenderSection(s, rec)
	require.NoError(t, err)

	assert.Equal(t, `<button class="[modifier class]">Hi</button>`, got.Markup)
	assert.Equal(t, got.Markup, got.Example)
	require.Len(t, got.Modifiers, 2)
	assert.Equal(t, `<button class="disabled">Hi</button>`, got.Modifiers[0].Markup)
	assert.Equal(t, `<button class="primary large">Hi</button>`, got.Modifiers[1].Markup)
}

func TestRenderSectionWithoutModifiersHasNoPlaceholder(t *testing.T) {
	s := &styleguide.Section{Reference: "1", Markup: buttonMarkup, Data: map[string]any{"text": "Hi"}}
	rec := resolve(t, afero.NewMemMapFs(), s)

	got, err := New("").RenderSection(s, rec)
	require.NoError(t, err)
	assert.Equal(t, `<button class="">Hi</button>`, got.Markup)
}

func TestModifierClassAppendsToExisting(t *testing.T) {
	s := &styleguide.Section{
		Reference: "1",
		Markup:    buttonMarkup,
		Data:      map[string]any{"text": "Hi", "modifier_class": "btn"},
		Modifiers: []styleguide.Modifier{{Name: ".disabled"}},
	}
	rec := resolve(t, afero.NewMemMapFs(), s)

	got, err := New("{{mod}}").RenderSection(s, rec)
	require.NoError(t, err)
	assert.Equal(t, `<button class="btn {{mod}}">Hi</button>`, got.Markup)
	assert.Equal(t, `<button class="btn disabled">Hi</button>`, got.Modifiers[0].Markup)
}

func TestRenderIsIdempotentAndIsolated(t *testing.T) {
	s := &styleguide.Section{
		Reference: "1",
		Markup:    buttonMarkup,
		Data:      map[string]any{"text": "Hi"},
		Modifiers: []styleguide.Modifier{{Name: ".a"}, {Name: ".b"}},
	}
	rec := resolve(t, afero.NewMemMapFs(), s)
	r := New("")

	first, err := r.RenderSection(s, rec)
	require.NoError(t, err)
	second, err := r.RenderSection(s, rec)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second render differs (-first +second):\n%s", diff)
	}
	// Neither the record's sample data nor the section's data gained the class.
	assert.NotContains(t, rec.Context, ModifierClassKey)
	assert.NotContains(t, s.Data, ModifierClassKey)
	assert.Equal(t, `<button class="b">Hi</button>`, first.Modifiers[1].Markup)
}

func TestExampleFallbackIsByteIdentical(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/card.tmpl", []byte(`<div class="card {{ modifier_class }}">{{ title }}</div>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/card.yml", []byte("title: Card\n"), 0o644))
	s := &styleguide.Section{Reference: "1.1", Markup: "card.tmpl"}
	rec := resolve(t, fs, s)

	got, err := New("").RenderSection(s, rec)
	require.NoError(t, err)
	if diff := cmp.Diff(got.Markup, got.Example); diff != "" {
		t.Fatalf("example differs from markup (-markup +example):\n%s", diff)
	}
}

func TestDistinctExampleDrivesModifiers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/btn.tmpl", []byte(`<button class="{{ modifier_class }}">main</button>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/kss-example-btn.tmpl", []byte(`<a class="{{ modifier_class }}">{{ label }}</a>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/kss-example-btn.json", []byte(`{"label":"example"}`), 0o644))
	s := &styleguide.Section{Reference: "1", Markup: "btn.tmpl", Modifiers: []styleguide.Modifier{{Name: ".hot"}}}
	rec := resolve(t, fs, s)

	got, err := New("").RenderSection(s, rec)
	require.NoError(t, err)
	assert.Equal(t, `<button class="[modifier class]">main</button>`, got.Markup)
	assert.Equal(t, `<a class="[modifier class]">example</a>`, got.Example)
	assert.Equal(t, `<a class="hot">example</a>`, got.Modifiers[0].Markup)
}

func TestRenderSectionWithoutRecord(t *testing.T) {
	s := &styleguide.Section{Reference: "9", Header: "Empty", Modifiers: []styleguide.Modifier{{Name: ".x"}}}

	got, err := New("").RenderSection(s, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Markup)
	require.Len(t, got.Modifiers, 1)
	assert.Equal(t, "x", got.Modifiers[0].ClassName)
}

func TestRenderSectionsPreservesOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	guide := styleguide.New("Demo", nil, []styleguide.Section{
		{Reference: "1", Markup: "one"},
		{Reference: "1.1", Markup: "two"},
		{Reference: "1.2", Markup: "three"},
		{Reference: "1.3"},
	})
	r := resolver.New(templating.New(fs), locator.New(fs, nil), samples.NewLoader(fs))
	records, err := r.ResolveAll(context.Background(), guide)
	require.NoError(t, err)

	got, err := New("").RenderSections(context.Background(), guide.Sections(), records)
	require.NoError(t, err)

	var markups []string
	for _, rs := range got {
		markups = append(markups, rs.Markup)
	}
	assert.Equal(t, []string{"one", "two", "three", ""}, markups)
}

func TestNotFoundMarkupIsDisplayed(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := &styleguide.Section{Reference: "2", Markup: "missing.tmpl"}
	rec := resolve(t, fs, s)

	got, err := New("").RenderSection(s, rec)
	require.NoError(t, err)
	assert.Contains(t, got.SourceMarkup, "NOT FOUND")
	assert.Equal(t, "missing.tmpl", got.Markup)
}

func TestRenderSectionIgnoresNonIdentifierSampleKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/card.tmpl", []byte(`<div>{{ title }}</div>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/card.json", []byte(`{"title":"Hi","aria-label":"unused"}`), 0o644))
	file := &styleguide.Section{Reference: "1", Markup: "card.tmpl"}
	inline := &styleguide.Section{
		Reference: "2",
		Markup:    `<b>{{ title }}</b>`,
		Data:      map[string]any{"title": "Inline", "data-x": 1},
		Modifiers: []styleguide.Modifier{{Name: ".wide"}},
	}

	got, err := New("").RenderSection(file, resolve(t, fs, file))
	require.NoError(t, err)
	assert.Equal(t, `<div>Hi</div>`, got.Markup)

	got, err = New("").RenderSection(inline, resolve(t, fs, inline))
	require.NoError(t, err)
	assert.Equal(t, `<b>Inline</b>`, got.Markup)
	require.Len(t, got.Modifiers, 1)
	assert.Equal(t, `<b>Inline</b>`, got.Modifiers[0].Markup)
	assert.Contains(t, inline.Data, "data-x", "section data is never modified")
}
