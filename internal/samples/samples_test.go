package samples

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsFor(t *testing.T) {
	assert.Equal(t,
		[]string{"/tpl/button.json", "/tpl/button.yaml", "/tpl/button.yml"},
		PathsFor("/tpl/button.tmpl"))
}

func TestLoadPrefersJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/button.json", []byte(`{"text":"json"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tpl/button.yaml", []byte("text: yaml\n"), 0o644))

	got := NewLoader(fs).Load(context.Background(), "/tpl/button.tmpl")
	assert.Equal(t, map[string]any{"text": "json"}, got)
}

func TestLoadYAMLVariants(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/a.yaml", []byte("text: a\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tpl/b.yml", []byte("items:\n  - one\n  - two\n"), 0o644))

	l := NewLoader(fs)
	assert.Equal(t, map[string]any{"text": "a"}, l.Load(context.Background(), "/tpl/a.tmpl"))
	assert.Equal(t, map[string]any{"items": []any{"one", "two"}}, l.Load(context.Background(), "/tpl/b.tmpl"))
}

func TestLoadMissingOrBroken(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/bad.json", []byte(`{"text":`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tpl/bad.yaml", []byte("text: fallback\n"), 0o644))

	l := NewLoader(fs)
	assert.Empty(t, l.Load(context.Background(), "/tpl/none.tmpl"))
	// A broken first match does not fall through to later extensions.
	assert.Empty(t, l.Load(context.Background(), "/tpl/bad.tmpl"))
}

func TestLoadEmptyDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/empty.yaml", nil, 0o644))

	got := NewLoader(fs).Load(context.Background(), "/tpl/empty.tmpl")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCloneIsDeep(t *testing.T) {
	orig := map[string]any{
		"text":   "Hi",
		"nested": map[string]any{"k": "v"},
	}
	c := Clone(orig)
	c["modifier_class"] = "disabled"
	c["nested"].(map[string]any)["k"] = "changed"

	assert.NotContains(t, orig, "modifier_class")
	assert.Equal(t, "v", orig["nested"].(map[string]any)["k"])
	assert.NotNil(t, Clone(nil))
}

func TestLoadDropsNonIdentifierKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/card.json",
		[]byte(`{"title":"Hi","aria-label":"x","data.id":2,"attrs":{"aria-label":"kept"}}`), 0o644))

	got := NewLoader(fs).Load(context.Background(), "/tpl/card.tmpl")
	assert.Equal(t, map[string]any{
		"title": "Hi",
		"attrs": map[string]any{"aria-label": "kept"},
	}, got)
}

func TestSanitize(t *testing.T) {
	data := map[string]any{"ok_1": 1, "not ok": 2, "x-y": 3}
	got := Sanitize(context.Background(), data)
	assert.Equal(t, map[string]any{"ok_1": 1}, got)
	assert.Empty(t, Sanitize(context.Background(), nil))
}
