package templating

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

func TestCompileInlineAndRender(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	tpl, err := svc.Compile("1.1", InlineSource(`<b class="{{ modifier_class }}">{{ text }}</b>`))
	require.NoError(t, err)
	assert.Equal(t, "1.1", tpl.Name())
	assert.Empty(t, tpl.Path())

	out, err := tpl.Render(map[string]any{"modifier_class": "on", "text": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, `<b class="on">Hi</b>`, out)
}

func TestCompileFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/button.tmpl", []byte(`<button>{{ label }}</button>`), 0o644))
	svc := New(fs)

	tpl, err := svc.Compile("button.tmpl", FileSource("/tpl/button.tmpl"))
	require.NoError(t, err)
	assert.Equal(t, "/tpl/button.tmpl", tpl.Path())

	out, err := tpl.Render(map[string]any{"label": "Go"})
	require.NoError(t, err)
	assert.Equal(t, "<button>Go</button>", out)
}

func TestCompileMissingFile(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	_, err := svc.Compile("gone.tmpl", FileSource("/nope/gone.tmpl"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestCompileSyntaxError(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	_, err := svc.Compile("broken", InlineSource(`{% if %}`))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))

	_, err = svc.Compile("broken", InlineSource("fine"))
	require.Error(t, err, "a failed identity stays failed for the build")
}

func TestCompileOncePerIdentity(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	first, err := svc.Compile("x", InlineSource("first"))
	require.NoError(t, err)
	second, err := svc.Compile("x", InlineSource("second"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	out, err := second.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestConcurrentCompileSharesResult(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.tmpl", []byte("a"), 0o644))
	svc := New(fs)

	const n = 32
	var wg sync.WaitGroup
	results := make([]*Template, n)
	var failures atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tpl, err := svc.Compile("a.tmpl", FileSource("/a.tmpl"))
			if err != nil {
				failures.Add(1)
				return
			}
			results[i] = tpl
		}(i)
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, svc.Len())
}

func TestResetDropsIdentities(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	old, err := svc.Compile("x", InlineSource("old"))
	require.NoError(t, err)

	svc.Reset()
	assert.Zero(t, svc.Len())

	fresh, err := svc.Compile("x", InlineSource("new"))
	require.NoError(t, err)
	out, err := fresh.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "new", out)

	// Handles from before the reset stay usable.
	out, err = old.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "old", out)
}

func TestIncludeResolvesRegisteredIdentity(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	_, err := svc.Compile("badge", InlineSource(`<span>{{ text }}</span>`))
	require.NoError(t, err)
	tpl, err := svc.Compile("card", InlineSource(`<div>{% include "badge" %}</div>`))
	require.NoError(t, err)

	out, err := tpl.Render(map[string]any{"text": "new"})
	require.NoError(t, err)
	assert.Equal(t, "<div><span>new</span></div>", out)
}

func TestIncludeFallsBackToSearchPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/partials/icon.tmpl", []byte(`<i></i>`), 0o644))
	svc := New(fs)
	svc.SetSearchPaths("/missing", "/partials")

	tpl, err := svc.Compile("x", InlineSource(`{% include "icon.tmpl" %}!`))
	require.NoError(t, err)
	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "<i></i>!", out)
}

func TestGlobals(t *testing.T) {
	svc := New(afero.NewMemMapFs(), WithGlobals(map[string]any{"site": "Demo"}))

	tpl, err := svc.Compile("x", InlineSource(`{{ site }}`))
	require.NoError(t, err)
	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "Demo", out)
}

func TestRenderAutoescapes(t *testing.T) {
	svc := New(afero.NewMemMapFs())

	tpl, err := svc.Compile("x", InlineSource(`{{ markup }}|{{ markup|safe }}`))
	require.NoError(t, err)
	out, err := tpl.Render(map[string]any{"markup": "<b>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;|<b>", out)
}
