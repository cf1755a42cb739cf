package commands

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

func parse(t *testing.T, g *Global, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Bind(g), kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestInitCommand(t *testing.T) {
	g := &Global{Fs: afero.NewMemMapFs()}

	cli, kctx := parse(t, g, "-c", "/proj/stylebuilder.yaml", "init")
	require.NoError(t, kctx.Run(cli))

	exists, _ := afero.Exists(g.Fs, "/proj/stylebuilder.yaml")
	assert.True(t, exists)
	exists, _ = afero.Exists(g.Fs, "/proj/builder/index.tmpl")
	assert.True(t, exists)

	cli, kctx = parse(t, g, "-c", "/proj/stylebuilder.yaml", "init")
	err := kctx.Run(cli)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	cli, kctx = parse(t, g, "-c", "/proj/stylebuilder.yaml", "init", "--force")
	require.NoError(t, kctx.Run(cli))
}

func TestBuildCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/stylebuilder.yaml":  "styleguide: /proj/guide.yaml\nsource: [/proj/src]\ndestination: /proj/out\nbuilder: /proj/builder\n",
		"/proj/guide.yaml":         "title: Demo\nsections:\n  - reference: \"1\"\n    header: Buttons\n    markup: '<button>{{ text }}</button>'\n    data: {text: Go}\n",
		"/proj/builder/index.tmpl": "{% for s in sections %}{{ s.example|safe }}{% endfor %}",
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	g := &Global{Fs: fs}

	cli, kctx := parse(t, g, "-c", "/proj/stylebuilder.yaml", "build", "-d", "/proj/site")
	require.NoError(t, kctx.Run(cli))

	raw, err := afero.ReadFile(fs, "/proj/site/section-1.html")
	require.NoError(t, err)
	assert.Equal(t, "<button>Go</button>", string(raw))
	assert.NotNil(t, g.Logger)
}

func TestBuildCommand_MissingConfig(t *testing.T) {
	g := &Global{Fs: afero.NewMemMapFs()}
	cli, kctx := parse(t, g, "-c", "/nope.yaml", "build")

	err := kctx.Run(cli)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestWatchOverrides(t *testing.T) {
	cfg := &config.Config{Watch: config.WatchConfig{Debounce: time.Second}}
	w := &WatchCmd{Interval: time.Minute, MetricsAddr: ":9090"}
	w.applyOverrides(cfg)

	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
	assert.Equal(t, ":9090", cfg.Watch.MetricsAddr)
}

func TestRunWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StyleGuide: dir + "/guide.yaml",
		Source:     []string{dir},
		Builder:    dir,
		Watch:      config.WatchConfig{Debounce: 10 * time.Millisecond},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, RunWatch(ctx, &Global{Fs: afero.NewOsFs()}, cfg, dir+"/out"))
}
