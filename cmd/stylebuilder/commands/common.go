package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Fs     afero.Fs
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"stylebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render the style guide to static HTML pages"`
	Watch WatchCmd `cmd:"" help:"Rebuild the style guide whenever sources change"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration and default page templates"`
}

// AfterApply runs after flag parsing; it installs a bootstrap logger that
// loadConfig replaces once the log settings are known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = observability.NewLogger(os.Stderr, "text", "info", c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration and reconfigures logging from it.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(g.Fs, root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = observability.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}
