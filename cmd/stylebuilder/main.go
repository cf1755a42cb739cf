package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/cmd/stylebuilder/commands"
	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/stylebuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Fs: afero.NewOsFs()}

	parser := kong.Must(cli,
		kong.Name("stylebuilder"),
		kong.Description("Render a living style guide to static HTML pages."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
