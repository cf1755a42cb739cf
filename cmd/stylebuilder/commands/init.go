package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/pagewriter"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file and page templates"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g.Fs, root.Config, i.Force)
}

// RunInit writes the example configuration and, next to it, the builder
// directory with the default page templates.
func RunInit(fs afero.Fs, configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(fs, configPath, force); err != nil {
		return err
	}

	example := config.Example()
	builderDir := filepath.Join(filepath.Dir(configPath), example.Builder)
	written, err := pagewriter.WriteDefaults(fs, builderDir, example.TemplateExtension, force)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Printf("Wrote page template %s\n", p)
	}
	fmt.Println("initialized successfully")
	return nil
}
