package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/stylebuilder/internal/build"
	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Destination string `short:"d" help:"Output directory (overrides destination in the config)" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunBuild(ctx, g, cfg, b.Destination)
}

// RunBuild performs a single build and prints a summary.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, destination string) error {
	svc := build.NewBuildService(g.Fs)
	result, err := svc.Run(ctx, build.BuildRequest{Config: cfg, Destination: destination})
	if err != nil {
		return err
	}

	for _, ref := range result.TemplatesMissing {
		slog.Warn("Section rendered without template", logfields.Section(ref))
	}
	fmt.Printf("Wrote %d pages to %s in %s\n", len(result.Pages), result.OutputPath, result.Duration.Round(time.Millisecond))
	return nil
}
