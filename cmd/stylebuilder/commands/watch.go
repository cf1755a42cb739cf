package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/stylebuilder/internal/build"
	"git.home.luguber.info/inful/stylebuilder/internal/config"
	"git.home.luguber.info/inful/stylebuilder/internal/metrics"
	"git.home.luguber.info/inful/stylebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Destination string        `short:"d" help:"Output directory (overrides destination in the config)" type:"path"`
	Debounce    time.Duration `help:"Quiet period before a rebuild (overrides watch.debounce)"`
	Interval    time.Duration `help:"Also rebuild periodically (overrides watch.interval)"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	w.applyOverrides(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWatch(ctx, g, cfg, w.Destination)
}

func (w *WatchCmd) applyOverrides(cfg *config.Config) {
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}
	if w.Interval > 0 {
		cfg.Watch.Interval = w.Interval
	}
	if w.MetricsAddr != "" {
		cfg.Watch.MetricsAddr = w.MetricsAddr
	}
}

// RunWatch builds once and then rebuilds on change until ctx is done.
func RunWatch(ctx context.Context, g *Global, cfg *config.Config, destination string) error {
	svc := build.NewBuildService(g.Fs)

	if cfg.Watch.MetricsAddr != "" {
		reg := prom.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
		srv, err := watch.StartMetricsServer(cfg.Watch.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	req := build.BuildRequest{Config: cfg, Destination: destination}
	return watch.New(svc, req, watch.OptionsFor(cfg, destination)).Run(ctx)
}
