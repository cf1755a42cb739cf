package watch

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/metrics"
)

// MetricsPath is the endpoint serving the Prometheus exposition.
const MetricsPath = "/metrics"

// MetricsServer exposes a registry over HTTP while the watch loop runs.
type MetricsServer struct {
	server *http.Server
	ln     net.Listener
}

// StartMetricsServer binds addr and serves reg on MetricsPath in the
// background. Binding happens before returning so port conflicts surface
// as errors.
func StartMetricsServer(addr string, reg *prom.Registry) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to bind metrics address").
			Fatal().
			WithContext("addr", addr).
			Build()
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, metrics.HTTPHandler(reg))
	s := &MetricsServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second},
		ln:     ln,
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server error", logfields.Error(err))
		}
	}()
	slog.Info("Metrics endpoint listening", slog.String("addr", ln.Addr().String()), logfields.Path(MetricsPath))
	return s, nil
}

// Addr returns the bound address.
func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Stop shuts the server down.
func (s *MetricsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
