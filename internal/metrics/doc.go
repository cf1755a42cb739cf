// Package metrics provides build observability hooks for the style guide builder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	service := build.NewService(fs).WithRecorder(recorder)
//
// The watch command exposes the Prometheus registry over HTTP when a metrics
// address is configured.
package metrics
