// Package instrumentation provides OpenTelemetry metrics and tracing for
// the filing service.
//
// Metrics cover filing runs (outcome, duration, documents filed, archive
// sweeps, lock contention), the resolve HTTP endpoint, and Google API
// calls. The default exporter is Prometheus, scraped from the dedicated
// metrics server; an OTLP exporter can be configured instead. Tracing is
// disabled by default and can be exported over OTLP.
//
// Configuration follows the standard OTEL_* environment variables, see
// DefaultConfig.
package instrumentation
