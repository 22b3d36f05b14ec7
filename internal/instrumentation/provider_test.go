package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, config Config) *Provider {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	return provider
}

func TestNewProviderDisabled(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName: "test-service",
		Enabled:     false,
	})

	if provider.Enabled() {
		t.Error("Enabled() = true for disabled provider")
	}
	if provider.Metrics() == nil {
		t.Error("Metrics() = nil, want no-op recorder")
	}

	// No-op recorder must not panic
	provider.Metrics().RecordRun(context.Background(), StatusCompleted, time.Second)
	provider.Metrics().RecordLockBusy(context.Background())
}

func TestNewProviderPrometheus(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})

	if !provider.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics() = nil")
	}
}

func TestNewProviderUnsupportedMetricsExporter(t *testing.T) {
	ctx := context.Background()
	_, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "statsd",
		TracingExporter: ExporterNone,
	})
	if err == nil {
		t.Error("NewProvider() expected error for unsupported exporter")
	}
}

func TestProviderTracerDisabled(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName: "test-service",
		Enabled:     false,
	})

	tracer := provider.Tracer("test")
	if tracer == nil {
		t.Fatal("Tracer() = nil, want no-op tracer")
	}

	// Starting a span through the no-op tracer must not panic
	_, span := tracer.Start(context.Background(), "test-span")
	span.End()
}

func TestProviderShutdownDisabled(t *testing.T) {
	provider := newTestProvider(t, Config{Enabled: false})

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
