package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrDocType   = "doc_type"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Filing run metrics
	runsTotal           metric.Int64Counter
	runDuration         metric.Float64Histogram
	documentsFiledTotal metric.Int64Counter
	archiveSweepsTotal  metric.Int64Counter
	lockBusyTotal       metric.Int64Counter

	// HTTP metrics for the resolve endpoint
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// Filing run metrics
	m.runsTotal, err = meter.Int64Counter(
		"filing_runs_total",
		metric.WithDescription("Total number of filing runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filing_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"filing_run_duration_seconds",
		metric.WithDescription("Filing run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filing_run_duration_seconds histogram: %w", err)
	}

	m.documentsFiledTotal, err = meter.Int64Counter(
		"documents_filed_total",
		metric.WithDescription("Total number of documents filed by document type"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents_filed_total counter: %w", err)
	}

	m.archiveSweepsTotal, err = meter.Int64Counter(
		"archive_sweeps_total",
		metric.WithDescription("Total number of day-rollover archive sweeps"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive_sweeps_total counter: %w", err)
	}

	m.lockBusyTotal, err = meter.Int64Counter(
		"filing_lock_busy_total",
		metric.WithDescription("Total number of runs skipped because another run held the lock"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filing_lock_busy_total counter: %w", err)
	}

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordRun records a completed filing run with its outcome and duration.
// Status should be one of: "completed", "skipped", "error".
func (m *Metrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	if m.runsTotal == nil || m.runDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDocumentsFiled records documents placed for a document type.
func (m *Metrics) RecordDocumentsFiled(ctx context.Context, docType string, count int) {
	if m.documentsFiledTotal == nil || count <= 0 {
		return
	}

	m.documentsFiledTotal.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String(attrDocType, docType),
	))
}

// RecordArchiveSweep records a day-rollover archive sweep.
func (m *Metrics) RecordArchiveSweep(ctx context.Context) {
	if m.archiveSweepsTotal == nil {
		return
	}

	m.archiveSweepsTotal.Add(ctx, 1)
}

// RecordLockBusy records a run skipped due to lock contention.
func (m *Metrics) RecordLockBusy(ctx context.Context) {
	if m.lockBusyTotal == nil {
		return
	}

	m.lockBusyTotal.Add(ctx, 1)
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service,
// operation, status, and duration.
//
// Parameters:
//   - service: Google service name (gmail, drive)
//   - operation: Operation type (list, get, create, update, modify)
//   - status: Result status ("completed" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
