package google

import (
	"context"
	"time"

	"github.com/teemow/docfiler/internal/instrumentation"
)

// APIObserver records a client span and an operation metric around each
// Google API call. A nil observer, or one without a metrics recorder, runs
// the call unobserved so clients work unchanged when instrumentation is
// not configured.
type APIObserver struct {
	service ServiceType
	metrics *instrumentation.Metrics
}

// NewAPIObserver creates an observer for the given service. metrics may be
// nil.
func NewAPIObserver(service ServiceType, metrics *instrumentation.Metrics) *APIObserver {
	return &APIObserver{service: service, metrics: metrics}
}

// Observe runs fn and records its outcome and duration under the given
// operation name (list, get, create, update, modify).
func (o *APIObserver) Observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if o == nil || o.metrics == nil {
		return fn(ctx)
	}

	spanCtx, span := instrumentation.StartGoogleAPISpan(ctx, string(o.service), operation)
	defer span.End()

	start := time.Now()
	err := fn(spanCtx)
	duration := time.Since(start)

	status := instrumentation.StatusCompleted
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	o.metrics.RecordGoogleAPIOperation(ctx, string(o.service), operation, status, duration)
	return err
}
