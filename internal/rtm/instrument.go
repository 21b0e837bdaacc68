package rtm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"mtask/internal/rtm/model"
)

// instrumentationName names the meter and tracer used by Client.
const instrumentationName = "mtask/internal/rtm"

// Metric and span attribute keys.
const (
	attrMethod = "method"
	attrStatus = "status"

	spanAttrMethod = "rtm.method"
	spanAttrCode   = "rtm.error_code"
)

// Call status values recorded on metrics.
const (
	statusOK          = "ok"
	statusFail        = "fail"
	statusSystemError = "system_error"
	statusMalformed   = "malformed"
	statusError       = "error"
)

type callMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

func newCallMetrics(meter metric.Meter) (*callMetrics, error) {
	m := &callMetrics{}
	var err error

	m.calls, err = meter.Int64Counter(
		"rtm_calls_total",
		metric.WithDescription("Total number of RTM API method calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rtm_calls_total counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"rtm_call_duration_seconds",
		metric.WithDescription("RTM API method call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rtm_call_duration_seconds histogram: %w", err)
	}

	return m, nil
}

func (m *callMetrics) record(ctx context.Context, method, status string, d time.Duration) {
	if m == nil || m.calls == nil || m.duration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, status),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// callStatus classifies the outcome of a call for metrics.
func callStatus(err error) string {
	var (
		rerr *RemoteRequestError
		merr *model.MalformedResponseError
	)
	switch {
	case err == nil:
		return statusOK
	case errors.As(err, &rerr):
		return statusFail
	case errors.Is(err, ErrSystem):
		return statusSystemError
	case errors.As(err, &merr):
		return statusMalformed
	}
	return statusError
}
