package redact

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const passMeterName = "github.com/cgeisenberger/lisanon/internal/redact"

var (
	passRowsCounter  metric.Int64Counter
	passSpansCounter metric.Int64Counter
	passMetricsOnce  sync.Once
	passMetricsReady bool
)

func initPassMetrics() {
	meter := otel.Meter(passMeterName)
	var err error
	passRowsCounter, err = meter.Int64Counter(
		"lisanon.redact.rows",
		metric.WithDescription("Rows processed per redaction pass"),
	)
	if err != nil {
		return
	}
	passSpansCounter, err = meter.Int64Counter(
		"lisanon.redact.spans",
		metric.WithDescription("Newly redacted spans per redaction pass"),
	)
	if err != nil {
		return
	}
	passMetricsReady = true
}

// RecordPassMetrics records row and new-span counts after a pass run.
// The pass attribute allows per-pass filtering in observability backends.
func RecordPassMetrics(ctx context.Context, pass string, rows, newSpans int) {
	passMetricsOnce.Do(initPassMetrics)
	if !passMetricsReady {
		return
	}
	attrs := metric.WithAttributes(attribute.String("pass", pass))
	passRowsCounter.Add(ctx, int64(rows), attrs)
	passSpansCounter.Add(ctx, int64(newSpans), attrs)
}
