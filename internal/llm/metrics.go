package llm

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/veridex-io/mailguard/internal/llm"

var (
	costHistogram     metric.Float64Histogram
	latencyHistogram  metric.Float64Histogram
	metricsOnce       sync.Once
	metricsRegistered bool
)

func initMetrics() {
	meter := otel.Meter(meterName)
	var err error
	costHistogram, err = meter.Float64Histogram(
		"mailguard.reasoning.cost",
		metric.WithDescription("Cost in EUR per reasoning call"),
		metric.WithUnit("eur"),
	)
	if err != nil {
		return
	}
	latencyHistogram, err = meter.Float64Histogram(
		"mailguard.reasoning.duration",
		metric.WithDescription("Wall-clock duration per reasoning call"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return
	}
	metricsRegistered = true
}

// RecordReasoningMetrics records cost and latency after a reasoning call.
// Stage and model attributes allow per-agent filtering in backends.
func RecordReasoningMetrics(ctx context.Context, stage, model string, costEUR float64, dur time.Duration) {
	metricsOnce.Do(initMetrics)
	if !metricsRegistered {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("model", model),
	)
	costHistogram.Record(ctx, costEUR, attrs)
	latencyHistogram.Record(ctx, dur.Seconds(), attrs)
}
