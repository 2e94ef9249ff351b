package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pingwatch/connectivity-monitor/internal/model"
)

// Recorder records dependency check outcomes.
//
// Implementations must be safe for concurrent use: the aggregator records
// from one goroutine per check.
type Recorder interface {
	RecordCheck(ctx context.Context, dependency string, outcome model.CheckOutcome, duration time.Duration)
	RecordReport(ctx context.Context, report *model.HealthReport, duration time.Duration)
}

type recorder struct {
	checkCount     metric.Int64Counter
	checkDuration  metric.Float64Histogram
	healthy        metric.Int64Gauge
	reportDuration metric.Float64Histogram
}

func NewRecorder(meter metric.Meter) (Recorder, error) {
	checkCount, err := meter.Int64Counter(
		"monitor.check.count",
		metric.WithDescription("Number of dependency checks run"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"monitor.check.duration",
		metric.WithDescription("Dependency check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	healthy, err := meter.Int64Gauge(
		"monitor.dependency.healthy",
		metric.WithDescription("1 when the last check of a dependency was healthy, 0 otherwise"),
	)
	if err != nil {
		return nil, err
	}

	reportDuration, err := meter.Float64Histogram(
		"monitor.report.duration",
		metric.WithDescription("Time to aggregate a full health report in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &recorder{
		checkCount:     checkCount,
		checkDuration:  checkDuration,
		healthy:        healthy,
		reportDuration: reportDuration,
	}, nil
}

func (r *recorder) RecordCheck(ctx context.Context, dependency string, outcome model.CheckOutcome, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("dependency", dependency),
		attribute.Bool("healthy", outcome.Healthy),
	)

	r.checkCount.Add(ctx, 1, opt)
	r.checkDuration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)

	value := int64(0)
	if outcome.Healthy {
		value = 1
	}
	r.healthy.Record(ctx, value, metric.WithAttributes(attribute.String("dependency", dependency)))
}

func (r *recorder) RecordReport(ctx context.Context, report *model.HealthReport, duration time.Duration) {
	r.reportDuration.Record(ctx, float64(duration)/float64(time.Millisecond),
		metric.WithAttributes(attribute.Bool("healthy", report.Healthy())))
}

type nopRecorder struct{}

// NopRecorder discards everything.
func NopRecorder() Recorder {
	return nopRecorder{}
}

func (nopRecorder) RecordCheck(context.Context, string, model.CheckOutcome, time.Duration) {}

func (nopRecorder) RecordReport(context.Context, *model.HealthReport, time.Duration) {}
