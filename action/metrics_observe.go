package action

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ObserveMetrics adapts an OTel meter into the Metrics surface
// Runtime.Invoke increments, grounded on observe/metrics.go's
// node.exec.* instrument family but scoped to action.exec.* and split
// across Metrics' four independent calls instead of observe.Metrics'
// single RecordExecution call — Runtime fires IncActionsExecuted/Failed/
// Cancelled and ObserveActionDuration at different points in Invoke, not
// all at once, so it can't be reduced to one RecordExecution per
// invocation. Build one from an observe.Observer's Meter(), e.g.
// action.NewObserveMetrics(observer.Meter()).
type ObserveMetrics struct {
	executed  metric.Int64Counter
	failed    metric.Int64Counter
	cancelled metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewObserveMetrics registers action.exec.* instruments against meter.
func NewObserveMetrics(meter metric.Meter) (*ObserveMetrics, error) {
	executed, err := meter.Int64Counter(
		"action.exec.total",
		metric.WithDescription("Total number of node action executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"action.exec.errors",
		metric.WithDescription("Total number of node action failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cancelled, err := meter.Int64Counter(
		"action.exec.cancelled",
		metric.WithDescription("Total number of node actions cancelled"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"action.exec.duration_ms",
		metric.WithDescription("Node action execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ObserveMetrics{
		executed:  executed,
		failed:    failed,
		cancelled: cancelled,
		duration:  duration,
	}, nil
}

func (m *ObserveMetrics) IncActionsExecuted(nodeType string) {
	m.executed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("node.type", nodeType)))
}

func (m *ObserveMetrics) IncActionsFailed(nodeType string) {
	m.failed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("node.type", nodeType)))
}

func (m *ObserveMetrics) IncActionsCancelled(nodeType string) {
	m.cancelled.Add(context.Background(), 1, metric.WithAttributes(attribute.String("node.type", nodeType)))
}

func (m *ObserveMetrics) ObserveActionDuration(nodeType string, d time.Duration) {
	m.duration.Record(context.Background(), float64(d.Milliseconds()), metric.WithAttributes(attribute.String("node.type", nodeType)))
}
