package connectivity

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for connectivity operations.
var (
	tracer = otel.Tracer("opentrace.connectivity")
	meter  = otel.Meter("opentrace.connectivity")
)

var (
	searchLatency  metric.Float64Histogram
	searchTotal    metric.Int64Counter
	searchTasks    metric.Int64Counter
	linksCreated   metric.Int64Counter
	netsRewritten  metric.Int64Counter
	clusterLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		searchLatency, err = meter.Float64Histogram(
			"connectivity_search_duration_seconds",
			metric.WithDescription("Duration of connectivity search passes"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchTotal, err = meter.Int64Counter(
			"connectivity_search_total",
			metric.WithDescription("Total number of connectivity search passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchTasks, err = meter.Int64Counter(
			"connectivity_search_tasks_total",
			metric.WithDescription("Number of item search tasks submitted by search passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		linksCreated, err = meter.Int64Counter(
			"connectivity_links_created_total",
			metric.WithDescription("Number of item links created by search passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		netsRewritten, err = meter.Int64Counter(
			"connectivity_nets_rewritten_total",
			metric.WithDescription("Number of item net codes rewritten by propagation"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		clusterLatency, err = meter.Float64Histogram(
			"connectivity_cluster_duration_seconds",
			metric.WithDescription("Duration of clustering passes"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordSearchMetrics records metrics for one search pass.
func recordSearchMetrics(ctx context.Context, duration time.Duration, tasks, links int, cancelled bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("cancelled", cancelled))
	searchLatency.Record(ctx, duration.Seconds(), attrs)
	searchTotal.Add(ctx, 1, attrs)
	searchTasks.Add(ctx, int64(tasks), attrs)
	linksCreated.Add(ctx, int64(links))
}

// recordClusterMetrics records metrics for one clustering pass.
func recordClusterMetrics(ctx context.Context, mode ClusterMode, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	clusterLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("mode", mode.String())),
	)
}

// recordPropagateMetrics records the number of rewritten nets.
func recordPropagateMetrics(ctx context.Context, changed int) {
	if err := initMetrics(); err != nil {
		return
	}
	netsRewritten.Add(ctx, int64(changed))
}

// startSpan creates a span for an engine operation.
func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "connectivity."+op, trace.WithAttributes(attrs...))
}
