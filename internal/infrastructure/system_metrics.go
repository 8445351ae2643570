package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records Go runtime statistics.
type SystemMetrics struct {
	goRoutines    metric.Int64Gauge
	memoryUsage   metric.Int64Gauge
	memorySystem  metric.Int64Gauge
	gcPause       metric.Float64Histogram
	processUptime metric.Float64Gauge
}

// NewSystemMetrics creates a new runtime metrics recorder.
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	memoryUsage, err := meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Memory usage in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"system_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:    goRoutines,
		memoryUsage:   memoryUsage,
		memorySystem:  memorySystem,
		gcPause:       gcPause,
		processUptime: processUptime,
	}, nil
}

// Collect reads runtime statistics and records them.
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sm.goRoutines.Record(ctx, int64(runtime.NumGoroutine()))
	sm.memoryUsage.Record(ctx, int64(memStats.Alloc))
	sm.memorySystem.Record(ctx, int64(memStats.Sys))
	sm.processUptime.Record(ctx, time.Since(startTime).Seconds())

	if memStats.NumGC > 0 {
		pause := time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256])
		sm.gcPause.Record(ctx, pause.Seconds())
	}
}

// SystemMetricsCollector manages periodic system metrics collection.
type SystemMetricsCollector struct {
	metrics   *SystemMetrics
	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSystemMetricsCollector creates a new system metrics collector.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	metrics, err := NewSystemMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	return &SystemMetricsCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins periodic metrics collection. It blocks until Stop is called
// or the context is cancelled.
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.metrics.Collect(ctx, smc.startTime)

	for {
		select {
		case <-ticker.C:
			smc.metrics.Collect(ctx, smc.startTime)
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collection.
func (smc *SystemMetricsCollector) Stop() {
	close(smc.stopCh)
}
