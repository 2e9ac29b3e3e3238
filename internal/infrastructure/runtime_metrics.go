package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of process statistics
type RuntimeStats struct {
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	SysBytes       uint64  `json:"sys_bytes"`
	NumGC          uint32  `json:"num_gc"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ActiveSessions int     `json:"active_sessions"`
	GoVersion      string  `json:"go_version"`
}

// RuntimeMetrics reports process and session gauges on every metrics collection
type RuntimeMetrics struct {
	startTime time.Time
	sessions  func() int
	reg       metric.Registration
}

// NewRuntimeMetrics registers observable gauges on meter. sessions returns the
// number of live sessions and may be nil.
func NewRuntimeMetrics(meter metric.Meter, sessions func() int) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{startTime: time.Now(), sessions: sessions}

	goroutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_goroutines: %w", err)
	}

	heap, err := meter.Int64ObservableGauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Heap memory allocated by the Go runtime in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_memory_allocated_bytes: %w", err)
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_uptime_seconds: %w", err)
	}

	active, err := meter.Int64ObservableGauge(
		"sessions_active",
		metric.WithDescription("Number of upload sessions held in memory"),
	)
	if err != nil {
		return nil, fmt.Errorf("sessions_active: %w", err)
	}

	rm.reg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := rm.Collect()
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heap, int64(stats.HeapAllocBytes))
		o.ObserveFloat64(uptime, stats.UptimeSeconds)
		o.ObserveInt64(active, int64(stats.ActiveSessions))
		return nil
	}, goroutines, heap, uptime, active)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime callback: %w", err)
	}

	return rm, nil
}

// Collect returns a snapshot of current process statistics
func (rm *RuntimeMetrics) Collect() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		NumGC:          mem.NumGC,
		UptimeSeconds:  time.Since(rm.startTime).Seconds(),
		GoVersion:      runtime.Version(),
	}
	if rm.sessions != nil {
		stats.ActiveSessions = rm.sessions()
	}
	return stats
}

// Stop unregisters the gauges
func (rm *RuntimeMetrics) Stop() error {
	if rm.reg == nil {
		return nil
	}
	return rm.reg.Unregister()
}
