package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReportMetrics holds the application metrics
type ReportMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	RendersTotal    metric.Int64Counter
	RenderDuration  metric.Float64Histogram
	StageDuration   metric.Float64Histogram
	EventsProcessed metric.Int64Counter
	RenderErrors    metric.Int64Counter

	// Upload and export metrics
	UploadBytes  metric.Int64Counter
	ExportsTotal metric.Int64Counter
}

// CreateReportMetrics creates the application metrics on meter
func CreateReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	m := &ReportMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http_requests_total: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("http_request_duration_seconds: %w", err)
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http_active_requests: %w", err)
	}

	if m.RendersTotal, err = meter.Int64Counter(
		"report_renders_total",
		metric.WithDescription("Total number of report pipeline runs"),
	); err != nil {
		return nil, fmt.Errorf("report_renders_total: %w", err)
	}

	if m.RenderDuration, err = meter.Float64Histogram(
		"report_render_duration_seconds",
		metric.WithDescription("Report pipeline duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("report_render_duration_seconds: %w", err)
	}

	if m.StageDuration, err = meter.Float64Histogram(
		"report_stage_duration_seconds",
		metric.WithDescription("Duration of each pipeline stage in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("report_stage_duration_seconds: %w", err)
	}

	if m.EventsProcessed, err = meter.Int64Counter(
		"report_events_processed_total",
		metric.WithDescription("Total number of enriched sourcing events"),
	); err != nil {
		return nil, fmt.Errorf("report_events_processed_total: %w", err)
	}

	if m.RenderErrors, err = meter.Int64Counter(
		"report_errors_total",
		metric.WithDescription("Total number of failed pipeline runs"),
	); err != nil {
		return nil, fmt.Errorf("report_errors_total: %w", err)
	}

	if m.UploadBytes, err = meter.Int64Counter(
		"upload_bytes_total",
		metric.WithDescription("Total bytes of uploaded workbooks"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("upload_bytes_total: %w", err)
	}

	if m.ExportsTotal, err = meter.Int64Counter(
		"report_exports_total",
		metric.WithDescription("Total number of table downloads"),
	); err != nil {
		return nil, fmt.Errorf("report_exports_total: %w", err)
	}

	return m, nil
}

// RecordRender records one pipeline run
func (m *ReportMetrics) RecordRender(ctx context.Context, duration time.Duration, events int, err error) {
	if m == nil {
		return
	}

	status := attribute.String("status", "success")
	if err != nil {
		status = attribute.String("status", "failure")
		m.RenderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", fmt.Sprintf("%T", err))))
	}

	m.RendersTotal.Add(ctx, 1, metric.WithAttributes(status))
	m.RenderDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(status))
	if events > 0 {
		m.EventsProcessed.Add(ctx, int64(events))
	}
}

// RecordStage records the duration of one pipeline stage
func (m *ReportMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordUpload records an uploaded workbook
func (m *ReportMetrics) RecordUpload(ctx context.Context, kind string, size int) {
	if m == nil {
		return
	}
	m.UploadBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordExport records a table download
func (m *ReportMetrics) RecordExport(ctx context.Context, view, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("view", view),
		attribute.String("format", format),
	))
}
