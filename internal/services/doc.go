// Package services holds the business logic behind the HTTP handlers and the CLI.
//
// ReportService runs the sourcing-events pipeline: both workbooks are parsed
// concurrently, the events are enriched, then filtered, aggregated and turned
// into a dashboard or a downloadable table. Every call recomputes from the
// uploaded bytes; the session store is the only state.
//
//	svc := services.NewReportService(cfg.Report, store, metrics, logger)
//	dashboard, err := svc.Render(ctx, eventsXLSX, clustersXLSX, domain.Selection{})
//
// HealthService reports liveness, readiness and version information.
//
// Errors from the loader (dataprocessing.MissingInputError and friends) and
// session.ErrNotFound are returned unwrapped so the transport layer can map
// them with errors.As.
package services
