// Package app wires the reporting server together.
//
// NewApplication loads configuration, builds the logger and telemetry
// providers, creates the in-memory session store and the report service,
// and mounts the HTTP routes:
//
//	/api/health      health, readiness and liveness probes
//	/api/version     build information
//	/api/sessions    upload, filter, dashboard and export endpoints
//	/api/client-log  browser log sink for the dashboard page
//	/                upload page
//	/dashboard/{id}  rendered dashboard
//	/metrics         Prometheus scrape endpoint when enabled
//
// Run blocks until SIGINT or SIGTERM, then shuts down the server, stops the
// session janitor and flushes telemetry.
package app
