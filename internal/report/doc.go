// Package report presents filtered sourcing events as a dashboard: the total
// count, chart specifications for the browser renderer and the three tables
// that can be downloaded.
package report
