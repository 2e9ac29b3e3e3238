package domain

import (
	"time"
)

// Column names expected in the uploaded workbooks
const (
	ColumnMaterial     = "Material"
	ColumnName         = "Name"
	ColumnOrganization = "Organization"
	ColumnDateOfEntry  = "Date of entry"

	ColumnPurchasingCategory  = "Purchasing Category (PC)"
	ColumnSupplyMarketCluster = "Supply Market Cluster (SMC)"
)

// Derived column names added to the sourcing events
const (
	ColumnGroups        = "Groups"
	ColumnOrganization1 = "Organization1"
	ColumnMonth         = "month"
	ColumnMonthName     = "month_name"
)

// DashboardTitle heads the dashboard page
const DashboardTitle = "My Request Astras Source Reporting Dashboard"

// Defaults for organization normalization
const (
	DefaultFallbackOrganization = "Phoenix Contact - GPN"
	DefaultClusterSheet         = "New Structure"

	// BlankLabel names the cross-tab bucket of events with no value on that
	// axis. A cluster or organization literally named "(blank)" is counted in
	// the same bucket.
	BlankLabel = "(blank)"

	// BlankCluster labels events that have no cluster
	BlankCluster = BlankLabel
	// BlankOrganization labels events whose organization cell is empty
	BlankOrganization = BlankLabel
)

// DefaultAllowedOrganizations are kept verbatim by normalization
var DefaultAllowedOrganizations = []string{
	"PHOENIX CONTACT E-Mobility GmbH",
	"Phoenix Contact GmbH & Co. KG - Werkzeugbau",
}

// EventSheet is the raw first sheet of the sourcing events workbook
type EventSheet struct {
	SheetName string     `json:"sheet_name"`
	Columns   []string   `json:"columns"`
	Rows      []EventRow `json:"rows"`
}

// EventRow is a single raw sourcing event.
// Cells and Values are aligned with EventSheet.Columns. Cells holds the raw
// text of each cell; Values holds the typed value carried into exports
// (time.Time for date-formatted cells, float64 for numbers, bool, string).
type EventRow struct {
	Cells        []string `json:"cells"`
	Values       []any    `json:"values,omitempty"`
	Material     string   `json:"material"`
	Name         string   `json:"name"`
	Organization string   `json:"organization"`
	DateOfEntry  string   `json:"date_of_entry"`
}

// ClusterMapping maps a purchasing category code to a supply market cluster.
// Code is nil when the mapping cell did not hold an integer.
type ClusterMapping struct {
	Code    *int64 `json:"code"`
	Cluster string `json:"cluster"`
}

// SourcingEvent is an event row enriched by the transformer
type SourcingEvent struct {
	Row       EventRow   `json:"row"`
	Category  *int64     `json:"category"`
	Cluster   *string    `json:"cluster"`
	OrgGroup  string     `json:"org_group"`
	EntryDate *time.Time `json:"entry_date"`
	Month     int        `json:"month"`
	MonthName string     `json:"month_name"`
}

// HasMonth reports whether the event carries a parsed entry date
func (e SourcingEvent) HasMonth() bool {
	return e.Month >= 1 && e.Month <= 12
}

// ClusterLabel returns the cluster or the blank bucket label
func (e SourcingEvent) ClusterLabel() string {
	if e.Cluster == nil || *e.Cluster == "" {
		return BlankCluster
	}
	return *e.Cluster
}

// Selection narrows the enriched events.
// A nil slice means "not specified"; an empty non-nil slice selects nothing.
type Selection struct {
	Organizations []string `json:"organizations" validate:"omitempty,dive,max=512"`
	Months        []string `json:"months" validate:"omitempty,dive,month"`
}

// FilterOptions lists the values a user can choose from
type FilterOptions struct {
	Organizations []string `json:"organizations"`
	Months        []string `json:"months"`
}

// OrgMonthCount is one row of the monthly counts per organization
type OrgMonthCount struct {
	Organization string `json:"organization"`
	Month        string `json:"month"`
	Count        int    `json:"count"`
}

// CrossTab is a count cross-tabulation
type CrossTab struct {
	RowLabels    []string `json:"row_labels"`
	ColumnLabels []string `json:"column_labels"`
	Counts       [][]int  `json:"counts"`
}

// Total returns the sum of all cells
func (c CrossTab) Total() int {
	total := 0
	for _, row := range c.Counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// Table is a rectangular view that can be displayed or exported
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ChartSeries is one trace of a bar chart
type ChartSeries struct {
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

// ChartSpec describes a bar chart for the client renderer
type ChartSpec struct {
	Title       string        `json:"title"`
	Orientation string        `json:"orientation"`
	BarMode     string        `json:"barmode"`
	Categories  []string      `json:"categories"`
	Series      []ChartSeries `json:"series"`
	TextLabels  bool          `json:"text_labels"`
}

// Dashboard is everything shown for one selection
type Dashboard struct {
	TotalEvents       int           `json:"total_events"`
	Selection         Selection     `json:"selection"`
	Options           FilterOptions `json:"options"`
	MonthlyChart      ChartSpec     `json:"monthly_chart"`
	ClusterChart      *ChartSpec    `json:"cluster_chart,omitempty"`
	OrganizationChart *ChartSpec    `json:"organization_chart,omitempty"`
	EventsTable       Table         `json:"events_table"`
	MonthOrgPivot     Table         `json:"month_org_pivot"`
	MonthClusterPivot *Table        `json:"month_cluster_pivot,omitempty"`
}

// ExportView names a downloadable table
type ExportView string

const (
	ExportViewEvents       ExportView = "events"
	ExportViewMonthOrg     ExportView = "pivot-month-organization"
	ExportViewMonthCluster ExportView = "pivot-month-cluster"
)

// FileName returns the download name of the view
func (v ExportView) FileName() string {
	switch v {
	case ExportViewEvents:
		return "export_data"
	case ExportViewMonthOrg:
		return "pivot_table1"
	case ExportViewMonthCluster:
		return "pivot_table2"
	default:
		return string(v)
	}
}

// Valid reports whether v names a known view
func (v ExportView) Valid() bool {
	switch v {
	case ExportViewEvents, ExportViewMonthOrg, ExportViewMonthCluster:
		return true
	}
	return false
}
