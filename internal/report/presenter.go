package report

import (
	"astrasreport/internal/dataprocessing"
	"astrasreport/pkg/contracts/domain"
)

// Chart titles
const (
	MonthlyChartTitle      = "Monthly Distribution per Organization"
	ClusterChartTitle      = "Event Distribution per Cluster by Month (GPN)"
	OrganizationChartTitle = "Event Distribution per Organization by Month (GPN)"
)

// Presenter turns enriched events into dashboard charts and tables
type Presenter struct {
	fallback string
}

// NewPresenter creates a presenter; fallback is the organization group whose
// subset feeds the cluster and organization charts and pivot 2
func NewPresenter(fallback string) *Presenter {
	if fallback == "" {
		fallback = domain.DefaultFallbackOrganization
	}
	return &Presenter{fallback: fallback}
}

// Dashboard builds every view for one selection. Unspecified parts of sel
// default to everything observed.
func (p *Presenter) Dashboard(columns []string, events []domain.SourcingEvent, sel domain.Selection) domain.Dashboard {
	sel = dataprocessing.ResolveSelection(events, sel)
	filtered := dataprocessing.Filter(events, sel)
	subset := dataprocessing.FallbackSubset(filtered, p.fallback)

	d := domain.Dashboard{
		TotalEvents:   len(filtered),
		Selection:     sel,
		Options:       dataprocessing.Options(events),
		MonthlyChart:  MonthlyChart(dataprocessing.MonthlyCounts(filtered)),
		EventsTable:   EventsTable(columns, filtered),
		MonthOrgPivot: PivotTable(domain.ExportViewMonthOrg.FileName(), dataprocessing.PivotMonthByOrganization(filtered)),
	}

	if len(subset) > 0 {
		cluster := StackedChart(ClusterChartTitle, dataprocessing.ClusterByMonth(subset))
		org := StackedChart(OrganizationChartTitle, dataprocessing.OrganizationByMonth(subset))
		pivot := PivotTable(domain.ExportViewMonthCluster.FileName(), dataprocessing.PivotMonthByCluster(subset))
		d.ClusterChart = &cluster
		d.OrganizationChart = &org
		d.MonthClusterPivot = &pivot
	}

	return d
}

// View returns the table behind an export view; false when the view is absent
func View(d domain.Dashboard, view domain.ExportView) (domain.Table, bool) {
	switch view {
	case domain.ExportViewEvents:
		return d.EventsTable, true
	case domain.ExportViewMonthOrg:
		return d.MonthOrgPivot, true
	case domain.ExportViewMonthCluster:
		if d.MonthClusterPivot == nil {
			return domain.Table{}, false
		}
		return *d.MonthClusterPivot, true
	default:
		return domain.Table{}, false
	}
}
