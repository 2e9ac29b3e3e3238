package report

import (
	"astrasreport/internal/dataprocessing"
	"astrasreport/pkg/contracts/domain"
)

// MonthlyChart builds the grouped bar chart: months on the x axis in calendar
// order, one series per organization group, missing months as zero
func MonthlyChart(counts []domain.OrgMonthCount) domain.ChartSpec {
	spec := domain.ChartSpec{
		Title:       MonthlyChartTitle,
		Orientation: "v",
		BarMode:     "group",
		Categories:  dataprocessing.AllMonths(),
		Series:      make([]domain.ChartSeries, 0),
		TextLabels:  true,
	}

	index := make(map[string]int)
	for _, c := range counts {
		i, ok := index[c.Organization]
		if !ok {
			i = len(spec.Series)
			index[c.Organization] = i
			spec.Series = append(spec.Series, domain.ChartSeries{
				Name:   c.Organization,
				Values: make([]int, len(dataprocessing.MonthOrder)),
			})
		}
		if m := dataprocessing.MonthIndex(c.Month); m >= 0 {
			spec.Series[i].Values[m] += c.Count
		}
	}
	return spec
}

// StackedChart builds a horizontal stacked bar chart from a label-by-month
// cross-tab: one bar per row label, one stacked series per month
func StackedChart(title string, tab domain.CrossTab) domain.ChartSpec {
	spec := domain.ChartSpec{
		Title:       title,
		Orientation: "h",
		BarMode:     "stack",
		Categories:  append([]string(nil), tab.RowLabels...),
		Series:      make([]domain.ChartSeries, len(tab.ColumnLabels)),
	}
	for j, month := range tab.ColumnLabels {
		values := make([]int, len(tab.RowLabels))
		for i := range tab.RowLabels {
			values[i] = tab.Counts[i][j]
		}
		spec.Series[j] = domain.ChartSeries{Name: month, Values: values}
	}
	return spec
}
