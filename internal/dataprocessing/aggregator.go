package dataprocessing

import (
	"sort"

	"astrasreport/pkg/contracts/domain"
)

// MonthlyCounts groups events by organization group and month name.
// Zero combinations are omitted; rows are ordered by organization then calendar month.
func MonthlyCounts(events []domain.SourcingEvent) []domain.OrgMonthCount {
	type key struct {
		org   string
		month int
	}
	counts := make(map[key]int)
	for _, e := range events {
		if !e.HasMonth() {
			continue
		}
		counts[key{org: e.OrgGroup, month: e.Month}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].org != keys[j].org {
			return keys[i].org < keys[j].org
		}
		return keys[i].month < keys[j].month
	})

	result := make([]domain.OrgMonthCount, 0, len(keys))
	for _, k := range keys {
		result = append(result, domain.OrgMonthCount{
			Organization: k.org,
			Month:        MonthName(k.month),
			Count:        counts[k],
		})
	}
	return result
}

// FallbackSubset returns the events whose organization group is the fallback label
func FallbackSubset(events []domain.SourcingEvent, fallback string) []domain.SourcingEvent {
	subset := make([]domain.SourcingEvent, 0)
	for _, e := range events {
		if e.OrgGroup == fallback {
			subset = append(subset, e)
		}
	}
	return subset
}

// ClusterByMonth cross-tabulates cluster label against month.
// Events without a cluster are counted under domain.BlankCluster, which sorts last.
func ClusterByMonth(events []domain.SourcingEvent) domain.CrossTab {
	return byMonthColumns(events, func(e domain.SourcingEvent) string {
		return e.ClusterLabel()
	})
}

// OrganizationByMonth cross-tabulates the verbatim organization against month.
// Empty organizations are counted under domain.BlankOrganization, which sorts last.
func OrganizationByMonth(events []domain.SourcingEvent) domain.CrossTab {
	return byMonthColumns(events, func(e domain.SourcingEvent) string {
		if e.Row.Organization == "" {
			return domain.BlankOrganization
		}
		return e.Row.Organization
	})
}

// PivotMonthByOrganization counts events per month (all twelve rows) and organization group
func PivotMonthByOrganization(events []domain.SourcingEvent) domain.CrossTab {
	return byMonthRows(events, func(e domain.SourcingEvent) string {
		return e.OrgGroup
	})
}

// PivotMonthByCluster counts events per month (all twelve rows) and cluster label
func PivotMonthByCluster(events []domain.SourcingEvent) domain.CrossTab {
	return byMonthRows(events, func(e domain.SourcingEvent) string {
		return e.ClusterLabel()
	})
}

// byMonthColumns builds a table with one row per label and one column per month
func byMonthColumns(events []domain.SourcingEvent, label func(domain.SourcingEvent) string) domain.CrossTab {
	counts, labels := countByLabelAndMonth(events, label)

	tab := domain.CrossTab{
		RowLabels:    labels,
		ColumnLabels: AllMonths(),
		Counts:       make([][]int, len(labels)),
	}
	for i, l := range labels {
		row := make([]int, len(MonthOrder))
		for m := range MonthOrder {
			row[m] = counts[l][m+1]
		}
		tab.Counts[i] = row
	}
	return tab
}

// byMonthRows builds a table with one row per month and one column per label
func byMonthRows(events []domain.SourcingEvent, label func(domain.SourcingEvent) string) domain.CrossTab {
	counts, labels := countByLabelAndMonth(events, label)

	tab := domain.CrossTab{
		RowLabels:    AllMonths(),
		ColumnLabels: labels,
		Counts:       make([][]int, len(MonthOrder)),
	}
	for m := range MonthOrder {
		row := make([]int, len(labels))
		for i, l := range labels {
			row[i] = counts[l][m+1]
		}
		tab.Counts[m] = row
	}
	return tab
}

// countByLabelAndMonth tallies dated events per label and month number and returns
// the labels sorted with the blank bucket last
func countByLabelAndMonth(events []domain.SourcingEvent, label func(domain.SourcingEvent) string) (map[string]map[int]int, []string) {
	counts := make(map[string]map[int]int)
	for _, e := range events {
		if !e.HasMonth() {
			continue
		}
		l := label(e)
		if counts[l] == nil {
			counts[l] = make(map[int]int)
		}
		counts[l][e.Month]++
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i] == domain.BlankLabel || labels[j] == domain.BlankLabel {
			return labels[j] == domain.BlankLabel && labels[i] != domain.BlankLabel
		}
		return labels[i] < labels[j]
	})
	return counts, labels
}
