package dataprocessing

import (
	"astrasreport/pkg/contracts/domain"
)

// Options returns the organization groups observed in events, in first-appearance
// order, and all twelve months
func Options(events []domain.SourcingEvent) domain.FilterOptions {
	seen := make(map[string]bool)
	orgs := make([]string, 0)
	for _, e := range events {
		if seen[e.OrgGroup] {
			continue
		}
		seen[e.OrgGroup] = true
		orgs = append(orgs, e.OrgGroup)
	}
	return domain.FilterOptions{
		Organizations: orgs,
		Months:        AllMonths(),
	}
}

// DefaultSelection selects every observed organization group and every month
func DefaultSelection(events []domain.SourcingEvent) domain.Selection {
	opts := Options(events)
	return domain.Selection{
		Organizations: opts.Organizations,
		Months:        opts.Months,
	}
}

// ResolveSelection replaces unspecified (nil) parts of sel with the defaults
func ResolveSelection(events []domain.SourcingEvent, sel domain.Selection) domain.Selection {
	def := DefaultSelection(events)
	if sel.Organizations == nil {
		sel.Organizations = def.Organizations
	}
	if sel.Months == nil {
		sel.Months = def.Months
	}
	return sel
}

// Filter keeps events whose organization group and month name are both selected.
// An empty organization or month selection yields no events; events without a
// month never match.
func Filter(events []domain.SourcingEvent, sel domain.Selection) []domain.SourcingEvent {
	result := make([]domain.SourcingEvent, 0)
	if len(sel.Organizations) == 0 || len(sel.Months) == 0 {
		return result
	}

	orgs := toSet(sel.Organizations)
	months := toSet(sel.Months)

	for _, e := range events {
		if !e.HasMonth() {
			continue
		}
		if orgs[e.OrgGroup] && months[e.MonthName] {
			result = append(result, e)
		}
	}
	return result
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
