package report

import (
	"astrasreport/pkg/contracts/domain"
)

// derivedColumns are appended to the raw event columns in the events table
var derivedColumns = []string{
	domain.ColumnPurchasingCategory,
	domain.ColumnGroups,
	domain.ColumnOrganization1,
	domain.ColumnMonth,
	domain.ColumnMonthName,
}

// EventsTable lays out filtered events: every raw column, with the entry date
// replaced by the parsed date, followed by the derived columns
func EventsTable(columns []string, events []domain.SourcingEvent) domain.Table {
	derived := make(map[string]bool, len(derivedColumns))
	for _, c := range derivedColumns {
		derived[c] = true
	}

	raw := make([]int, 0, len(columns))
	header := make([]string, 0, len(columns)+len(derivedColumns))
	dateCol := -1
	for i, c := range columns {
		if derived[c] {
			continue
		}
		if c == domain.ColumnDateOfEntry && dateCol < 0 {
			dateCol = i
		}
		raw = append(raw, i)
		header = append(header, c)
	}
	header = append(header, derivedColumns...)

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		row := make([]any, 0, len(header))
		for _, i := range raw {
			switch {
			case i == dateCol:
				row = append(row, e.EntryDate)
			case i < len(e.Row.Values):
				row = append(row, e.Row.Values[i])
			case i < len(e.Row.Cells):
				row = append(row, e.Row.Cells[i])
			default:
				row = append(row, "")
			}
		}

		var month any
		if e.HasMonth() {
			month = e.Month
		}
		row = append(row, e.Category, e.Cluster, e.OrgGroup, month, e.MonthName)
		rows = append(rows, row)
	}

	return domain.Table{
		Name:    domain.ExportViewEvents.FileName(),
		Columns: header,
		Rows:    rows,
	}
}

// PivotTable lays out a month pivot with the month name as the first column
func PivotTable(name string, tab domain.CrossTab) domain.Table {
	header := make([]string, 0, len(tab.ColumnLabels)+1)
	header = append(header, domain.ColumnMonthName)
	header = append(header, tab.ColumnLabels...)

	rows := make([][]any, len(tab.RowLabels))
	for i, label := range tab.RowLabels {
		row := make([]any, 0, len(header))
		row = append(row, label)
		for _, n := range tab.Counts[i] {
			row = append(row, n)
		}
		rows[i] = row
	}

	return domain.Table{Name: name, Columns: header, Rows: rows}
}
