package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"astrasreport/pkg/contracts/domain"
)

// EventColumns is the minimal header of a sourcing events workbook
var EventColumns = []string{
	domain.ColumnMaterial,
	domain.ColumnName,
	domain.ColumnOrganization,
	domain.ColumnDateOfEntry,
}

// Workbook builds an in-memory xlsx with a single sheet holding header and rows
func Workbook(t *testing.T, sheet string, header []string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
	} else {
		sheet = f.GetSheetName(0)
	}

	if header != nil {
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to address row %d: %v", i, err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("failed to write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}

// EventsWorkbook builds a sourcing events workbook using EventColumns.
// Each row is Material, Name, Organization, Date of entry.
func EventsWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	return Workbook(t, "Export", EventColumns, rows)
}

// ClustersWorkbook builds a market structure workbook with the mapping sheet.
// Each row is Purchasing Category (PC), Supply Market Cluster (SMC).
func ClustersWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	return Workbook(t, domain.DefaultClusterSheet,
		[]string{domain.ColumnPurchasingCategory, domain.ColumnSupplyMarketCluster}, rows)
}

// ReadWorkbook returns every row of the first sheet of an xlsx payload
func ReadWorkbook(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 {
		t.Fatalf("expected a single sheet, got %v", sheets)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	return sheets[0], rows
}
