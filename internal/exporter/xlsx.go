package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"astrasreport/pkg/contracts/domain"
)

// SheetName is the name of the single sheet in every exported workbook
const SheetName = "Sheet1"

// XLSXWriter writes tables as single-sheet workbooks with a header row
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Write serializes table into a workbook and writes it to out
func (w *XLSXWriter) Write(out io.Writer, table domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != SheetName {
		if err := f.SetSheetName(sheet, SheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		values := make([]any, len(table.Columns))
		for j := range values {
			if j < len(row) {
				values[j] = cellValue(row[j])
			}
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("Wrote workbook",
		slog.String("table", table.Name),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))
	return nil
}

// cellValue unwraps pointer cells so excelize stores typed values
func cellValue(v any) any {
	switch val := v.(type) {
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}
