package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"astrasreport/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables as CSV
type CSVWriter struct {
	bom    bool
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer. With bom set the output starts with a UTF-8 BOM
// so spreadsheet applications detect the encoding.
func NewCSVWriter(bom bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{bom: bom, logger: logger}
}

// Write writes the header row followed by every table row
func (w *CSVWriter) Write(out io.Writer, table domain.Table) error {
	w.logger.Debug("Writing CSV table",
		slog.String("table", table.Name),
		slog.Int("record_count", len(table.Rows)))

	if w.bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = CellText(row[j])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
