package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"astrasreport/pkg/contracts/domain"
)

// TableWriter serializes a table to a byte stream
type TableWriter interface {
	Write(out io.Writer, table domain.Table) error
}

// Exporter picks the writer for a format
type Exporter struct {
	writers map[Format]TableWriter
}

// NewExporter creates an exporter with xlsx and BOM-prefixed CSV writers
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		writers: map[Format]TableWriter{
			FormatXLSX: NewXLSXWriter(logger),
			FormatCSV:  NewCSVWriter(true, logger),
		},
	}
}

// Export writes table to out in format
func (e *Exporter) Export(out io.Writer, table domain.Table, format Format) error {
	w, ok := e.writers[format]
	if !ok {
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err := w.Write(out, table); err != nil {
		return fmt.Errorf("failed to export %s as %s: %w", table.Name, format, err)
	}
	return nil
}

// Bytes returns the serialized table
func (e *Exporter) Bytes(table domain.Table, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, table, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
