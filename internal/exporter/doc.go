// Package exporter serializes report tables for download.
//
// XLSXWriter produces a single-sheet workbook holding a header row followed by the
// table rows, with no other formatting. CSVWriter produces the same table as CSV,
// optionally prefixed with a UTF-8 BOM for spreadsheet applications.
//
// Example usage:
//
//	exp := exporter.NewExporter(logger)
//	data, err := exp.Bytes(table, exporter.FormatXLSX)
package exporter
