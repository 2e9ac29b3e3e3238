package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// DateTimeLayout is used for date cells in text output
const DateTimeLayout = "2006-01-02 15:04:05"

// Format is an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the format named s; an empty string means xlsx
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// formatFloat formats a float64 with the shortest exact representation
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// CellText renders a table cell as text. nil becomes an empty string.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return formatInt(int64(val))
	case int64:
		return formatInt(val)
	case *int64:
		if val == nil {
			return ""
		}
		return formatInt(*val)
	case float64:
		return formatFloat(val)
	case time.Time:
		return val.Format(DateTimeLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(DateTimeLayout)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	default:
		return fmt.Sprint(val)
	}
}
