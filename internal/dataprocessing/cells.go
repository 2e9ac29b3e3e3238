package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// isoDateLayouts are the layouts of cells stored with the ISO 8601 date type
var isoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// cellReader resolves the typed value of raw cells on one sheet.
// Number formats are looked up once per style.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	c := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c
}

// Values returns the typed values of a padded data row.
// rowNum is the 1-based sheet row.
func (c *cellReader) Values(cells []string, rowNum int) []any {
	values := make([]any, len(cells))
	for i, raw := range cells {
		values[i] = c.value(raw, i+1, rowNum)
	}
	return values
}

// value returns time.Time for date cells and date-formatted numbers, float64
// for other numbers, bool for boolean cells and the raw text otherwise
func (c *cellReader) value(raw string, col, row int) any {
	if raw == "" {
		return raw
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := c.f.GetCellType(c.sheet, axis)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1"
	case excelize.CellTypeDate:
		for _, layout := range isoDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
		return raw
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if c.isDate(axis) && n >= 0 {
			if t, err := excelize.ExcelDateToTime(n, c.date1904); err == nil {
				return t
			}
		}
		return n
	default:
		return raw
	}
}

func (c *cellReader) isDate(axis string) bool {
	styleID, err := c.f.GetCellStyle(c.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if date, ok := c.dateStyles[styleID]; ok {
		return date
	}

	date := false
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			date = isDateFormatCode(*style.CustomNumFmt)
		} else {
			date = isBuiltInDateFormat(style.NumFmt)
		}
	}
	c.dateStyles[styleID] = date
	return date
}

// isBuiltInDateFormat reports whether a built-in number format id renders a
// date or time, including the CJK date formats
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code holds date or time
// tokens outside quoted literals and bracketed sections
func isDateFormatCode(code string) bool {
	var (
		quoted  bool
		bracket bool
		escaped bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case strings.ContainsRune("ydmhs", r):
			return true
		}
	}
	return false
}
