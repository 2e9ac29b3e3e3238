package dataprocessing

import (
	"time"
)

// MonthOrder is the fixed calendar ordering of month names
var MonthOrder = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English month name for 1..12, or "" otherwise
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

// MonthIndex returns the 0-based calendar position of a month name, or -1
func MonthIndex(name string) int {
	for i, m := range MonthOrder {
		if m == name {
			return i
		}
	}
	return -1
}

// IsMonthName reports whether name is one of the twelve calendar months
func IsMonthName(name string) bool {
	return MonthIndex(name) >= 0
}

// AllMonths returns a fresh copy of MonthOrder
func AllMonths() []string {
	months := make([]string, len(MonthOrder))
	copy(months, MonthOrder)
	return months
}
