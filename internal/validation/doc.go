// Package validation checks spreadsheet inputs and output locations before
// the reporting pipeline touches them.
package validation
