package dataprocessing

import (
	"fmt"
	"strings"
)

// MissingInputError is returned when one or both workbooks were not supplied
type MissingInputError struct {
	Missing []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input files: %s", strings.Join(e.Missing, ", "))
}

// Prompt is the message shown to the user
func (e *MissingInputError) Prompt() string {
	return "Please upload both Excel files to proceed."
}

// MissingSheetError is returned when a required sheet is absent from a workbook
type MissingSheetError struct {
	File  string
	Sheet string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("%s: sheet %q not found", e.File, e.Sheet)
}

// MalformedFileError is returned when a stream is not a readable workbook
type MalformedFileError struct {
	File string
	Err  error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("%s: not a valid spreadsheet: %v", e.File, e.Err)
}

func (e *MalformedFileError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned when an expected column is absent after load
type MissingColumnError struct {
	File   string
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: sheet %q has no column %q", e.File, e.Sheet, e.Column)
}
