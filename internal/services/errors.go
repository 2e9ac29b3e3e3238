package services

import "errors"

// Report service errors
var (
	ErrUnknownView   = errors.New("unknown export view")
	ErrViewEmpty     = errors.New("export view has no data for this selection")
	ErrEmptyUpload   = errors.New("uploaded file is empty")
	ErrInvalidUpload = errors.New("uploaded file is not an xlsx workbook")
)
