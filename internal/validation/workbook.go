package validation

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// WorkbookExtension is the only accepted spreadsheet extension
const WorkbookExtension = ".xlsx"

// xlsx workbooks are zip archives
var zipMagic = []byte("PK\x03\x04")

// Workbook validation errors
var (
	ErrEmptyWorkbook    = errors.New("workbook is empty")
	ErrNotWorkbook      = errors.New("file is not an xlsx workbook")
	ErrTemporaryFile    = errors.New("file is a temporary Excel lock file")
	ErrUnreadablePath   = errors.New("path is not a readable file")
	ErrUnwritableOutput = errors.New("output directory is not writable")
)

// FileValidator checks workbooks before they reach the loader
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateWorkbook checks an uploaded workbook's name and content
func (v *FileValidator) ValidateWorkbook(name string, data []byte) error {
	if len(data) == 0 {
		v.logger.Warn("Rejected empty workbook", slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrEmptyWorkbook, name)
	}
	if isTemporary(name) {
		v.logger.Warn("Rejected temporary Excel file", slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, name)
	}
	if !bytes.HasPrefix(data, zipMagic) {
		v.logger.Warn("Rejected non-xlsx upload",
			slog.String("file", name),
			slog.Int("size", len(data)))
		return fmt.Errorf("%w: %s", ErrNotWorkbook, name)
	}
	return nil
}

// ValidateWorkbookFile checks that path names a readable .xlsx file
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s does not exist", ErrUnreadablePath, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrUnreadablePath, path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%w: %s is a directory", ErrUnreadablePath, path)
	}

	if isTemporary(path) {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != WorkbookExtension {
		v.logger.Error("File is not an xlsx workbook",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s (extension: %q)", ErrNotWorkbook, path, ext)
	}

	v.logger.Debug("Workbook file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and accepts new files
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrUnwritableOutput, dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrUnwritableOutput, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// isTemporary reports Excel's "~$" lock files
func isTemporary(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}
