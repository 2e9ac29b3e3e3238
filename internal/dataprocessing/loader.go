package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"astrasreport/pkg/contracts/domain"
)

// Source file labels used in errors and logs
const (
	EventsFile   = "sourcing events file"
	ClustersFile = "supplier market structure file"
)

// requiredEventColumns must be present in the first sheet of the events workbook
var requiredEventColumns = []string{
	domain.ColumnMaterial,
	domain.ColumnName,
	domain.ColumnOrganization,
	domain.ColumnDateOfEntry,
}

// Loader reads the two uploaded workbooks into raw record sets
type Loader struct {
	clusterSheet string
	logger       *slog.Logger
}

// NewLoader creates a loader reading cluster mappings from clusterSheet
func NewLoader(clusterSheet string, logger *slog.Logger) *Loader {
	if clusterSheet == "" {
		clusterSheet = domain.DefaultClusterSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		clusterSheet: clusterSheet,
		logger:       logger.With(slog.String("component", "loader")),
	}
}

// LoadEvents reads the first sheet of the sourcing events workbook
func (l *Loader) LoadEvents(r io.Reader) (*domain.EventSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedFileError{File: EventsFile, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MissingSheetError{File: EventsFile, Sheet: "first sheet"}
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedFileError{File: EventsFile, Err: fmt.Errorf("failed to read sheet %q: %w", sheetName, err)}
	}

	header, data := splitHeader(rows)
	index, err := columnIndex(header, requiredEventColumns, EventsFile, sheetName)
	if err != nil {
		return nil, err
	}

	sheet := &domain.EventSheet{
		SheetName: sheetName,
		Columns:   header,
		Rows:      make([]domain.EventRow, 0, len(data)),
	}

	// raw text drives parsing; typed values are carried into exports
	typed := newCellReader(f, sheetName)
	for i, row := range data {
		if blankRow(row) {
			continue
		}
		cells := padRow(row, len(header))
		sheet.Rows = append(sheet.Rows, domain.EventRow{
			Cells:        cells,
			Values:       typed.Values(cells, i+2),
			Material:     cells[index[domain.ColumnMaterial]],
			Name:         cells[index[domain.ColumnName]],
			Organization: cells[index[domain.ColumnOrganization]],
			DateOfEntry:  strings.TrimSpace(cells[index[domain.ColumnDateOfEntry]]),
		})
	}

	l.logger.Info("Loaded sourcing events",
		slog.String("sheet_name", sheetName),
		slog.Int("columns", len(header)),
		slog.Int("rows", len(sheet.Rows)))

	return sheet, nil
}

// LoadClusters reads the cluster mapping sheet and deduplicates (code, cluster) pairs
func (l *Loader) LoadClusters(r io.Reader) ([]domain.ClusterMapping, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedFileError{File: ClustersFile, Err: err}
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(l.clusterSheet); err != nil || idx < 0 {
		return nil, &MissingSheetError{File: ClustersFile, Sheet: l.clusterSheet}
	}

	rows, err := f.GetRows(l.clusterSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedFileError{File: ClustersFile, Err: fmt.Errorf("failed to read sheet %q: %w", l.clusterSheet, err)}
	}

	header, data := splitHeader(rows)
	index, err := columnIndex(header, []string{domain.ColumnPurchasingCategory, domain.ColumnSupplyMarketCluster}, ClustersFile, l.clusterSheet)
	if err != nil {
		return nil, err
	}
	codeCol := index[domain.ColumnPurchasingCategory]
	clusterCol := index[domain.ColumnSupplyMarketCluster]

	type pairKey struct {
		code    string
		cluster string
	}
	seen := make(map[pairKey]bool)
	mappings := make([]domain.ClusterMapping, 0, len(data))
	total := 0

	for _, row := range data {
		cells := padRow(row, len(header))
		rawCode := strings.TrimSpace(cells[codeCol])
		cluster := cells[clusterCol]
		if rawCode == "" && strings.TrimSpace(cluster) == "" {
			continue
		}
		total++

		code := parseCode(rawCode)
		key := pairKey{cluster: cluster}
		if code != nil {
			key.code = strconv.FormatInt(*code, 10)
		} else {
			key.code = "\x00" + rawCode
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		mappings = append(mappings, domain.ClusterMapping{Code: code, Cluster: cluster})
	}

	l.logger.Info("Loaded cluster mapping",
		slog.String("sheet_name", l.clusterSheet),
		slog.Int("rows", total),
		slog.Int("unique_pairs", len(mappings)))

	return mappings, nil
}

// splitHeader separates the header row from data rows
func splitHeader(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}
	return header, rows[1:]
}

// columnIndex maps each required column to its first position in header
func columnIndex(header, required []string, file, sheet string) (map[string]int, error) {
	index := make(map[string]int, len(required))
	for _, name := range required {
		for i, h := range header {
			if h == name {
				index[name] = i
				break
			}
		}
		if _, ok := index[name]; !ok {
			return nil, &MissingColumnError{File: file, Sheet: sheet, Column: name}
		}
	}
	return index, nil
}

// padRow returns a copy of row with exactly n cells
func padRow(row []string, n int) []string {
	cells := make([]string, n)
	copy(cells, row)
	return cells
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCode reads an integer category code, accepting integral floats like "12.0"
func parseCode(raw string) *int64 {
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	n := int64(f)
	return &n
}
