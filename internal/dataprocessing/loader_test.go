package dataprocessing

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrasreport/internal/shared/testutil"
	"astrasreport/pkg/contracts/domain"
)

func TestLoader_LoadEvents(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader("", logger)

	data := testutil.Workbook(t, "Export",
		[]string{"ID", " Material ", "Name", "Organization", "Date of entry", "Status"},
		[][]any{
			{1, "Widget [12]", "Prod", "Acme", "01/03/2024", "Open"},
			{nil, nil, nil, nil, nil, nil},
			{2, "Gadget [99]", "TestRun", "Acme", "15/03/2024"},
		})

	sheet, err := loader.LoadEvents(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Export", sheet.SheetName)
	assert.Equal(t, []string{"ID", "Material", "Name", "Organization", "Date of entry", "Status"}, sheet.Columns)
	require.Len(t, sheet.Rows, 2)

	first := sheet.Rows[0]
	assert.Equal(t, "Widget [12]", first.Material)
	assert.Equal(t, "Prod", first.Name)
	assert.Equal(t, "Acme", first.Organization)
	assert.Equal(t, "01/03/2024", first.DateOfEntry)
	assert.Equal(t, []string{"1", "Widget [12]", "Prod", "Acme", "01/03/2024", "Open"}, first.Cells)

	// short rows are padded to the header width
	assert.Len(t, sheet.Rows[1].Cells, 6)
	assert.Equal(t, "", sheet.Rows[1].Cells[5])

	assert.True(t, handler.ContainsAttr("component", "loader"))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Loaded sourcing events")
}

func TestLoader_LoadEventsDateCells(t *testing.T) {
	loader := NewLoader("", nil)

	data := testutil.EventsWorkbook(t,
		[]any{"Widget [12]", "Prod", "Acme", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
	)

	sheet, err := loader.LoadEvents(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)

	date := ParseEntryDate(sheet.Rows[0].DateOfEntry)
	require.NotNil(t, date, "raw serial %q should parse", sheet.Rows[0].DateOfEntry)
	assert.Equal(t, time.March, date.Month())
	assert.Equal(t, 2024, date.Year())
}

func TestLoader_LoadEventsTypedValues(t *testing.T) {
	loader := NewLoader("", nil)

	deadline := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	data := testutil.Workbook(t, "Export",
		[]string{"Material", "Name", "Organization", "Date of entry", "Deadline", "Value", "Urgent"},
		[][]any{
			{"Widget [12]", "Prod", "Acme", "01/03/2024", deadline, 1234.5, true},
		})

	sheet, err := loader.LoadEvents(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)

	row := sheet.Rows[0]
	require.Len(t, row.Values, 7)
	assert.Equal(t, "Widget [12]", row.Values[0])
	assert.Equal(t, "01/03/2024", row.Values[3])

	got, ok := row.Values[4].(time.Time)
	require.True(t, ok, "deadline should load as a date, got %T %v", row.Values[4], row.Values[4])
	assert.True(t, deadline.Equal(got), "got %v", got)
	assert.Equal(t, 1234.5, row.Values[5])
	assert.Equal(t, true, row.Values[6])

	// raw text is kept for parsing
	assert.Equal(t, "1234.5", row.Cells[5])
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"dd/mm/yyyy", true},
		{"yyyy-mm-dd hh:mm", true},
		{"[h]:mm:ss", true},
		{"0.00", false},
		{"#,##0", false},
		{`#,##0 "days"`, false},
		{"[$EUR-407] #,##0.00", false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestLoader_LoadEventsErrors(t *testing.T) {
	loader := NewLoader("", nil)

	t.Run("malformed stream", func(t *testing.T) {
		_, err := loader.LoadEvents(bytes.NewReader([]byte("definitely not a workbook")))

		var malformed *MalformedFileError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, EventsFile, malformed.File)
		assert.Error(t, malformed.Unwrap())
	})

	t.Run("missing column", func(t *testing.T) {
		data := testutil.Workbook(t, "Export",
			[]string{"Material", "Name", "Organization"},
			[][]any{{"Widget [12]", "Prod", "Acme"}})

		_, err := loader.LoadEvents(bytes.NewReader(data))

		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, domain.ColumnDateOfEntry, missing.Column)
		assert.Equal(t, "Export", missing.Sheet)
	})

	t.Run("empty sheet", func(t *testing.T) {
		data := testutil.Workbook(t, "Export", nil, nil)

		_, err := loader.LoadEvents(bytes.NewReader(data))

		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, domain.ColumnMaterial, missing.Column)
	})
}

func TestLoader_LoadClusters(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader("", logger)

	data := testutil.ClustersWorkbook(t,
		[]any{12, "ClusterA"},
		[]any{12, "ClusterA"},
		[]any{"12.0", "ClusterA"},
		[]any{7, "ClusterB"},
		[]any{12, "ClusterC"},
		[]any{"n/a", "ClusterD"},
		[]any{nil, nil},
		[]any{9, nil},
	)

	mappings, err := loader.LoadClusters(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, mappings, 5)

	assert.Equal(t, int64(12), *mappings[0].Code)
	assert.Equal(t, "ClusterA", mappings[0].Cluster)
	assert.Equal(t, int64(7), *mappings[1].Code)
	assert.Equal(t, "ClusterB", mappings[1].Cluster)
	assert.Equal(t, int64(12), *mappings[2].Code)
	assert.Equal(t, "ClusterC", mappings[2].Cluster)
	assert.Nil(t, mappings[3].Code)
	assert.Equal(t, "ClusterD", mappings[3].Cluster)
	assert.Equal(t, int64(9), *mappings[4].Code)
	assert.Equal(t, "", mappings[4].Cluster)

	assert.True(t, handler.ContainsAttr("unique_pairs", int64(5)))
}

func TestLoader_LoadClustersErrors(t *testing.T) {
	t.Run("missing sheet", func(t *testing.T) {
		loader := NewLoader("", nil)
		data := testutil.Workbook(t, "Old Structure",
			[]string{domain.ColumnPurchasingCategory, domain.ColumnSupplyMarketCluster},
			[][]any{{12, "ClusterA"}})

		_, err := loader.LoadClusters(bytes.NewReader(data))

		var missing *MissingSheetError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, domain.DefaultClusterSheet, missing.Sheet)
		assert.Equal(t, ClustersFile, missing.File)
	})

	t.Run("configured sheet name", func(t *testing.T) {
		loader := NewLoader("Old Structure", nil)
		data := testutil.Workbook(t, "Old Structure",
			[]string{domain.ColumnPurchasingCategory, domain.ColumnSupplyMarketCluster},
			[][]any{{12, "ClusterA"}})

		mappings, err := loader.LoadClusters(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, mappings, 1)
	})

	t.Run("missing column", func(t *testing.T) {
		loader := NewLoader("", nil)
		data := testutil.Workbook(t, domain.DefaultClusterSheet,
			[]string{domain.ColumnPurchasingCategory, "Cluster"},
			[][]any{{12, "ClusterA"}})

		_, err := loader.LoadClusters(bytes.NewReader(data))

		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, domain.ColumnSupplyMarketCluster, missing.Column)
	})

	t.Run("malformed stream", func(t *testing.T) {
		loader := NewLoader("", nil)
		_, err := loader.LoadClusters(bytes.NewReader(nil))

		var malformed *MalformedFileError
		assert.True(t, errors.As(err, &malformed))
	})
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"12", int64Ptr(12)},
		{"12.0", int64Ptr(12)},
		{"-3", int64Ptr(-3)},
		{"12.5", nil},
		{"", nil},
		{"abc", nil},
		{"NaN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCode(tt.raw))
		})
	}
}

func int64Ptr(n int64) *int64 {
	return &n
}
