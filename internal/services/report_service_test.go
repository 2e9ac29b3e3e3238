package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"astrasreport/internal/config"
	"astrasreport/internal/dataprocessing"
	"astrasreport/internal/exporter"
	"astrasreport/internal/infrastructure"
	"astrasreport/internal/session"
	"astrasreport/internal/shared/testutil"
	"astrasreport/pkg/contracts/domain"
)

const gpn = domain.DefaultFallbackOrganization

func sampleWorkbooks(t *testing.T) ([]byte, []byte) {
	t.Helper()
	events := testutil.EventsWorkbook(t,
		[]any{"Widget [12]", "Prod", "Acme", "01/03/2024"},
		[]any{"Gadget [99]", "TestRun", "Acme", "15/03/2024"},
	)
	clusters := testutil.ClustersWorkbook(t,
		[]any{12, "ClusterA"},
	)
	return events, clusters
}

func newTestService(t *testing.T) (*ReportService, *session.MemoryStore) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	store := session.NewMemoryStore(logger)
	return NewReportService(config.Default().Report, store, nil, logger), store
}

func TestReportService_Render(t *testing.T) {
	svc, _ := newTestService(t)
	events, clusters := sampleWorkbooks(t)

	d, err := svc.Render(context.Background(), events, clusters, domain.Selection{})
	require.NoError(t, err)

	assert.Equal(t, 1, d.TotalEvents)
	assert.Equal(t, []string{gpn}, d.Selection.Organizations)
	assert.Equal(t, dataprocessing.MonthOrder, d.Selection.Months)

	require.Len(t, d.EventsTable.Rows, 1)
	row := d.EventsTable.Rows[0]
	assert.Equal(t, "Widget [12]", row[0])

	require.Len(t, d.MonthOrgPivot.Rows, 12)
	assert.Equal(t, []any{"March", 1}, d.MonthOrgPivot.Rows[2])

	require.NotNil(t, d.MonthClusterPivot)
	assert.Equal(t, []string{domain.ColumnMonthName, "ClusterA"}, d.MonthClusterPivot.Columns)
	require.NotNil(t, d.ClusterChart)
}

func TestReportService_RenderMissingInput(t *testing.T) {
	svc, _ := newTestService(t)
	_, clusters := sampleWorkbooks(t)

	tests := []struct {
		name     string
		events   []byte
		clusters []byte
		missing  []string
	}{
		{"both missing", nil, nil, []string{dataprocessing.EventsFile, dataprocessing.ClustersFile}},
		{"events missing", nil, clusters, []string{dataprocessing.EventsFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Render(context.Background(), tt.events, tt.clusters, domain.Selection{})

			var missing *dataprocessing.MissingInputError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.missing, missing.Missing)
		})
	}
}

func TestReportService_RenderLoaderErrors(t *testing.T) {
	svc, _ := newTestService(t)
	events, _ := sampleWorkbooks(t)
	wrongSheet := testutil.Workbook(t, "Old Structure",
		[]string{domain.ColumnPurchasingCategory, domain.ColumnSupplyMarketCluster},
		[][]any{{12, "ClusterA"}})

	_, err := svc.Render(context.Background(), events, wrongSheet, domain.Selection{})

	var sheetErr *dataprocessing.MissingSheetError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, domain.DefaultClusterSheet, sheetErr.Sheet)

	_, err = svc.Render(context.Background(), []byte("PK\x03\x04 not really"), wrongSheet, domain.Selection{})
	var malformed *dataprocessing.MalformedFileError
	assert.True(t, errors.As(err, &malformed) || errors.As(err, &sheetErr))
}

func TestReportService_SessionFlow(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	events, clusters := sampleWorkbooks(t)

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count())

	_, err = svc.Upload(ctx, sess.ID, session.FileEvents, "events.xlsx", events)
	require.NoError(t, err)

	_, err = svc.Dashboard(ctx, sess.ID, domain.Selection{})
	var missing *dataprocessing.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{dataprocessing.ClustersFile}, missing.Missing)

	updated, err := svc.Upload(ctx, sess.ID, session.FileClusters, "clusters.xlsx", clusters)
	require.NoError(t, err)
	assert.Empty(t, updated.Missing())

	filters, err := svc.Filters(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{gpn}, filters.Options.Organizations)
	assert.Equal(t, dataprocessing.MonthOrder, filters.Defaults.Months)
	assert.Equal(t, 1, filters.Total)

	d, err := svc.Dashboard(ctx, sess.ID, domain.Selection{Months: []string{"January"}})
	require.NoError(t, err)
	assert.Zero(t, d.TotalEvents)
	assert.Nil(t, d.MonthClusterPivot)

	require.NoError(t, svc.DeleteSession(ctx, sess.ID))
	_, err = svc.Filters(ctx, sess.ID)
	assert.True(t, errors.Is(err, session.ErrNotFound))
}

func TestReportService_Upload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.Upload(ctx, sess.ID, session.FileEvents, "empty.xlsx", nil)
	assert.True(t, errors.Is(err, ErrEmptyUpload))

	_, err = svc.Upload(ctx, sess.ID, session.FileEvents, "notes.txt", []byte("hello"))
	assert.True(t, errors.Is(err, ErrInvalidUpload))

	events, _ := sampleWorkbooks(t)
	_, err = svc.Upload(ctx, sess.ID, session.FileEvents, "~$events.xlsx", events)
	assert.True(t, errors.Is(err, ErrInvalidUpload))

	_, err = svc.Upload(ctx, "no-such-session", session.FileEvents, "events.xlsx", events)
	assert.True(t, errors.Is(err, session.ErrNotFound))
}

func TestReportService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	events, clusters := sampleWorkbooks(t)

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, sess.ID, session.FileEvents, "events.xlsx", events)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, sess.ID, session.FileClusters, "clusters.xlsx", clusters)
	require.NoError(t, err)

	t.Run("pivot as xlsx", func(t *testing.T) {
		dl, err := svc.Export(ctx, sess.ID, domain.ExportViewMonthOrg, exporter.FormatXLSX, domain.Selection{})
		require.NoError(t, err)

		assert.Equal(t, "pivot_table1.xlsx", dl.FileName)
		assert.Equal(t, exporter.FormatXLSX.ContentType(), dl.ContentType)

		sheet, rows := testutil.ReadWorkbook(t, dl.Data)
		assert.Equal(t, "Sheet1", sheet)
		require.Len(t, rows, 13)
		assert.Equal(t, []string{domain.ColumnMonthName, gpn}, rows[0])
		assert.Equal(t, []string{"March", "1"}, rows[3])
	})

	t.Run("events as csv", func(t *testing.T) {
		dl, err := svc.Export(ctx, sess.ID, domain.ExportViewEvents, exporter.FormatCSV, domain.Selection{})
		require.NoError(t, err)

		assert.Equal(t, "export_data.csv", dl.FileName)
		assert.Contains(t, string(dl.Data), "Widget [12]")
		assert.NotContains(t, string(dl.Data), "Gadget [99]")
	})

	t.Run("empty fallback subset has no cluster pivot", func(t *testing.T) {
		_, err := svc.Export(ctx, sess.ID, domain.ExportViewMonthCluster, exporter.FormatXLSX, domain.Selection{Months: []string{}})
		assert.True(t, errors.Is(err, ErrViewEmpty))
	})

	t.Run("unknown view", func(t *testing.T) {
		_, err := svc.Export(ctx, sess.ID, domain.ExportView("pivot3"), exporter.FormatXLSX, domain.Selection{})
		assert.True(t, errors.Is(err, ErrUnknownView))
	})
}

func TestReportService_ExportCarriedColumns(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, clusters := sampleWorkbooks(t)

	events := testutil.Workbook(t, "Export",
		append(append([]string{}, testutil.EventColumns...), "Deadline", "Value"),
		[][]any{
			{"Widget [12]", "Prod", "Acme", "01/03/2024", time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), 1234.5},
		})

	d, err := svc.Render(ctx, events, clusters, domain.Selection{})
	require.NoError(t, err)

	t.Run("csv keeps dates and numbers", func(t *testing.T) {
		dl, err := svc.ExportTable(ctx, d, domain.ExportViewEvents, exporter.FormatCSV)
		require.NoError(t, err)
		assert.Contains(t, string(dl.Data), "Widget [12],Prod,Acme,2024-03-01 00:00:00,2024-04-30 00:00:00,1234.5,")
	})

	t.Run("xlsx writes typed cells", func(t *testing.T) {
		dl, err := svc.ExportTable(ctx, d, domain.ExportViewEvents, exporter.FormatXLSX)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(dl.Data))
		require.NoError(t, err)
		defer f.Close()

		deadline, err := f.GetCellValue(exporter.SheetName, "E2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, "45412", deadline)
		style, err := f.GetCellStyle(exporter.SheetName, "E2")
		require.NoError(t, err)
		assert.NotZero(t, style, "date cells carry a date number format")

		value, err := f.GetCellValue(exporter.SheetName, "F2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, "1234.5", value)
		typ, err := f.GetCellType(exporter.SheetName, "F2")
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, typ)
		assert.NotEqual(t, excelize.CellTypeInlineString, typ)
	})
}

func TestReportService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateReportMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	svc := NewReportService(config.Default().Report, nil, metrics, logger)
	events, clusters := sampleWorkbooks(t)

	_, err = svc.Render(context.Background(), events, clusters, domain.Selection{})
	require.NoError(t, err)
	_, err = svc.Render(context.Background(), nil, clusters, domain.Selection{})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var renders metricdata.Sum[int64]
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "report_renders_total" {
				renders, found = m.Data.(metricdata.Sum[int64])
			}
		}
	}
	require.True(t, found)

	var total int64
	for _, dp := range renders.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
}
