package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"astrasreport/internal/shared/testutil"
	"astrasreport/pkg/contracts/domain"
)

func sampleTable() domain.Table {
	code := int64(12)
	cluster := "ClusterA"
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	return domain.Table{
		Name:    "export_data",
		Columns: []string{"Material", "Date of entry", "Purchasing Category (PC)", "Groups", "month"},
		Rows: [][]any{
			{"Widget [12]", &date, &code, &cluster, 3},
			{"Gadget, large", (*time.Time)(nil), (*int64)(nil), (*string)(nil), nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestFormatCell(t *testing.T) {
	code := int64(7)
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "abc", CellText("abc"))
	assert.Equal(t, "3", CellText(3))
	assert.Equal(t, "7", CellText(&code))
	assert.Equal(t, "", CellText((*int64)(nil)))
	assert.Equal(t, "1.5", CellText(1.5))
	assert.Equal(t, "2024-03-01 00:00:00", CellText(date))
	assert.Equal(t, "2024-03-01 00:00:00", CellText(&date))
	assert.Equal(t, "", CellText((*time.Time)(nil)))
}

func TestCSVWriter_Write(t *testing.T) {
	t.Run("with BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewCSVWriter(true, nil).Write(&buf, sampleTable()))

		content := buf.Bytes()
		require.True(t, bytes.HasPrefix(content, utf8BOM))

		lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Material,Date of entry,Purchasing Category (PC),Groups,month", lines[0])
		assert.Equal(t, "Widget [12],2024-03-01 00:00:00,12,ClusterA,3", lines[1])
		assert.Equal(t, `"Gadget, large",,,,`, lines[2])
	})

	t.Run("without BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewCSVWriter(false, nil).Write(&buf, domain.Table{Columns: []string{"month_name"}}))
		assert.Equal(t, "month_name\n", buf.String())
	})
}

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(nil).Write(&buf, sampleTable()))

	sheet, rows := testutil.ReadWorkbook(t, buf.Bytes())
	assert.Equal(t, SheetName, sheet)
	require.Len(t, rows, 3)
	assert.Equal(t, sampleTable().Columns, rows[0])
	assert.Equal(t, "Widget [12]", rows[1][0])
	assert.Equal(t, "12", rows[1][2])
	assert.Equal(t, "ClusterA", rows[1][3])
	assert.Equal(t, "3", rows[1][4])
	assert.Equal(t, "Gadget, large", rows[2][0])

	// dates are stored as real date cells
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	raw, err := f.GetCellValue(SheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "45352", raw)
}

func TestExporter_Bytes(t *testing.T) {
	exp := NewExporter(nil)

	data, err := exp.Bytes(sampleTable(), FormatCSV)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))

	data, err = exp.Bytes(sampleTable(), FormatXLSX)
	require.NoError(t, err)
	_, rows := testutil.ReadWorkbook(t, data)
	assert.Len(t, rows, 3)

	_, err = exp.Bytes(sampleTable(), Format("pdf"))
	assert.Error(t, err)
}
