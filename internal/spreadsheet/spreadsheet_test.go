package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jekabs-s/urlookup/internal/engine"
)

// workbook builds an in-memory xlsx with the given rows on Sheet1.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadEntityNames(t *testing.T) {
	buf := workbook(t,
		[]any{"entity_name"},
		[]any{"Acme Ltd"},
		[]any{"Zzz Nonexistent"},
		[]any{""},
		[]any{"Acme Ltd"},
		[]any{12345},
	)

	names, err := ReadEntityNames(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Ltd", "Zzz Nonexistent", "Acme Ltd", "12345"}, names)
}

func TestReadEntityNames_ColumnNotFirst(t *testing.T) {
	buf := workbook(t,
		[]any{"id", "entity_name", "note"},
		[]any{1, "Acme Ltd", "x"},
		[]any{2},
		[]any{3, "Beta SIA"},
	)

	names, err := ReadEntityNames(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Ltd", "Beta SIA"}, names)
}

func TestReadEntityNames_HeaderOnly(t *testing.T) {
	names, err := ReadEntityNames(workbook(t, []any{"entity_name"}))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadEntityNames_MissingColumn(t *testing.T) {
	tests := []struct {
		name string
		buf  *bytes.Buffer
	}{
		{"wrong header", workbook(t, []any{"company"}, []any{"Acme Ltd"})},
		{"empty sheet", workbook(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntityNames(tt.buf)
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestReadEntityNames_NotAWorkbook(t *testing.T) {
	_, err := ReadEntityNames(strings.NewReader("entity_name\nAcme Ltd\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "opening workbook")
}

func TestPresentColumns(t *testing.T) {
	records := []engine.Record{
		{"post_index": int64(1010), "name": "A"},
		{"regcode": "1", "name": "B"},
	}
	assert.Equal(t, []string{"regcode", "name", "post_index"}, PresentColumns(records))
	assert.Empty(t, PresentColumns(nil))
}

func TestWriteRecords(t *testing.T) {
	records := []engine.Record{
		{
			"name":            "Acme Ltd",
			"regcode":         "4000123",
			"date_registered": time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"name":       "Beta SIA",
			"post_index": int64(1010),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"regcode", "name", "date_registered", "post_index"}, rows[0])
	assert.Equal(t, "4000123", rows[1][0])
	assert.Equal(t, "Acme Ltd", rows[1][1])
	assert.Equal(t, []string{"", "Beta SIA", "", "1010"}, rows[2])

	raw, err := f.GetCellValue(SheetName, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "40299", raw)
}

func TestWriteRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
