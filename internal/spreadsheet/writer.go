package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jekabs-s/urlookup/internal/engine"
)

// Output workbook constants.
const (
	OutputFilename = "entity_ur_data.xlsx"
	ContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName      = "Sheet1"
	dateFormat     = "yyyy-mm-dd hh:mm:ss"
)

// PresentColumns returns the canonical columns that occur in at least one
// record, in canonical order.
func PresentColumns(records []engine.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			seen[k] = true
		}
	}

	var cols []string
	for _, c := range engine.Columns() {
		if seen[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// WriteRecords writes records to w as a workbook with a single Sheet1: a header
// row of the present columns, then one row per record. Missing fields are left
// blank and dates are written as date cells.
func WriteRecords(w io.Writer, records []engine.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	cols := PresentColumns(records)
	if len(cols) > 0 {
		if err := writeRows(f, cols, records); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, cols []string, records []engine.Record) error {
	dateFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err = sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			v, ok := rec[c]
			if !ok {
				continue
			}
			if t, isTime := v.(time.Time); isTime {
				row[j] = excelize.Cell{StyleID: dateStyle, Value: t}
				continue
			}
			row[j] = v
		}

		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return cellErr
		}
		if err = sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	return nil
}
