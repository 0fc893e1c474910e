package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// EntityNameColumn is the required input header.
const EntityNameColumn = "entity_name"

// ErrMissingColumn is returned when the first sheet has no entity_name header.
var ErrMissingColumn = errors.New(
	`the uploaded file is incorrectly formatted: it must have a column named "entity_name"`)

// ReadEntityNames reads the first sheet of the workbook in r and returns every
// non-blank cell under the entity_name header, in row order. Duplicates are kept.
func ReadEntityNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingColumn
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingColumn
	}

	col := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == EntityNameColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingColumn
	}

	names := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells.
		if col >= len(row) {
			continue
		}
		if strings.TrimSpace(row[col]) == "" {
			continue
		}
		names = append(names, row[col])
	}
	return names, nil
}
