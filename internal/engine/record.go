package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jekabs-s/urlookup/internal/registry"
)

// DateLayout is the timestamp format used by the registry for date fields.
const DateLayout = "2006-01-02T15:04:05"

// Record is one normalized registry match keyed by canonical column name.
// Absent or empty source fields are omitted.
type Record map[string]any

// fieldMapping maps one registry field onto a canonical column.
type fieldMapping struct {
	APIField string
	Column   string
	Date     bool
}

// fieldMappings is ordered as the output columns.
//
//nolint:gochecknoglobals // Fixed mapping table.
var fieldMappings = []fieldMapping{
	{APIField: "regcode", Column: "regcode"},
	{APIField: "sepa", Column: "sepa"},
	{APIField: "name", Column: "name"},
	{APIField: "regtype_text", Column: "regtype_text"},
	{APIField: "type", Column: "type"},
	{APIField: "type_text", Column: "type_text"},
	{APIField: "registered", Column: "date_registered", Date: true},
	{APIField: "terminated", Column: "date_terminated", Date: true},
	{APIField: "closed", Column: "closed"},
	{APIField: "address", Column: "address"},
	{APIField: "index", Column: "post_index"},
}

// Columns returns the canonical column names in output order.
func Columns() []string {
	cols := make([]string, len(fieldMappings))
	for i, m := range fieldMappings {
		cols[i] = m.Column
	}
	return cols
}

// DateParseError reports a registry date field that does not match DateLayout.
type DateParseError struct {
	Field string
	Value any
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing %s %v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parsing %s %v: not a string", e.Field, e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// NormalizeRecord maps raw onto the canonical columns. Only present and non-empty
// fields are copied. Date fields are parsed as UTC.
func NormalizeRecord(raw registry.RawRecord) (Record, error) {
	rec := make(Record, len(fieldMappings))
	for _, m := range fieldMappings {
		v, ok := raw[m.APIField]
		if !ok || !isPresent(v) {
			continue
		}

		if m.Date {
			t, err := parseDate(m.APIField, v)
			if err != nil {
				return nil, err
			}
			rec[m.Column] = t
			continue
		}
		rec[m.Column] = scalar(v)
	}
	return rec, nil
}

func parseDate(field string, v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, &DateParseError{Field: field, Value: v}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: s, Err: err}
	}
	return t, nil
}

// isPresent reports whether v counts as a non-empty value: not null, not an
// empty string or collection, not false and not zero.
func isPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// scalar converts json.Number into int64 or float64 and leaves other values as is.
func scalar(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
