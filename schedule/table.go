package schedule

import (
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
)

// Row is a single table record keyed by column name. A missing key is an absent
// value, a nil value is a present-but-null value.
type Row map[string]any

// Table is an ordered set of columns and rows.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Has(column string) bool {
	return t.index(column) >= 0
}

func (t Table) index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}

	return -1
}

// Select returns a table restricted to the listed columns, in the listed order. Columns
// that are not in the table are ignored.
func (t Table) Select(columns ...string) Table {
	selected := []string{}
	for _, c := range columns {
		if t.Has(c) && !slices.Contains(selected, c) {
			selected = append(selected, c)
		}
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := Row{}
		for _, c := range selected {
			if v, ok := row[c]; ok {
				r[c] = v
			}
		}

		rows = append(rows, r)
	}

	return Table{
		Columns: selected,
		Rows:    rows,
	}
}

// Drop removes the listed columns, tolerating columns that are not present.
func (t Table) Drop(columns ...string) Table {
	keep := []string{}
	for _, c := range t.Columns {
		if !slices.Contains(columns, c) {
			keep = append(keep, c)
		}
	}

	return t.Select(keep...)
}

// Rename applies a column name mapping. Unmapped columns keep their name.
func (t Table) Rename(labels map[string]string) Table {
	rename := func(c string) string {
		if label, ok := labels[c]; ok {
			return label
		}
		return c
	}

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = rename(c)
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := Row{}
		for k, v := range row {
			r[rename(k)] = v
		}
		rows = append(rows, r)
	}

	return Table{
		Columns: columns,
		Rows:    rows,
	}
}

// Values returns the table as a 2-D value range, header row first. Absent and null
// values are rendered as empty strings.
func (t Table) Values() [][]any {
	values := make([][]any, 0, len(t.Rows)+1)

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}

	values = append(values, header)

	for _, row := range t.Rows {
		record := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			record[i] = Format(row[c])
		}

		values = append(values, record)
	}

	return values
}

// Records is the string form of Values, without the header row.
func (t Table) Records() [][]string {
	records := [][]string{}
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			record[i] = Format(row[c])
		}

		records = append(records, record)
	}

	return records
}

// Format renders a cell value the way it is written to a spreadsheet.
func Format(v any) string {
	switch value := v.(type) {
	case nil:
		return ""

	case string:
		return value

	case civil.Date:
		return value.String()

	case civil.Time:
		return fmt.Sprintf("%02d:%02d:%02d", value.Hour, value.Minute, value.Second)

	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%v", value)

	default:
		return fmt.Sprintf("%v", value)
	}
}
