package schedule

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Excluded lists the display columns removed from the date filtered table.
var Excluded = []string{
	LabelStatus,
	LabelMedal,
	LabelMatchup,
	LabelMatchupOrganisation,
	LabelMatchupResult,
}

// FilterByDate returns the rows whose date column is the given date, without the
// Excluded columns. Dates are compared as date-only values, whether stored as
// civil.Date or as YYYY-MM-DD strings.
func FilterByDate(t Table, column string, date civil.Date) Table {
	rows := []Row{}
	for _, row := range t.Rows {
		if d, ok := DateOf(row[column]); ok && d == date {
			rows = append(rows, row)
		}
	}

	filtered := Table{
		Columns: t.Columns,
		Rows:    rows,
	}

	return filtered.Drop(Excluded...)
}

// DateOf normalises a cell value to a civil.Date.
func DateOf(v any) (civil.Date, bool) {
	switch value := v.(type) {
	case civil.Date:
		return value, value.IsValid()

	case string:
		if d, err := civil.ParseDate(strings.TrimSpace(value)); err == nil {
			return d, true
		}
	}

	return civil.Date{}, false
}

// FormatDates replaces the civil.Date values in a column with their YYYY-MM-DD string
// form so that spreadsheet tools do not reinterpret them.
func FormatDates(t Table, column string) Table {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := Row{}
		for k, v := range row {
			if d, ok := v.(civil.Date); ok && k == column {
				r[k] = d.String()
			} else {
				r[k] = v
			}
		}

		rows = append(rows, r)
	}

	return Table{
		Columns: t.Columns,
		Rows:    rows,
	}
}
