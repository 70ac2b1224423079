package schedule

import (
	"slices"
)

// Aggregate accumulates per-discipline tables in insertion order.
type Aggregate struct {
	table Table
}

// Append concatenates a table with outer-union column semantics: columns not seen before
// are added after the existing ones and earlier rows have no value for them. Appending an
// empty table is a no-op.
func (a *Aggregate) Append(t Table) {
	if t.Len() == 0 {
		return
	}

	for _, c := range t.Columns {
		if !slices.Contains(a.table.Columns, c) {
			a.table.Columns = append(a.table.Columns, c)
		}
	}

	a.table.Rows = append(a.table.Rows, t.Rows...)
}

func (a *Aggregate) Table() Table {
	return Table{
		Columns: slices.Clone(a.table.Columns),
		Rows:    slices.Clone(a.table.Rows),
	}
}

// WithSequence returns a copy of the table with a 1-based sequence column prepended.
func WithSequence(t Table, column string) Table {
	columns := append([]string{column}, t.Columns...)
	rows := make([]Row, 0, len(t.Rows))

	for i, row := range t.Rows {
		r := Row{column: i + 1}
		for k, v := range row {
			r[k] = v
		}

		rows = append(rows, r)
	}

	return Table{
		Columns: columns,
		Rows:    rows,
	}
}
