package commands

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/schedsync/schedule-sheets/schedule"
)

func tableToTSV(f io.Writer, table schedule.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("Empty table")
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(table.Columns); err != nil {
		return err
	}

	for _, record := range table.Records() {
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func tsvToTable(f io.Reader) (*schedule.Table, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}

		rows = append(rows, row)
	}

	return makeTable(rows)
}
