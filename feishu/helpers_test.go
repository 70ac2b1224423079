package feishu

import (
	"github.com/schedsync/schedule-sheets/schedule"
)

func tableOf(columns []string, records ...[]string) schedule.Table {
	table := schedule.Table{Columns: columns}
	for _, record := range records {
		row := schedule.Row{}
		for i, v := range record {
			row[columns[i]] = v
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}
