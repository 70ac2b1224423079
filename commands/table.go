package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schedsync/schedule-sheets/schedule"
)

// makeTable converts a 2-D value range, header row first, to a table. Blank header
// cells and blank rows are skipped and a 序号 column, if present, is moved to the front.
func makeTable(rows [][]any) (*schedule.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("Empty sheet")
	}

	// .. build index
	index := map[string]int{}
	header := []string{}
	for i, v := range rows[0] {
		h := clean(fmt.Sprintf("%v", v))
		if h == "" {
			continue
		}

		k := normalise(h)
		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("Duplicate column name '%v'", h)
		}

		index[k] = i
		header = append(header, h)
	}

	if len(header) == 0 {
		return nil, fmt.Errorf("Missing/invalid header row")
	}

	// ... sequence column first
	if ix := indexOf(header, schedule.LabelSequence); ix > 0 {
		header = append([]string{schedule.LabelSequence}, append(header[:ix:ix], header[ix+1:]...)...)
	}

	// ... records
	records := []schedule.Row{}
	for _, row := range rows[1:] {
		record := schedule.Row{}
		blank := true

		for _, h := range header {
			ix := index[normalise(h)]
			v := ""
			if ix < len(row) && row[ix] != nil {
				v = clean(fmt.Sprintf("%v", row[ix]))
			}

			if v != "" {
				blank = false
			}

			record[h] = v
		}

		if !blank {
			records = append(records, record)
		}
	}

	return &schedule.Table{
		Columns: header,
		Rows:    records,
	}, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}

	return -1
}

var whitespace = regexp.MustCompile(`\s+`)

func normalise(v string) string {
	return strings.ToLower(whitespace.ReplaceAllString(v, ""))
}

func clean(v string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(v, " "))
}
