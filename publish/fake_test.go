package publish

import (
	"context"
	"fmt"
)

// memory is an in-memory Backend that records the calls made to it.
type memory struct {
	sheets  map[string][]Sheet
	grid    map[string][][]string
	writes  []Area
	widths  map[int]int
	styles  []Area
	created int
	failOn  map[int]error
	failAll func(call string) error
}

func newMemory(spreadsheet string, sheets ...Sheet) *memory {
	m := &memory{
		sheets: map[string][]Sheet{},
		grid:   map[string][][]string{},
		widths: map[int]int{},
		failOn: map[int]error{},
	}

	if spreadsheet != "" {
		m.sheets[spreadsheet] = sheets
	}

	return m
}

func (m *memory) Create(ctx context.Context, title string) (string, error) {
	m.created++
	token := fmt.Sprintf("sheet-%d", m.created)
	m.sheets[token] = []Sheet{{ID: "s1", Title: "Sheet1", Rows: 200, Columns: 20}}

	return token, nil
}

func (m *memory) Sheets(ctx context.Context, spreadsheet string) ([]Sheet, error) {
	sheets, ok := m.sheets[spreadsheet]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %v not found", spreadsheet)
	}

	return sheets, nil
}

func (m *memory) Write(ctx context.Context, spreadsheet string, sheet Sheet, area Area, values [][]any) error {
	n := len(m.writes)
	m.writes = append(m.writes, area)

	if err, ok := m.failOn[n]; ok {
		return err
	}

	key := spreadsheet + "/" + sheet.ID
	grid := m.grid[key]

	for r, row := range values {
		y := area.Row - 1 + r
		for len(grid) <= y {
			grid = append(grid, []string{})
		}

		for c, v := range row {
			x := area.Column - 1 + c
			for len(grid[y]) <= x {
				grid[y] = append(grid[y], "")
			}

			grid[y][x] = fmt.Sprintf("%v", v)
		}
	}

	m.grid[key] = grid

	return nil
}

func (m *memory) ColumnWidth(ctx context.Context, spreadsheet string, sheet Sheet, column int, width int) error {
	if m.failAll != nil {
		if err := m.failAll("width"); err != nil {
			return err
		}
	}

	m.widths[column] = width

	return nil
}

func (m *memory) Style(ctx context.Context, spreadsheet string, sheet Sheet, area Area, style Style) error {
	if m.failAll != nil {
		if err := m.failAll("style"); err != nil {
			return err
		}
	}

	m.styles = append(m.styles, area)

	return nil
}

// cells returns the non-blank rows of a sheet, trimmed of trailing blank cells.
func (m *memory) cells(spreadsheet, sheet string) [][]string {
	rows := [][]string{}
	for _, row := range m.grid[spreadsheet+"/"+sheet] {
		end := len(row)
		for end > 0 && row[end-1] == "" {
			end--
		}

		rows = append(rows, row[:end])
	}

	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}

	return rows
}
