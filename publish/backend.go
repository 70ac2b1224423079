package publish

import (
	"context"
	"fmt"
)

// Sheet describes one worksheet of a spreadsheet and the size of its grid.
type Sheet struct {
	ID      string
	Title   string
	Index   int
	Rows    int
	Columns int
}

// Area is a rectangular cell range. Row and Column are 1-based.
type Area struct {
	Row     int
	Column  int
	Rows    int
	Columns int
}

// A1 returns the area in A1 notation, e.g. A1:C10.
func (a Area) A1() string {
	return fmt.Sprintf("%s%d:%s%d", ColumnName(a.Column), a.Row, ColumnName(a.Column+a.Columns-1), a.Row+a.Rows-1)
}

// ColumnName returns the spreadsheet letters for a 1-based column number, e.g. 1 => A,
// 27 => AA.
func ColumnName(column int) string {
	name := []byte{}
	for n := column; n > 0; n = (n - 1) / 26 {
		name = append([]byte{byte('A' + (n-1)%26)}, name...)
	}

	return string(name)
}

type Style struct {
	Center bool
	Text   bool
}

// Backend is the remote spreadsheet protocol used by the sync client.
type Backend interface {
	Create(ctx context.Context, title string) (string, error)
	Sheets(ctx context.Context, spreadsheet string) ([]Sheet, error)
	Write(ctx context.Context, spreadsheet string, sheet Sheet, area Area, values [][]any) error
	ColumnWidth(ctx context.Context, spreadsheet string, sheet Sheet, column int, width int) error
	Style(ctx context.Context, spreadsheet string, sheet Sheet, area Area, style Style) error
}
