package publish

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsync/schedule-sheets/schedule"
)

func rows(n int) schedule.Table {
	table := schedule.Table{
		Columns: []string{schedule.LabelSequence, schedule.LabelDiscipline, schedule.LabelItem, schedule.LabelVenue},
	}

	for i := range n {
		table.Rows = append(table.Rows, schedule.Row{
			schedule.LabelSequence:   i + 1,
			schedule.LabelDiscipline: "射箭",
			schedule.LabelItem:       fmt.Sprintf("item %d", i+1),
			schedule.LabelVenue:      "深圳市射箭场",
		})
	}

	return table
}

func client(backend Backend, options Options) (*Client, *[]time.Duration) {
	sleeps := []time.Duration{}

	c := NewClient(backend, options, nil)
	c.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}

	return c, &sleeps
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}

	for column, expected := range tests {
		assert.Equal(t, expected, ColumnName(column))
	}
}

func TestAreaA1(t *testing.T) {
	assert.Equal(t, "A1:D11", Area{Row: 1, Column: 1, Rows: 11, Columns: 4}.A1())
	assert.Equal(t, "B2:B6", Area{Row: 2, Column: 2, Rows: 5, Columns: 1}.A1())
	assert.Equal(t, "A1002:AB2001", Area{Row: 1002, Column: 1, Rows: 1000, Columns: 28}.A1())
}

func TestPublish(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Title: "Sheet1", Rows: 200, Columns: 20})
	c, _ := client(m, DefaultOptions())

	result, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(3))
	require.NoError(t, err)

	assert.Equal(t, "abc", result.Spreadsheet)
	assert.Equal(t, "s1", result.Sheet.ID)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Chunks)

	assert.Equal(t, []Area{{Row: 1, Column: 1, Rows: 4, Columns: 4}}, m.writes)
	assert.Equal(t, [][]string{
		{"序号", "项目名称", "比赛名称", "场馆名称"},
		{"1", "射箭", "item 1", "深圳市射箭场"},
		{"2", "射箭", "item 2", "深圳市射箭场"},
		{"3", "射箭", "item 3", "深圳市射箭场"},
	}, m.cells("abc", "s1"))

	assert.Equal(t, map[int]int{1: 105, 2: 105, 3: 250, 4: 250}, m.widths)
	assert.Equal(t, []Area{
		{Row: 1, Column: 1, Rows: 4, Columns: 4},
		{Row: 2, Column: 2, Rows: 3, Columns: 1},
	}, m.styles)
}

func TestPublishIsIdempotent(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Title: "Sheet1"})
	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(5))
	require.NoError(t, err)

	once := m.cells("abc", "s1")

	_, err = c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(5))
	require.NoError(t, err)

	assert.Equal(t, once, m.cells("abc", "s1"))
}

func TestPublishCreatesSpreadsheet(t *testing.T) {
	m := newMemory("")
	c, _ := client(m, DefaultOptions())

	result, err := c.Publish(context.Background(), Target{Title: "深圳赛区赛程"}, rows(1))
	require.NoError(t, err)

	assert.Equal(t, 1, m.created)
	assert.Equal(t, "sheet-1", result.Spreadsheet)
	assert.Len(t, m.cells("sheet-1", "s1"), 2)
}

func TestPublishSelectsNamedSheet(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Title: "Sheet1"}, Sheet{ID: "s2", Title: "Schedule"})
	c, _ := client(m, DefaultOptions())

	result, err := c.Publish(context.Background(), Target{Spreadsheet: "abc", Sheet: "schedule"}, rows(1))
	require.NoError(t, err)
	assert.Equal(t, "s2", result.Sheet.ID)

	result, err = c.Publish(context.Background(), Target{Spreadsheet: "abc", Sheet: "s1"}, rows(1))
	require.NoError(t, err)
	assert.Equal(t, "s1", result.Sheet.ID)

	_, err = c.Publish(context.Background(), Target{Spreadsheet: "abc", Sheet: "missing"}, rows(1))
	assert.True(t, errors.Is(err, ErrNoUsableSheet))
}

func TestPublishWithNoSheets(t *testing.T) {
	m := newMemory("abc")
	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoUsableSheet))
	assert.Empty(t, m.writes)
}

func TestPublishChunked(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1"})
	options := DefaultOptions()
	options.ChunkThreshold = 4
	options.ChunkSize = 4

	c, sleeps := client(m, options)

	result, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(10))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, []Area{
		{Row: 1, Column: 1, Rows: 5, Columns: 4},
		{Row: 6, Column: 1, Rows: 4, Columns: 4},
		{Row: 10, Column: 1, Rows: 2, Columns: 4},
	}, m.writes)

	assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)

	cells := m.cells("abc", "s1")
	require.Len(t, cells, 11)
	for i := 1; i <= 10; i++ {
		assert.Equal(t, fmt.Sprintf("%d", i), cells[i][0])
	}
}

func TestPublishChunkedSecondChunkStartsAfterFirst(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1"})
	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(2500))
	require.NoError(t, err)

	require.Len(t, m.writes, 3)
	assert.Equal(t, "A1:D1001", m.writes[0].A1())
	assert.Equal(t, "A1002:D2001", m.writes[1].A1())
	assert.Equal(t, "A2002:D2501", m.writes[2].A1())
	assert.Len(t, m.cells("abc", "s1"), 2501)
}

func TestPublishChunkedPartialFailure(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1"})
	m.failOn[1] = fmt.Errorf("rate limited")

	options := DefaultOptions()
	options.ChunkThreshold = 2
	options.ChunkSize = 2

	c, _ := client(m, options)

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(5))
	require.Error(t, err)

	var chunk *ChunkError
	require.True(t, errors.As(err, &chunk))
	assert.Equal(t, 1, chunk.Chunk)
	assert.Equal(t, 3, chunk.Chunks)
	assert.Equal(t, 2, chunk.Written)

	assert.Len(t, m.writes, 2)
	assert.Len(t, m.cells("abc", "s1"), 3)
	assert.Empty(t, m.widths)
}

func TestPublishChunkedCompensate(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Rows: 10, Columns: 6})
	m.failOn[1] = fmt.Errorf("rate limited")

	options := DefaultOptions()
	options.ChunkThreshold = 2
	options.ChunkSize = 2
	options.Compensate = true

	c, _ := client(m, options)

	result, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(5))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Chunks)

	// 2 chunked writes, 5 blanking writes, 3 chunked writes
	assert.Len(t, m.writes, 10)
	assert.Len(t, m.cells("abc", "s1"), 6)
}

func TestPublishWithClear(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Rows: 20, Columns: 8})
	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(10))
	require.NoError(t, err)
	require.Len(t, m.cells("abc", "s1"), 11)

	options := DefaultOptions()
	options.Clear = true
	c, _ = client(m, options)

	_, err = c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(3))
	require.NoError(t, err)

	assert.Len(t, m.cells("abc", "s1"), 4)
}

func TestPublishWithoutClearKeepsTrailingRows(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Rows: 20, Columns: 8})
	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(10))
	require.NoError(t, err)

	_, err = c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(3))
	require.NoError(t, err)

	assert.Len(t, m.cells("abc", "s1"), 11)
}

func TestPublishIgnoresPresentationFailures(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1"})
	m.failAll = func(call string) error {
		return fmt.Errorf("%v failed", call)
	}

	c, _ := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(3))

	assert.NoError(t, err)
	assert.Len(t, m.cells("abc", "s1"), 4)
}

func TestClear(t *testing.T) {
	m := newMemory("abc", Sheet{ID: "s1", Rows: 2500, Columns: 4})
	c, sleeps := client(m, DefaultOptions())

	_, err := c.Publish(context.Background(), Target{Spreadsheet: "abc"}, rows(3))
	require.NoError(t, err)
	require.Empty(t, *sleeps)

	m.writes = nil

	_, err = c.Clear(context.Background(), Target{Spreadsheet: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []Area{
		{Row: 1, Column: 1, Rows: 1000, Columns: 4},
		{Row: 1001, Column: 1, Rows: 1000, Columns: 4},
		{Row: 2001, Column: 1, Rows: 500, Columns: 4},
	}, m.writes)

	assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)
	assert.Empty(t, m.cells("abc", "s1"))
}

func TestClearRequiresSpreadsheet(t *testing.T) {
	c, _ := client(newMemory(""), DefaultOptions())

	_, err := c.Clear(context.Background(), Target{})

	assert.Error(t, err)
}
