package export

import (
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/schedsync/schedule-sheets/schedule"
)

func TestFilename(t *testing.T) {
	date := civil.Date{Year: 2025, Month: 11, Day: 12}

	assert.Equal(t, filepath.Join("out", "深圳赛区赛程_2025-11-12.xlsx"), Filename("out", "", date))
	assert.Equal(t, "schedule_2025-11-12.xlsx", Filename("", "schedule", date))
}

func TestWrite(t *testing.T) {
	table := schedule.Table{
		Columns: []string{schedule.LabelDiscipline, schedule.LabelDate, schedule.LabelStartTime, schedule.LabelItem, schedule.LabelMedal},
		Rows: []schedule.Row{
			{
				schedule.LabelDiscipline: "射箭",
				schedule.LabelDate:       "2025-11-12",
				schedule.LabelStartTime:  civil.Time{Hour: 9, Minute: 30},
				schedule.LabelItem:       strings.Repeat("赛", 60),
				schedule.LabelMedal:      float64(2),
			},
			{
				schedule.LabelDiscipline: "游泳",
				schedule.LabelDate:       "2025-11-12",
				schedule.LabelStartTime:  nil,
			},
		},
	}

	path := filepath.Join(t.TempDir(), "schedule.xlsx")

	require.NoError(t, Write(table, path, DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"项目名称", "比赛日期", "开始时间", "比赛名称", "产生奖牌数"}, rows[0])
	assert.Equal(t, "射箭", rows[1][0])
	assert.Equal(t, "2025-11-12", rows[1][1])
	assert.Equal(t, "09:30:00", rows[1][2])
	assert.Equal(t, "2", rows[1][4])
	assert.Equal(t, []string{"游泳", "2025-11-12"}, rows[2])

	widths := map[string]float64{
		"A": 2 * (4 + 2),
		"B": 2 * (4 + 2),
		"C": 2 * (8 + 2),
		"D": 2 * 50,
		"E": 2 * (5 + 2),
	}

	for column, expected := range widths {
		width, err := f.GetColWidth(DefaultSheet, column)
		require.NoError(t, err)
		assert.InDelta(t, expected, width, 0.01, "column %v", column)
	}

	id, err := f.GetCellStyle(DefaultSheet, "A1")
	require.NoError(t, err)

	style, err := f.GetStyle(id)
	require.NoError(t, err)

	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, "pattern", style.Fill.Type)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "center", style.Alignment.Horizontal)
	assert.True(t, style.Alignment.WrapText)
}

func TestWriteEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	table := schedule.Table{Columns: []string{schedule.LabelDiscipline, schedule.LabelDate}}

	require.NoError(t, Write(table, path, Options{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"项目名称", "比赛日期"}}, rows)
}
