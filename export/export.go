package export

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/schedsync/schedule-sheets/schedule"
)

const (
	DefaultSheet      = "数据"
	DefaultHeaderFill = "D7E4BC"
	DefaultPrefix     = "深圳赛区赛程"
)

type Options struct {
	Sheet      string `mapstructure:"sheet"`
	DateColumn string `mapstructure:"date-column"`
	HeaderFill string `mapstructure:"header-fill"`
	Prefix     string `mapstructure:"prefix"`
}

func DefaultOptions() Options {
	return Options{
		Sheet:      DefaultSheet,
		DateColumn: schedule.LabelDate,
		HeaderFill: DefaultHeaderFill,
		Prefix:     DefaultPrefix,
	}
}

// Filename returns the export file path for a date, e.g. dir/深圳赛区赛程_2025-11-12.xlsx.
func Filename(dir string, prefix string, date civil.Date) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", prefix, date))
}

// Write saves the table as a styled xlsx workbook with a single sheet: a bold, filled
// header row, bordered and centred cells, and per column widths sized to the content.
func Write(table schedule.Table, path string, options Options) error {
	if options.Sheet == "" {
		options.Sheet = DefaultSheet
	}

	if options.HeaderFill == "" {
		options.HeaderFill = DefaultHeaderFill
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", options.Sheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	sheet := options.Sheet

	styles, err := newStyles(f, options.HeaderFill)
	if err != nil {
		return err
	}

	for i, column := range table.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		style := styles.cell
		width := 2 * min(length(table, column)+2, 50)

		if column == options.DateColumn {
			style = styles.date
			width = 2 * min(utf8.RuneCountInString(column)+2, 20)
		}

		if err := f.SetColStyle(sheet, name, style); err != nil {
			return errors.Wrapf(err, "style column %v", column)
		}

		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return errors.Wrapf(err, "set width of column %v", column)
		}
	}

	for i, column := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, column); err != nil {
			return err
		}

		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		for c, column := range table.Columns {
			v, ok := row[column]
			if !ok || v == nil {
				continue
			}

			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value(v)); err != nil {
				return errors.Wrapf(err, "write %v", cell)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %v", path)
	}

	return nil
}

type styles struct {
	header int
	cell   int
	date   int
}

func newStyles(f *excelize.File, fill string) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	alignment := excelize.Alignment{
		Horizontal: "center",
		Vertical:   "center",
		WrapText:   true,
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &alignment,
		Border:    border,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
	})
	if err != nil {
		return styles{}, errors.Wrap(err, "header style")
	}

	cell, err := f.NewStyle(&excelize.Style{
		Alignment: &alignment,
		Border:    border,
	})
	if err != nil {
		return styles{}, errors.Wrap(err, "cell style")
	}

	format := "yyyy-mm-dd"
	date, err := f.NewStyle(&excelize.Style{
		Alignment:    &alignment,
		Border:       border,
		CustomNumFmt: &format,
	})
	if err != nil {
		return styles{}, errors.Wrap(err, "date style")
	}

	return styles{
		header: header,
		cell:   cell,
		date:   date,
	}, nil
}

// length is the longest rendered value in a column, header included, in characters.
func length(table schedule.Table, column string) int {
	n := utf8.RuneCountInString(column)
	for _, row := range table.Rows {
		n = max(n, utf8.RuneCountInString(schedule.Format(row[column])))
	}

	return n
}

func value(v any) any {
	switch v.(type) {
	case int, int64, float64:
		return v

	default:
		return schedule.Format(v)
	}
}
