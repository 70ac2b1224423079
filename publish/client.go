package publish

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/schedule"
)

var ErrNoUsableSheet = errors.New("no usable sheet")

// ChunkError reports a chunked write that failed part way through. Written is the
// number of data rows written before the failed chunk.
type ChunkError struct {
	Chunk   int
	Chunks  int
	Written int
	Err     error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d of %d failed after %d rows (%v)", e.Chunk+1, e.Chunks, e.Written, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

type Options struct {
	ChunkThreshold int           `mapstructure:"chunk-threshold"`
	ChunkSize      int           `mapstructure:"chunk-size"`
	ChunkDelay     time.Duration `mapstructure:"chunk-delay"`
	Compensate     bool          `mapstructure:"compensate"`
	Clear          bool          `mapstructure:"clear"`
	WideColumns    []string      `mapstructure:"wide-columns"`
	WideWidth      int           `mapstructure:"wide-width"`
	DefaultWidth   int           `mapstructure:"default-width"`
	TextColumn     int           `mapstructure:"text-column"`
}

func DefaultOptions() Options {
	return Options{
		ChunkThreshold: 1000,
		ChunkSize:      1000,
		ChunkDelay:     1 * time.Second,
		WideColumns:    []string{schedule.LabelItem, schedule.LabelVenue},
		WideWidth:      250,
		DefaultWidth:   105,
		TextColumn:     2,
	}
}

// Target identifies the remote sheet. An empty Spreadsheet creates a new spreadsheet
// titled Title and an empty Sheet selects the first sheet.
type Target struct {
	Spreadsheet string
	Sheet       string
	Title       string
}

type Result struct {
	Spreadsheet string
	Sheet       Sheet
	Rows        int
	Chunks      int
}

type Client struct {
	backend Backend
	options Options
	log     logrus.FieldLogger
	sleep   func(time.Duration)
}

func NewClient(backend Backend, options Options, log logrus.FieldLogger) *Client {
	defaults := DefaultOptions()

	if options.ChunkThreshold <= 0 {
		options.ChunkThreshold = defaults.ChunkThreshold
	}

	if options.ChunkSize <= 0 {
		options.ChunkSize = defaults.ChunkSize
	}

	if options.ChunkDelay < 0 {
		options.ChunkDelay = 0
	}

	if options.WideWidth <= 0 {
		options.WideWidth = defaults.WideWidth
	}

	if options.DefaultWidth <= 0 {
		options.DefaultWidth = defaults.DefaultWidth
	}

	if options.WideColumns == nil {
		options.WideColumns = defaults.WideColumns
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		backend: backend,
		options: options,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Publish overwrites the target sheet with the table, header row first, starting at A1.
// Tables with more rows than the chunk threshold are written in chunks. Presentation
// directives are applied afterwards and their failures are only logged.
func (c *Client) Publish(ctx context.Context, target Target, table schedule.Table) (Result, error) {
	spreadsheet, sheet, err := c.resolve(ctx, target)
	if err != nil {
		return Result{}, err
	}

	log := c.log.WithFields(logrus.Fields{"spreadsheet": spreadsheet, "sheet": sheet.ID})
	result := Result{
		Spreadsheet: spreadsheet,
		Sheet:       sheet,
		Rows:        table.Len(),
	}

	if c.options.Clear {
		if err := c.clear(ctx, spreadsheet, sheet); err != nil {
			return result, errors.Wrap(err, "clear sheet")
		}
	}

	values := table.Values()

	if table.Len() <= c.options.ChunkThreshold {
		area := Area{Row: 1, Column: 1, Rows: len(values), Columns: len(table.Columns)}
		if err := c.backend.Write(ctx, spreadsheet, sheet, area, values); err != nil {
			return result, errors.Wrapf(err, "write %v", area.A1())
		}

		result.Chunks = 1
		log.WithField("rows", table.Len()).Info("wrote table")
	} else {
		chunks, err := c.chunked(ctx, spreadsheet, sheet, values)
		if err != nil && c.options.Compensate {
			log.WithError(err).Warn("chunked write failed, clearing sheet and retrying")

			if err := c.clear(ctx, spreadsheet, sheet); err != nil {
				return result, errors.Wrap(err, "clear sheet after failed write")
			}

			chunks, err = c.chunked(ctx, spreadsheet, sheet, values)
		}

		if err != nil {
			return result, err
		}

		result.Chunks = chunks
		log.WithFields(logrus.Fields{"rows": table.Len(), "chunks": chunks}).Info("wrote table")
	}

	c.present(ctx, spreadsheet, sheet, table)

	return result, nil
}

// Clear blanks the target sheet's grid.
func (c *Client) Clear(ctx context.Context, target Target) (Result, error) {
	if strings.TrimSpace(target.Spreadsheet) == "" {
		return Result{}, errors.New("missing spreadsheet")
	}

	spreadsheet, sheet, err := c.resolve(ctx, target)
	if err != nil {
		return Result{}, err
	}

	if err := c.clear(ctx, spreadsheet, sheet); err != nil {
		return Result{}, err
	}

	return Result{Spreadsheet: spreadsheet, Sheet: sheet}, nil
}

func (c *Client) resolve(ctx context.Context, target Target) (string, Sheet, error) {
	spreadsheet := strings.TrimSpace(target.Spreadsheet)
	if spreadsheet == "" {
		token, err := c.backend.Create(ctx, target.Title)
		if err != nil {
			return "", Sheet{}, errors.Wrap(err, "create spreadsheet")
		}

		c.log.WithFields(logrus.Fields{"spreadsheet": token, "title": target.Title}).Info("created spreadsheet")
		spreadsheet = token
	}

	sheets, err := c.backend.Sheets(ctx, spreadsheet)
	if err != nil {
		return spreadsheet, Sheet{}, errors.Wrap(err, "list sheets")
	}

	if len(sheets) == 0 {
		return spreadsheet, Sheet{}, errors.Wrapf(ErrNoUsableSheet, "spreadsheet %v", spreadsheet)
	}

	name := strings.TrimSpace(target.Sheet)
	if name == "" {
		return spreadsheet, sheets[0], nil
	}

	for _, s := range sheets {
		if s.ID == name || strings.EqualFold(strings.TrimSpace(s.Title), name) {
			return spreadsheet, s, nil
		}
	}

	return spreadsheet, Sheet{}, errors.Wrapf(ErrNoUsableSheet, "no sheet '%v' in spreadsheet %v", name, spreadsheet)
}

// chunked writes the data rows in chunks of ChunkSize. The first chunk includes the
// header row and is written at A1, the chunk starting at data row s at row s+2.
func (c *Client) chunked(ctx context.Context, spreadsheet string, sheet Sheet, values [][]any) (int, error) {
	header, data := values[0], values[1:]
	columns := len(header)
	size := c.options.ChunkSize
	chunks := (len(data) + size - 1) / size

	for i, start := 0, 0; start < len(data); i, start = i+1, start+size {
		if i > 0 && c.options.ChunkDelay > 0 {
			c.sleep(c.options.ChunkDelay)
		}

		end := min(start+size, len(data))
		rows := data[start:end]
		area := Area{Row: start + 2, Column: 1, Rows: len(rows), Columns: columns}

		if start == 0 {
			rows = append([][]any{header}, rows...)
			area = Area{Row: 1, Column: 1, Rows: len(rows), Columns: columns}
		}

		if err := c.backend.Write(ctx, spreadsheet, sheet, area, rows); err != nil {
			return i, &ChunkError{Chunk: i, Chunks: chunks, Written: start, Err: err}
		}

		c.log.WithFields(logrus.Fields{"chunk": i + 1, "chunks": chunks, "range": area.A1()}).Debug("wrote chunk")
	}

	return chunks, nil
}

func (c *Client) clear(ctx context.Context, spreadsheet string, sheet Sheet) error {
	if sheet.Rows <= 0 || sheet.Columns <= 0 {
		return nil
	}

	blank := make([]any, sheet.Columns)
	for i := range blank {
		blank[i] = ""
	}

	for start := 0; start < sheet.Rows; start += c.options.ChunkSize {
		if start > 0 && c.options.ChunkDelay > 0 {
			c.sleep(c.options.ChunkDelay)
		}

		end := min(start+c.options.ChunkSize, sheet.Rows)
		values := make([][]any, 0, end-start)
		for range end - start {
			values = append(values, slices.Clone(blank))
		}

		area := Area{Row: start + 1, Column: 1, Rows: end - start, Columns: sheet.Columns}
		if err := c.backend.Write(ctx, spreadsheet, sheet, area, values); err != nil {
			return errors.Wrapf(err, "clear %v", area.A1())
		}
	}

	c.log.WithFields(logrus.Fields{"sheet": sheet.ID, "rows": sheet.Rows, "columns": sheet.Columns}).Info("cleared sheet")

	return nil
}

func (c *Client) present(ctx context.Context, spreadsheet string, sheet Sheet, table schedule.Table) {
	columns := len(table.Columns)
	if columns == 0 {
		return
	}

	for i, name := range table.Columns {
		width := c.options.DefaultWidth
		if slices.Contains(c.options.WideColumns, name) {
			width = c.options.WideWidth
		}

		if err := c.backend.ColumnWidth(ctx, spreadsheet, sheet, i+1, width); err != nil {
			c.log.WithError(err).WithField("column", name).Warn("failed to set column width")
		}
	}

	all := Area{Row: 1, Column: 1, Rows: table.Len() + 1, Columns: columns}
	if err := c.backend.Style(ctx, spreadsheet, sheet, all, Style{Center: true}); err != nil {
		c.log.WithError(err).WithField("range", all.A1()).Warn("failed to center cells")
	}

	if text := c.options.TextColumn; text > 0 && text <= columns && table.Len() > 0 {
		area := Area{Row: 2, Column: text, Rows: table.Len(), Columns: 1}
		if err := c.backend.Style(ctx, spreadsheet, sheet, area, Style{Center: true, Text: true}); err != nil {
			c.log.WithError(err).WithField("range", area.A1()).Warn("failed to set text format")
		}
	}
}
