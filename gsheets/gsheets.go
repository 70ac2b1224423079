package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/schedsync/schedule-sheets/publish"
)

type Config struct {
	Credentials   string `mapstructure:"credentials"`
	Folder        string `mapstructure:"folder"`
	Endpoint      string `mapstructure:"endpoint"`
	DriveEndpoint string `mapstructure:"drive-endpoint"`
}

// Backend implements publish.Backend over the Google Sheets v4 API.
type Backend struct {
	sheets *sheets.Service
	drive  *drive.Service
	folder string
	log    logrus.FieldLogger
}

// NewBackend creates a Backend. A nil client is replaced by one authorised with the
// service account credentials in the Config.
func NewBackend(ctx context.Context, cfg Config, client *http.Client, log logrus.FieldLogger) (*Backend, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if client == nil {
		c, err := Authorize(ctx, cfg.Credentials)
		if err != nil {
			return nil, err
		}

		client = c
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	google, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create Sheets client")
	}

	opts = []option.ClientOption{option.WithHTTPClient(client)}
	if cfg.DriveEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.DriveEndpoint))
	}

	gdrive, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create Drive client")
	}

	return &Backend{
		sheets: google,
		drive:  gdrive,
		folder: cfg.Folder,
		log:    log,
	}, nil
}

// Create creates a spreadsheet and, if a folder is configured, moves it into the folder.
func (b *Backend) Create(ctx context.Context, title string) (string, error) {
	rq := sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: title,
		},
	}

	spreadsheet, err := b.sheets.Spreadsheets.Create(&rq).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "failed to create spreadsheet")
	}

	if b.folder != "" {
		if _, err := b.drive.Files.Update(spreadsheet.SpreadsheetId, &drive.File{}).AddParents(b.folder).Context(ctx).Do(); err != nil {
			return spreadsheet.SpreadsheetId, errors.Wrapf(err, "failed to move spreadsheet to folder %v", b.folder)
		}
	}

	b.log.WithField("url", spreadsheet.SpreadsheetUrl).Info("created spreadsheet")

	return spreadsheet.SpreadsheetId, nil
}

func (b *Backend) Sheets(ctx context.Context, spreadsheet string) ([]publish.Sheet, error) {
	s, err := b.sheets.Spreadsheets.Get(spreadsheet).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch spreadsheet")
	}

	list := []publish.Sheet{}
	for _, sheet := range s.Sheets {
		if sheet.Properties == nil {
			continue
		}

		p := sheet.Properties
		item := publish.Sheet{
			ID:    strconv.FormatInt(p.SheetId, 10),
			Title: p.Title,
			Index: int(p.Index),
		}

		if p.GridProperties != nil {
			item.Rows = int(p.GridProperties.RowCount)
			item.Columns = int(p.GridProperties.ColumnCount)
		}

		list = append(list, item)
	}

	return list, nil
}

func (b *Backend) Write(ctx context.Context, spreadsheet string, sheet publish.Sheet, area publish.Area, values [][]any) error {
	rq := sheets.ValueRange{
		Range:  a1(sheet, area),
		Values: values,
	}

	if _, err := b.sheets.Spreadsheets.Values.Update(spreadsheet, rq.Range, &rq).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return errors.Wrapf(err, "failed to write %v", rq.Range)
	}

	return nil
}

// ColumnWidth sets the pixel width of a single 1-based column.
func (b *Backend) ColumnWidth(ctx context.Context, spreadsheet string, sheet publish.Sheet, column int, width int) error {
	id, err := sheetID(sheet)
	if err != nil {
		return err
	}

	rq := sheets.Request{
		UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range: &sheets.DimensionRange{
				SheetId:         id,
				Dimension:       "COLUMNS",
				StartIndex:      int64(column - 1),
				EndIndex:        int64(column),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
			Properties: &sheets.DimensionProperties{
				PixelSize: int64(width),
			},
			Fields: "pixelSize",
		},
	}

	return b.batch(ctx, spreadsheet, &rq)
}

func (b *Backend) Style(ctx context.Context, spreadsheet string, sheet publish.Sheet, area publish.Area, style publish.Style) error {
	id, err := sheetID(sheet)
	if err != nil {
		return err
	}

	format := sheets.CellFormat{}
	fields := []string{}

	if style.Center {
		format.HorizontalAlignment = "CENTER"
		format.VerticalAlignment = "MIDDLE"
		fields = append(fields, "horizontalAlignment", "verticalAlignment")
	}

	if style.Text {
		format.NumberFormat = &sheets.NumberFormat{Type: "TEXT", Pattern: "@"}
		fields = append(fields, "numberFormat")
	}

	if len(fields) == 0 {
		return nil
	}

	rq := sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          id,
				StartRowIndex:    int64(area.Row - 1),
				EndRowIndex:      int64(area.Row - 1 + area.Rows),
				StartColumnIndex: int64(area.Column - 1),
				EndColumnIndex:   int64(area.Column - 1 + area.Columns),
				ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &format,
			},
			Fields: fmt.Sprintf("userEnteredFormat(%v)", strings.Join(fields, ",")),
		},
	}

	return b.batch(ctx, spreadsheet, &rq)
}

func (b *Backend) batch(ctx context.Context, spreadsheet string, requests ...*sheets.Request) error {
	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	if _, err := b.sheets.Spreadsheets.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return errors.Wrap(err, "batch update failed")
	}

	return nil
}

func a1(sheet publish.Sheet, area publish.Area) string {
	title := strings.ReplaceAll(sheet.Title, "'", "''")

	return fmt.Sprintf("'%s'!%s", title, area.A1())
}

func sheetID(sheet publish.Sheet) (int64, error) {
	id, err := strconv.ParseInt(sheet.ID, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid sheet ID '%v'", sheet.ID)
	}

	return id, nil
}
