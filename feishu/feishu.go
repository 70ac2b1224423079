package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/schedsync/schedule-sheets/publish"
)

const DefaultBaseURL = "https://open.feishu.cn"

var ErrAuth = errors.New("feishu authentication failed")

type Config struct {
	BaseURL   string `mapstructure:"base-url"`
	AppID     string `mapstructure:"app-id"`
	AppSecret string `mapstructure:"app-secret"`
	Folder    string `mapstructure:"folder"`
}

// APIError is a response with a non-zero 'code'.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu error %d (%s)", e.Code, e.Msg)
}

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Backend implements publish.Backend over the Feishu open platform sheets API.
type Backend struct {
	baseURL string
	folder  string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewBackend authenticates with the app credentials and returns a Backend that uses the
// resulting tenant token for every request. The token is not refreshed.
func NewBackend(ctx context.Context, cfg Config, client *http.Client, log logrus.FieldLogger) (*Backend, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if client == nil {
		client = http.DefaultClient
	}

	cfg.BaseURL = baseURL(cfg.BaseURL)

	token, err := NewTokenSource(ctx, cfg, client).Token()
	if err != nil {
		return nil, err
	}

	log.WithField("expires", token.Expiry).Debug("acquired tenant access token")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	return &Backend{
		baseURL: cfg.BaseURL,
		folder:  cfg.Folder,
		client:  oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
		log:     log,
	}, nil
}

func (b *Backend) Create(ctx context.Context, title string) (string, error) {
	rq := struct {
		Title       string `json:"title"`
		FolderToken string `json:"folder_token"`
	}{
		Title:       title,
		FolderToken: b.folder,
	}

	var rsp struct {
		Spreadsheet struct {
			Title            string `json:"title"`
			URL              string `json:"url"`
			SpreadsheetToken string `json:"spreadsheet_token"`
		} `json:"spreadsheet"`
	}

	if err := b.do(ctx, http.MethodPost, "/open-apis/sheets/v3/spreadsheets", rq, &rsp); err != nil {
		return "", err
	}

	if rsp.Spreadsheet.SpreadsheetToken == "" {
		return "", errors.New("missing spreadsheet token in response")
	}

	b.log.WithField("url", rsp.Spreadsheet.URL).Info("created spreadsheet")

	return rsp.Spreadsheet.SpreadsheetToken, nil
}

func (b *Backend) Sheets(ctx context.Context, spreadsheet string) ([]publish.Sheet, error) {
	var rsp struct {
		Sheets []struct {
			SheetID string `json:"sheet_id"`
			Title   string `json:"title"`
			Index   int    `json:"index"`
			Hidden  bool   `json:"hidden"`
			Grid    *struct {
				RowCount    int `json:"row_count"`
				ColumnCount int `json:"column_count"`
			} `json:"grid_properties"`
		} `json:"sheets"`
	}

	path := fmt.Sprintf("/open-apis/sheets/v3/spreadsheets/%v/sheets/query", spreadsheet)
	if err := b.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}

	sheets := []publish.Sheet{}
	for _, s := range rsp.Sheets {
		sheet := publish.Sheet{
			ID:    s.SheetID,
			Title: s.Title,
			Index: s.Index,
		}

		if s.Grid != nil {
			sheet.Rows = s.Grid.RowCount
			sheet.Columns = s.Grid.ColumnCount
		}

		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

func (b *Backend) Write(ctx context.Context, spreadsheet string, sheet publish.Sheet, area publish.Area, values [][]any) error {
	rq := map[string]any{
		"valueRange": map[string]any{
			"range":  sheet.ID + "!" + area.A1(),
			"values": values,
		},
	}

	path := fmt.Sprintf("/open-apis/sheets/v2/spreadsheets/%v/values", spreadsheet)

	return b.do(ctx, http.MethodPut, path, rq, nil)
}

// ColumnWidth sets the fixed width of a single 1-based column.
func (b *Backend) ColumnWidth(ctx context.Context, spreadsheet string, sheet publish.Sheet, column int, width int) error {
	rq := map[string]any{
		"dimension": map[string]any{
			"sheetId":        sheet.ID,
			"majorDimension": "COLUMNS",
			"startIndex":     column,
			"endIndex":       column,
		},
		"dimensionProperties": map[string]any{
			"fixedSize": width,
		},
	}

	path := fmt.Sprintf("/open-apis/sheets/v2/spreadsheets/%v/dimension_range", spreadsheet)

	return b.do(ctx, http.MethodPut, path, rq, nil)
}

func (b *Backend) Style(ctx context.Context, spreadsheet string, sheet publish.Sheet, area publish.Area, style publish.Style) error {
	s := map[string]any{}
	if style.Center {
		s["hAlign"] = 1
		s["vAlign"] = 1
	}

	if style.Text {
		s["formatter"] = "@"
	}

	rq := map[string]any{
		"appendStyle": map[string]any{
			"range": sheet.ID + "!" + area.A1(),
			"style": s,
		},
	}

	path := fmt.Sprintf("/open-apis/sheets/v2/spreadsheets/%v/style", spreadsheet)

	return b.do(ctx, http.MethodPut, path, rq, nil)
}

func (b *Backend) do(ctx context.Context, method, path string, request any, data any) error {
	uri := b.baseURL + path

	raw, status, err := call(ctx, b.client, method, uri, request)
	if err != nil {
		return err
	}

	var reply response
	if err := sonic.Unmarshal(raw, &reply); err != nil {
		if status < 200 || status > 299 {
			return errors.Newf("%v %v: status %d", method, path, status)
		}

		return errors.Wrapf(err, "decode %v response", path)
	}

	if reply.Code != 0 {
		return &APIError{Code: reply.Code, Msg: reply.Msg}
	}

	if status < 200 || status > 299 {
		return errors.Newf("%v %v: status %d", method, path, status)
	}

	if data != nil && len(reply.Data) > 0 {
		if err := sonic.Unmarshal(reply.Data, data); err != nil {
			return errors.Wrapf(err, "decode %v response data", path)
		}
	}

	return nil
}

func call(ctx context.Context, client *http.Client, method, uri string, request any) ([]byte, int, error) {
	var body io.Reader
	if request != nil {
		encoded, err := sonic.Marshal(request)
		if err != nil {
			return nil, 0, errors.Wrap(err, "encode request")
		}

		body = bytes.NewReader(encoded)
	}

	rq, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}

	rq.Header.Set("Content-Type", "application/json; charset=utf-8")

	rsp, err := client.Do(rq)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "%v %v", method, uri)
	}

	defer rsp.Body.Close()

	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, rsp.StatusCode, errors.Wrap(err, "read response")
	}

	return raw, rsp.StatusCode, nil
}

func baseURL(s string) string {
	if s = strings.TrimRight(strings.TrimSpace(s), "/"); s == "" {
		return DefaultBaseURL
	}

	return s
}
