package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/xuri/excelize/v2"

	"github.com/schedsync/schedule-sheets/export"
	"github.com/schedsync/schedule-sheets/schedule"
)

const archery = `{"Result":{"Disciplines":[{"Units":[%v]}]}}`

const unit = `{
  "CHI_DisciplineName": "射箭", "ENG_DisciplineName": "Archery",
  "CHI_ItemName": "排名赛", "ENG_ItemName": "Ranking Round",
  "CHI_VenueName": "深圳市射箭场", "ENG_VenueName": "Shenzhen Archery Range",
  "CHI_LocationName": "深圳市射箭场",
  "CHI_ScheduleStatusName": "已排期",
  "StartDate": "%[1]vT09:30:00+08:00", "EndDate": "%[1]vT10:30:00+08:00",
  "Medal": 0
}`

func scheduleAPI(t *testing.T, dates ...string) *httptest.Server {
	units := ""
	for i, d := range dates {
		if i > 0 {
			units += ","
		}
		units += fmt.Sprintf(unit, d)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Discipline") == "ARC" {
			fmt.Fprintf(w, archery, units)
		} else {
			w.Write([]byte(`{}`))
		}
	}))

	t.Cleanup(server.Close)

	return server
}

type feishuAPI struct {
	*httptest.Server
	sync.Mutex
	values [][][]any
}

func newFeishuAPI(t *testing.T) *feishuAPI {
	replies := map[string]string{
		"/open-apis/auth/v3/tenant_access_token/internal":          `{"code":0,"msg":"ok","tenant_access_token":"t-123","expire":7200}`,
		"/open-apis/sheets/v3/spreadsheets/shtABC/sheets/query":    `{"code":0,"data":{"sheets":[{"sheet_id":"6e5ed3","title":"Sheet1","index":0,"grid_properties":{"row_count":200,"column_count":20}}]}}`,
		"/open-apis/sheets/v2/spreadsheets/shtABC/values":          `{"code":0,"msg":"success","data":{}}`,
		"/open-apis/sheets/v2/spreadsheets/shtABC/style":           `{"code":0,"msg":"success","data":{}}`,
		"/open-apis/sheets/v2/spreadsheets/shtABC/dimension_range": `{"code":0,"msg":"success","data":{}}`,
	}

	api := feishuAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.Lock()
		defer api.Unlock()

		if r.URL.Path == "/open-apis/sheets/v2/spreadsheets/shtABC/values" {
			var body struct {
				ValueRange struct {
					Values [][]any `json:"values"`
				} `json:"valueRange"`
			}

			b, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(b, &body); err != nil {
				t.Errorf("invalid values request (%v)", err)
			}

			api.values = append(api.values, body.ValueRange.Values)
		}

		if reply, ok := replies[r.URL.Path]; ok {
			w.Write([]byte(reply))
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	t.Cleanup(api.Close)

	return &api
}

func configure(t *testing.T, api, feishu, dir string) *Options {
	yaml := fmt.Sprintf(`
api:
  base-url: %v

schedule:
  disciplines:
    - name: 射箭
      code: ARC

export:
  dir: %v

publish:
  spreadsheet: shtABC
  chunk-delay: 0s

feishu:
  base-url: %v
  app-id: cli_a1b2c3
  app-secret: secret
`, api, dir, feishu)

	path := filepath.Join(t.TempDir(), "schedule-sheets.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Error writing configuration (%v)", err)
	}

	return &Options{Config: path}
}

func TestSyncPublishesAggregatedSchedule(t *testing.T) {
	api := scheduleAPI(t, "2025-11-12", "2025-11-13", "2025-11-14")
	feishu := newFeishuAPI(t)
	dir := t.TempDir()

	cmd := Sync{date: "2025-11-12", publish: true}
	if err := cmd.Execute(configure(t, api.URL, feishu.URL, dir)); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if len(feishu.values) != 1 {
		t.Fatalf("Expected 1 values write, got %v", len(feishu.values))
	}

	values := feishu.values[0]
	if len(values) != 4 {
		t.Fatalf("Expected header and 3 rows in published sheet, got %v rows", len(values))
	}

	header := values[0]
	if header[0] != schedule.LabelSequence {
		t.Errorf("Expected %v as first published column, got %v", schedule.LabelSequence, header[0])
	}

	index := map[string]int{}
	for i, h := range header {
		index[fmt.Sprintf("%v", h)] = i
	}

	for _, c := range []string{schedule.LabelStatus, schedule.LabelMedal} {
		if _, ok := index[c]; !ok {
			t.Errorf("Expected column %v in published sheet", c)
		}
	}

	sequence := []any{}
	dates := []any{}
	for _, row := range values[1:] {
		sequence = append(sequence, row[0])
		dates = append(dates, row[index[schedule.LabelDate]])
	}

	if expected := []any{"1", "2", "3"}; !reflect.DeepEqual(sequence, expected) {
		t.Errorf("Incorrect published sequence\n   expected:%v\n   got:     %v", expected, sequence)
	}

	if expected := []any{"2025-11-12", "2025-11-13", "2025-11-14"}; !reflect.DeepEqual(dates, expected) {
		t.Errorf("Incorrect published dates\n   expected:%v\n   got:     %v", expected, dates)
	}

	// ... export holds only the target date
	file := export.Filename(dir, export.DefaultPrefix, civil.Date{Year: 2025, Month: 11, Day: 12})

	f, err := excelize.OpenFile(file)
	if err != nil {
		t.Fatalf("Error opening exported file (%v)", err)
	}

	defer f.Close()

	rows, err := f.GetRows(export.DefaultSheet)
	if err != nil {
		t.Fatalf("Error reading exported file (%v)", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected header and 1 row in exported file, got %v rows", len(rows))
	}

	for _, c := range rows[0] {
		if c == schedule.LabelStatus || c == schedule.LabelMedal || c == schedule.LabelSequence {
			t.Errorf("Unexpected column %v in exported file", c)
		}
	}

	for i, c := range rows[0] {
		if c == schedule.LabelDate && rows[1][i] != "2025-11-12" {
			t.Errorf("Incorrect exported date - expected:%v, got:%v", "2025-11-12", rows[1][i])
		}
	}
}

func TestSyncWithoutPublish(t *testing.T) {
	api := scheduleAPI(t, "2025-11-12", "2025-11-13")
	feishu := newFeishuAPI(t)
	dir := t.TempDir()

	cmd := Sync{date: "2025-11-13"}
	if err := cmd.Execute(configure(t, api.URL, feishu.URL, dir)); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if len(feishu.values) != 0 {
		t.Errorf("Expected no published values, got %v writes", len(feishu.values))
	}

	file := export.Filename(dir, export.DefaultPrefix, civil.Date{Year: 2025, Month: 11, Day: 13})
	if _, err := os.Stat(file); err != nil {
		t.Errorf("Expected exported file %v (%v)", file, err)
	}
}
