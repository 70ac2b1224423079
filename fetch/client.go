package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL   = "https://infoapi.baygames.cn"
	DefaultReferer   = "https://wrs.baygames.cn/"
	DefaultOrigin    = "https://wrs.baygames.cn"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	disciplinePath = "/api/info/scheduleUnit/Discipline"
	maxBody        = 16 << 20
)

// Status classifies the outcome of a discipline fetch.
type Status int

const (
	Found Status = iota
	Empty
	Failed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}

// Result is the outcome of fetching one discipline. Document is only set when Status
// is Found and Err is only set when Status is Failed.
type Result struct {
	Discipline string
	Status     Status
	Document   []byte
	Err        error
}

type Config struct {
	BaseURL   string        `mapstructure:"base-url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
	Referer   string        `mapstructure:"referer"`
	Origin    string        `mapstructure:"origin"`
	Proxy     string        `mapstructure:"proxy"`
}

// Client retrieves per-discipline schedule documents. It does not retry.
type Client struct {
	http    *http.Client
	baseURL string
	headers http.Header
	log     logrus.FieldLogger
}

// NewClient creates a Client, filling in defaults for any unset Config fields. A nil
// HTTP client builds one from the Config timeout and proxy settings.
func NewClient(cfg Config, client *http.Client, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if client == nil {
		client = NewHTTPClient(cfg.Proxy, cfg.Timeout, log)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json, text/plain, */*")
	headers.Set("User-Agent", or(cfg.UserAgent, DefaultUserAgent))
	headers.Set("Referer", or(cfg.Referer, DefaultReferer))
	headers.Set("Origin", or(cfg.Origin, DefaultOrigin))

	return &Client{
		http:    client,
		baseURL: baseURL,
		headers: headers,
		log:     log,
	}
}

// Fetch retrieves the schedule document for a discipline code. A zero date omits the
// date filter. Transport errors, non-2xx responses and non-JSON bodies are reported
// as Failed, an empty JSON document as Empty.
func (c *Client) Fetch(ctx context.Context, code string, date civil.Date) Result {
	log := c.log.WithField("discipline", code)

	doc, err := c.get(ctx, code, date)
	if err != nil {
		log.WithError(err).Warn("fetch failed")
		return Result{Discipline: code, Status: Failed, Err: err}
	}

	if isEmpty(doc) {
		log.Info("no schedule data")
		return Result{Discipline: code, Status: Empty}
	}

	log.WithField("bytes", len(doc)).Debug("fetched schedule")

	return Result{
		Discipline: code,
		Status:     Found,
		Document:   doc,
	}
}

func (c *Client) get(ctx context.Context, code string, date civil.Date) ([]byte, error) {
	query := url.Values{}
	query.Set("Discipline", code)
	if !date.IsZero() {
		query.Set("Date", date.String())
	}

	uri := c.baseURL + disciplinePath + "?" + query.Encode()

	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	for k, v := range c.headers {
		rq.Header[k] = v
	}

	response, err := c.http.Do(rq)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}

	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBody))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, errors.Newf("unexpected status %d (%s)", response.StatusCode, abbreviate(body))
	}

	if !isEmpty(body) && !sonic.Valid(body) {
		return nil, errors.Newf("invalid JSON response (%s)", abbreviate(body))
	}

	return body, nil
}

func isEmpty(doc []byte) bool {
	switch string(bytes.TrimSpace(doc)) {
	case "", "{}", "null", "[]":
		return true
	}

	return false
}

func abbreviate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 128 {
		return fmt.Sprintf("%s...", s[:128])
	}

	return s
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}

	return s
}
