package fetch

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http/httpproxy"
)

// NewHTTPClient builds the client used for discipline requests. An explicit proxy URL
// takes precedence over the HTTP_PROXY/HTTPS_PROXY/NO_PROXY environment.
func NewHTTPClient(proxy string, timeout time.Duration, log logrus.FieldLogger) *http.Client {
	cfg := httpproxy.FromEnvironment()
	if proxy != "" {
		if _, err := url.Parse(proxy); err != nil {
			log.WithError(err).WithField("proxy", proxy).Warn("invalid proxy URL, using environment")
		} else {
			cfg = &httpproxy.Config{
				HTTPProxy:  proxy,
				HTTPSProxy: proxy,
				NoProxy:    cfg.NoProxy,
			}
			log.WithField("proxy", proxy).Debug("using proxy")
		}
	}

	proxyFunc := cfg.ProxyFunc()
	transport := &http.Transport{
		Proxy: func(rq *http.Request) (*url.URL, error) {
			return proxyFunc(rq.URL)
		},
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &gzipTransport{
			transport: transport,
			log:       log,
		},
	}
}

type gzipTransport struct {
	transport http.RoundTripper
	log       logrus.FieldLogger
}

var gzipMagic = []byte{0x1f, 0x8b}

// RoundTrip works on a clone of the request. A body labelled gzip that does not start
// with the gzip magic bytes is returned unread.
func (t *gzipTransport) RoundTrip(rq *http.Request) (*http.Response, error) {
	rq = rq.Clone(rq.Context())
	rq.Header.Set("Accept-Encoding", "gzip")

	response, err := t.transport.RoundTrip(rq)
	if err != nil {
		return nil, err
	}

	if response.Header.Get("Content-Encoding") == "gzip" {
		buffered := bufio.NewReader(response.Body)

		if magic, _ := buffered.Peek(len(gzipMagic)); !bytes.Equal(magic, gzipMagic) {
			t.log.Warn("invalid gzip response body, returning raw body")
			response.Body = &bufferedReadCloser{Reader: buffered, body: response.Body}
			return response, nil
		}

		reader, err := gzip.NewReader(buffered)
		if err != nil {
			response.Body.Close()
			return nil, err
		}

		response.Body = &gzipReadCloser{Reader: reader, body: response.Body}
		response.Header.Del("Content-Encoding")
		response.Header.Del("Content-Length")
		response.ContentLength = -1
	}

	return response, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		g.body.Close()
		return err
	}

	return g.body.Close()
}

type bufferedReadCloser struct {
	*bufio.Reader
	body io.ReadCloser
}

func (b *bufferedReadCloser) Close() error {
	return b.body.Close()
}
