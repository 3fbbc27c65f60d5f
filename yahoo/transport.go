package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"
)

// loggingTransport logs every request and sets the User-Agent header.
type loggingTransport struct {
	base      http.RoundTripper
	logger    *log.Logger
	userAgent string
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Err(err).Msg("http request failed")
		return nil, err
	}
	t.logger.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("http request")
	return resp, nil
}

// newHTTPClient returns an http.Client that logs its requests.
func newHTTPClient(logger *log.Logger, userAgent string, timeout time.Duration) *http.Client {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{base: http.DefaultTransport, logger: logger, userAgent: userAgent},
	}
}

// maxBodySize bounds the documents read from upstream.
const maxBodySize = 4 << 20

// get performs an HTTP GET request and returns the body, which must be a JSON document.
func (c *Client) get(ctx context.Context, addr string) ([]byte, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBodySize+1)); err != nil {
		return nil, err
	}
	if buf.Len() > maxBodySize {
		return nil, fmt.Errorf("response from %v%v exceeds %d bytes", resp.Request.URL.Host, resp.Request.URL.Path, maxBodySize)
	}
	if !json.Valid(buf.Bytes()) {
		return nil, errors.New("response is not a JSON document")
	}
	return buf.Bytes(), nil
}

// jwget performs an HTTP GET request and decodes the JSON response, keeping numbers exact.
func (c *Client) jwget(ctx context.Context, addr string) (any, error) {
	body, err := c.get(ctx, addr)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, err
	}
	return jobj, nil
}
