// Package infra provides shared infrastructure components used across
// the application: a reusable HTTP client, typed HTTP errors, and a helper
// for running blocking calls off the caller's goroutine.
package infra

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds every upstream call made through a Client.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept on HTTPError.
const maxErrorBody = 2048

// HTTPError is returned for any non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream %s returned %s", e.URL, e.Status)
}

// Client wraps a connection-reusing http.Client shared by all providers.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a client with the given per-call timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		userAgent: "divlens/1.0",
	}
}

var defaultClient = NewClient(DefaultTimeout)

// Default returns the process-wide shared client.
func Default() *Client {
	return defaultClient
}

// DoGet performs a GET with the shared client. The caller must close the body.
// Non-2xx responses are returned as *HTTPError with the body already drained.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	return defaultClient.DoGet(ctx, url, headers)
}

// DoGet performs a GET request. The caller must close the returned body.
func (c *Client) DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", redact(url), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        redact(url),
			Body:       string(snippet),
		}
	}
	return resp.Body, resp.StatusCode, nil
}

// Get performs a GET and returns the full response body.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, _, err := c.DoGet(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// Offload runs a blocking function on its own goroutine and waits for it or
// for ctx to end. When ctx ends first the function keeps running and its
// result is discarded.
func Offload[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- outcome{zero, fmt.Errorf("offloaded call panicked: %v", r)}
			}
		}()
		v, err := fn()
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// redact strips the query string so API keys never reach logs or errors.
func redact(url string) string {
	for i := 0; i < len(url); i++ {
		if url[i] == '?' {
			return url[:i]
		}
	}
	return url
}
