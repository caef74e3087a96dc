package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"
)

// Client downloads binary image bytes over plain HTTP. Transient
// failures are retried a bounded number of times; past that the error
// escalates to the caller.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func New(timeout time.Duration, retryCount int) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &Client{
		http:   client,
		logger: slog.Default().With("component", "image_fetch"),
	}
}

// SetTransport swaps the underlying transport; tests install a mock
// here.
func (c *Client) SetTransport(transport http.RoundTripper) *Client {
	c.http.SetTransport(transport)
	return c
}

func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug("fetching image", "url", url)

	resp, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: HTTP %d %s", url, resp.StatusCode(), resp.Status())
	}

	return resp.Bytes(), nil
}

func (c *Client) Close() error {
	return c.http.Close()
}
