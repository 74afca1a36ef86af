// Package webhook posts feedback payloads to the configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/pkg/logger"
)

const DefaultTimeout = 30 * time.Second

// RejectionError is a response outside 200-299.
type RejectionError struct {
	StatusCode int
	StatusText string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("Webhook returned %d: %s", e.StatusCode, e.StatusText)
}

// TransportError means no response was received: DNS, connect, TLS or
// timeout failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client performs exactly one POST per call. It never retries.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP wraps an existing http.Client.
func NewClientWithHTTP(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Post sends payload as JSON to endpoint. The response body is discarded.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectionError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	logger.Debug("Webhook accepted payload",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// statusText is the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// unwrapURLError drops the "Post \"<url>\": " prefix net/http adds, keeping
// the underlying transport message.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
