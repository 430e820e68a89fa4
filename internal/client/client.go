package client

import (
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/logging"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

// validatable is implemented by every response schema so a body that decodes
// but is missing required fields still fails at the boundary.
type validatable interface {
	Validate() error
}

// Client is a JSON client for one REST base URL of the remote boundary.
// It forwards the caller's Authorization header and trace id.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// do sends one request. out may be nil when no body is expected. Failures
// come back as errdefs.RequestError, TransportError or ParseError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Debug(ctx, "Sending request", zap.String("op", op), zap.String("method", method), zap.String("url", req.URL.String()))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &errdefs.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errdefs.TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errdefs.RequestError{StatusCode: resp.StatusCode, Message: ParseDetail(raw, http.StatusText(resp.StatusCode))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errdefs.ParseError{Op: op, Err: err}
	}
	if v, ok := out.(validatable); ok {
		if err := v.Validate(); err != nil {
			return &errdefs.ParseError{Op: op, Err: err}
		}
	}

	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Debug(ctx, "Received response", zap.String("op", op), zap.Int("status", resp.StatusCode))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if header, ok := ctxdata.GetAuthHeader(ctx); ok {
		req.Header.Set("Authorization", header)
	}
	if traceID, ok := ctxdata.GetTraceID(ctx); ok {
		req.Header.Set("X-Trace-Id", traceID)
	}
	return req, nil
}
