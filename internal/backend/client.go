package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout   = 15 * time.Second
	maxErrorBodySize = 4096
)

// Client is a REST connection to one backend service.
type Client struct {
	name string
	http *resty.Client
}

var _ Service = (*Client)(nil)

// Option customises client instantiation.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// New constructs a Client for the backend named name rooted at base.
func New(name, base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("%s api base url required", name)
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid %s api base url: %w", name, err)
	}
	registerMetrics()
	c := &Client{
		name: name,
		http: resty.New().
			SetBaseURL(strings.TrimRight(trimmed, "/")).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name identifies the backend in errors and metrics.
func (c *Client) Name() string {
	return c.name
}

// Find issues GET /<resource>?filter=<json> and decodes the array into out.
func (c *Client) Find(ctx context.Context, resource string, filter Filter, out any) error {
	encoded, err := filter.Encode()
	if err != nil {
		return err
	}
	req := c.request(ctx).SetQueryParam("filter", encoded)
	return c.do(req, http.MethodGet, "/"+strings.Trim(resource, "/"), resource, out)
}

// Count issues GET /<resource>/count?where=<json>.
func (c *Client) Count(ctx context.Context, resource string, where Where) (int64, error) {
	raw, err := json.Marshal(where)
	if err != nil {
		return 0, fmt.Errorf("encode where: %w", err)
	}
	req := c.request(ctx).SetQueryParam("where", string(raw))
	var payload struct {
		Count int64 `json:"count"`
	}
	if err := c.do(req, http.MethodGet, "/"+strings.Trim(resource, "/")+"/count", resource, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// Get decodes the resource at path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(c.request(ctx), http.MethodGet, path, resourceOf(path), out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	req := c.request(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.do(req, http.MethodPost, path, resourceOf(path), out)
}

// Put replaces the resource at path with body.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	req := c.request(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.do(req, http.MethodPut, path, resourceOf(path), out)
}

// PostBasicAuth posts an empty body authenticated with HTTP basic auth.
func (c *Client) PostBasicAuth(ctx context.Context, path, username, password string, out any) error {
	req := c.request(ctx).SetBasicAuth(username, password)
	return c.do(req, http.MethodPost, path, resourceOf(path), out)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.http.R().SetContext(ctx)
}

func (c *Client) do(req *resty.Request, method, path, resource string, out any) error {
	if c == nil {
		return errors.New("backend client is nil")
	}
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		observeRequest(c.name, method, resource, "error", time.Since(start))
		return fmt.Errorf("%s %s %s: %w", c.name, method, path, err)
	}
	observeRequest(c.name, method, resource, statusClass(resp.StatusCode()), time.Since(start))

	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{
			Backend: c.name,
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode(),
			Message: extractError(resp.Body()),
		}
	}
	body := resp.Body()
	if out == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", c.name, path, err)
	}
	return nil
}

// extractError pulls a message out of LoopBack's {"error": {...}} envelope,
// falling back to the raw body.
func extractError(body []byte) string {
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(body))
	}
	var message string
	if err := json.Unmarshal(payload.Error, &message); err == nil {
		return strings.TrimSpace(message)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
		return strings.TrimSpace(nested.Message)
	}
	return strings.TrimSpace(string(payload.Error))
}

func resourceOf(path string) string {
	trimmed := strings.Trim(path, "/")
	if idx := strings.IndexAny(trimmed, "/?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
