package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Recorder receives gateway instrumentation.
type Recorder interface {
	ObserveGatewayRequest(entity, op, outcome string, elapsed time.Duration)
	IncGatewayFallback(entity string)
}

// Client wraps calls to the remote back-office REST service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fixtures   *Fixtures
	logger     *slog.Logger
	recorder   Recorder
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithFixtures sets the fallback fixture source.
func WithFixtures(f *Fixtures) Option {
	return func(c *Client) { c.fixtures = f }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient constructs a new client. A zero timeout means 30 seconds.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fixtures: NewFixtures(""),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(entity string, segments ...string) string {
	parts := append([]string{c.baseURL, url.PathEscape(entity)}, segments...)
	return strings.Join(parts, "/")
}

func (c *Client) getJSON(ctx context.Context, entity, op, target string, dest any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	err = c.do(req, entity, op, dest)
	c.observe(entity, op, err, time.Since(start))
	return err
}

func (c *Client) postJSON(ctx context.Context, entity string, body any) (json.RawMessage, error) {
	start := time.Now()
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode %s body: %w", entity, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(entity), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	var raw json.RawMessage
	err = c.do(req, entity, "create", &raw)
	c.observe(entity, "create", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(req *http.Request, entity, op string, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, op, entity, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Entity: entity, Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrTransport, entity, err)
	}
	if raw, ok := dest.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrTransport, op, entity, err)
	}
	return nil
}

func (c *Client) observe(entity, op string, err error, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.recorder.ObserveGatewayRequest(entity, op, outcome, elapsed)
}
