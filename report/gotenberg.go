// Package report renders list exports to PDF through a Gotenberg instance.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Layout controls the Chromium page setup. Sizes are in inches.
type Layout struct {
	Landscape       bool
	PaperWidth      float64
	PaperHeight     float64
	Margin          float64
	PrintBackground bool
}

// A4Landscape fits the wide master tables on one page width.
var A4Landscape = Layout{Landscape: true, PaperWidth: 11.7, PaperHeight: 8.27, Margin: 0.4, PrintBackground: true}

func (l Layout) fields() map[string]string {
	margin := strconv.FormatFloat(l.Margin, 'f', -1, 64)
	return map[string]string{
		"landscape":       strconv.FormatBool(l.Landscape),
		"paperWidth":      strconv.FormatFloat(l.PaperWidth, 'f', -1, 64),
		"paperHeight":     strconv.FormatFloat(l.PaperHeight, 'f', -1, 64),
		"marginTop":       margin,
		"marginBottom":    margin,
		"marginLeft":      margin,
		"marginRight":     margin,
		"printBackground": strconv.FormatBool(l.PrintBackground),
	}
}

// RenderError is a non-success answer from Gotenberg.
type RenderError struct {
	Op     string
	Status int
	Body   string
}

func (e *RenderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gotenberg %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("gotenberg %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client talks to the Gotenberg HTTP API.
type Client struct {
	baseURL    string
	layout     Layout
	httpClient *http.Client
}

// NewClient builds a client rendering with A4Landscape.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		layout:     A4Landscape,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithLayout returns a copy of c using layout.
func (c *Client) WithLayout(layout Layout) *Client {
	clone := *c
	clone.layout = layout
	return &clone
}

// Ping reads /health and fails unless Gotenberg reports itself up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	body, err := c.do(req, "health")
	if err != nil {
		return err
	}
	var health struct {
		Status string `json:"status"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("gotenberg health: decode: %w", err)
	}
	if health.Status != "" && health.Status != "up" {
		return fmt.Errorf("gotenberg health: status %q", health.Status)
	}
	return nil
}

// RenderHTML converts a standalone HTML document into a PDF.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for name, value := range c.layout.fields() {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, "convert")
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg %s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &RenderError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return io.ReadAll(resp.Body)
}
