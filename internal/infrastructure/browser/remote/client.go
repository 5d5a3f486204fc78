// Package remote drives a browser session hosted by the browser service.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/infrastructure/httpapi"
)

var _ output.BrowserPort = (*Client)(nil)

// Client implements BrowserPort against a remote browser service. Selector
// resolution happens server side; text targets are sent as text="...".
type Client struct {
	baseURL string
	http    *http.Client
	logger  output.LoggerPort
}

func NewClient(baseURL string, timeout time.Duration, logger output.LoggerPort) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Init(ctx context.Context, headless bool) error {
	return c.call(ctx, http.MethodPost, "/init", httpapi.InitRequest{Headless: headless}, nil)
}

func (c *Client) Navigate(ctx context.Context, url string) error {
	return c.call(ctx, http.MethodPost, "/navigate", httpapi.NavigateRequest{URL: url}, nil)
}

func (c *Client) DOM(ctx context.Context) ([]entity.PageElement, error) {
	var resp httpapi.DOMResponse
	if err := c.call(ctx, http.MethodGet, "/dom", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (c *Client) State(ctx context.Context) (*entity.BrowserState, error) {
	var state entity.BrowserState
	if err := c.call(ctx, http.MethodGet, "/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Network(ctx context.Context) ([]entity.NetworkEntry, error) {
	var resp httpapi.NetworkResponse
	if err := c.call(ctx, http.MethodGet, "/network", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	var resp httpapi.ScreenshotResponse
	if err := c.call(ctx, http.MethodGet, "/screenshot", nil, &resp); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(resp.Screenshot)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	format := resp.ImageType
	if format == "" {
		format = "png"
	}
	return &entity.Screenshot{Data: data, Format: format, Width: resp.Width, Height: resp.Height}, nil
}

func (c *Client) HTML(ctx context.Context) (string, error) {
	var resp httpapi.HTMLResponse
	if err := c.call(ctx, http.MethodGet, "/html", nil, &resp); err != nil {
		return "", err
	}
	return resp.HTML, nil
}

func (c *Client) ClickSelector(ctx context.Context, selector string) error {
	return c.call(ctx, http.MethodPost, "/click", httpapi.ClickRequest{Selector: selector}, nil)
}

func (c *Client) ClickText(ctx context.Context, text string) error {
	return c.call(ctx, http.MethodPost, "/click", httpapi.ClickRequest{Selector: textSelector(text)}, nil)
}

func (c *Client) FillSelector(ctx context.Context, selector, text string) error {
	return c.call(ctx, http.MethodPost, "/input", httpapi.InputRequest{Selector: selector, Text: text}, nil)
}

func (c *Client) FillText(ctx context.Context, label, text string) error {
	return c.call(ctx, http.MethodPost, "/input", httpapi.InputRequest{Selector: textSelector(label), Text: text}, nil)
}

// AddBackendLog forwards a server-side log line. Failures are only logged.
func (c *Client) AddBackendLog(line string) {
	err := c.call(context.Background(), http.MethodPost, "/backend-logs", httpapi.BackendLogRequest{Lines: []string{line}}, nil)
	if err != nil {
		c.logger.Warn("Failed to forward backend log", "error", err)
	}
}

func (c *Client) Finalize(ctx context.Context, tracingPath string) (*entity.FinalizeResult, error) {
	var resp httpapi.StopResponse
	if err := c.call(ctx, http.MethodPost, "/stop", httpapi.StopRequest{TracingPath: tracingPath}, &resp); err != nil {
		return nil, err
	}
	return &entity.FinalizeResult{TracingPath: resp.TracingPath, VideoPath: resp.VideoPath}, nil
}

func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.call(ctx, http.MethodPost, "/close", nil, nil)
}

func textSelector(text string) string {
	return `text="` + strings.ReplaceAll(text, `"`, `\"`) + `"`
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("browser service %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e httpapi.ErrorResponse
		if jerr := json.Unmarshal(data, &e); jerr != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		if sentinel := httpapi.CodeError(e.Code); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, e.Error)
		}
		return fmt.Errorf("browser service %s: status %d: %s", path, resp.StatusCode, e.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
