package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
)

// maxErrorBody caps how much of a non-2xx body is kept for error messages.
const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string
	// Message is the server's {"error": ...} text, or the raw body when the
	// body is not in that shape.
	Message string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	if e.Message == "" {
		return "ollama: " + status
	}
	return fmt.Sprintf("ollama: %s: %s", status, e.Message)
}

// Client talks to a single Ollama server. The base URL is looked up on every
// call so a watched settings file takes effect without a restart.
type Client struct {
	url     config.URLSource
	http    *http.Client
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBreaker routes generation requests through cb.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// NewClient creates a client reading its base URL from url.
func NewClient(url config.URLSource, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL the next request will use.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.url.BaseURL(), "/")
}

// ListModels calls GET /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+TagsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}

	var resp ModelsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// Generate calls POST /api/generate and blocks until the full response
// arrives. When a breaker is configured and open, the returned error wraps
// gobreaker.ErrOpenState.
func (c *Client) Generate(ctx context.Context, gr *GenerateRequest) (*GenerateResponse, error) {
	if c.breaker == nil {
		return c.generate(ctx, gr)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, gr)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		return nil, err
	}
	return out.(*GenerateResponse), nil
}

func (c *Client) generate(ctx context.Context, gr *GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(gr)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending generate request",
		zap.String("url", req.URL.String()),
		zap.String("model", gr.Model),
		zap.String("keep_alive", gr.KeepAlive),
		zap.Int("images", len(gr.Images)),
		zap.Bool("system", gr.System != ""),
	)

	var resp GenerateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("ollama response",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func newStatusError(resp *http.Response, raw []byte) *StatusError {
	se := &StatusError{Code: resp.StatusCode, Status: resp.Status}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		se.Message = eb.Error
	} else {
		se.Message = strings.TrimSpace(string(raw))
	}
	return se
}
