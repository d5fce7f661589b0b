// Package api is the HTTP client for the verification service, plus the
// wire types shared with the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/verify"
)

const defaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

// Client talks to a linguiz server. It implements session.ExerciseStore
// and verify.Service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ verify.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the overall timeout of each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.client
		hc.Timeout = d
		c.client = &hc
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchExercises lists exercises. The server strips answer keys.
func (c *Client) FetchExercises(ctx context.Context, filter exercise.Filter) ([]*exercise.Exercise, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Level != "" {
		q.Set("difficulty", string(filter.Level))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/api/exercises"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var exs []*exercise.Exercise
	if err := c.do(ctx, http.MethodGet, path, nil, &exs); err != nil {
		return nil, fmt.Errorf("fetch exercises: %w", err)
	}
	return exs, nil
}

// VerifyAnswer asks the server to score answer. A blank answer requests
// the timeout verdict.
func (c *Client) VerifyAnswer(ctx context.Context, exerciseID, answer string) (verify.Outcome, error) {
	path := "/api/exercises/" + url.PathEscape(exerciseID) + "/verify"

	var out verify.Outcome
	if err := c.do(ctx, http.MethodPost, path, VerifyRequest{Answer: answer}, &out); err != nil {
		return verify.Outcome{}, err
	}
	return out, nil
}

// Health returns the server's health report.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var h HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return HealthResponse{}, fmt.Errorf("health check: %w", err)
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var er ErrorResponse
	if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
		se.Code = er.Error.Code
		se.Message = er.Error.Message
	} else {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}
