// Package api is the REST client for the todo backend.
//
// list and create are judged by the response envelope; update, complete and
// delete are judged by HTTP status alone.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskflow/internal/logging"
	"github.com/idilsaglam/taskflow/internal/model"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:8000/api"

// envelope wraps list and create responses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

type bodyRequest struct {
	Body string `json:"body"`
}

// Client issues the five todo operations. It holds no list state, never
// retries and sets no deadline of its own.
type Client struct {
	baseURL   string
	http      *http.Client
	token     string
	userAgent string
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends the token as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client rooted at baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      http.DefaultClient,
		userAgent: "taskflow",
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root every path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	const op = "list"
	resp, body, err := c.do(ctx, op, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(op, resp.StatusCode, body)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeFailure(op, resp.StatusCode, env)
	}
	if !isArray(env.Data) {
		return nil, &Error{Op: op, Kind: KindEnvelope, Status: resp.StatusCode, Message: "data is not an array"}
	}
	var todos []model.Todo
	if err := json.Unmarshal(env.Data, &todos); err != nil {
		return nil, &Error{Op: op, Kind: KindEnvelope, Status: resp.StatusCode, Err: fmt.Errorf("decode todos: %w", err)}
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts body verbatim; the caller trims and validates it. Only the
// envelope success flag decides the outcome. The returned Todo is zero when
// the server's data could not be decoded as one.
func (c *Client) Create(ctx context.Context, body string) (model.Todo, error) {
	const op = "create"
	resp, raw, err := c.do(ctx, op, http.MethodPost, "/todos", bodyRequest{Body: body})
	if err != nil {
		return model.Todo{}, err
	}
	env, err := decodeEnvelope(op, resp.StatusCode, raw)
	if err != nil {
		return model.Todo{}, err
	}
	if !env.Success {
		return model.Todo{}, envelopeFailure(op, resp.StatusCode, env)
	}
	var todo model.Todo
	if err := json.Unmarshal(env.Data, &todo); err != nil {
		c.logger.Debug("created todo not decoded", "op", op, "status", resp.StatusCode, "err", err)
	}
	return todo, nil
}

// Update replaces the body of a todo. Success is any 2xx status.
func (c *Client) Update(ctx context.Context, id, body string) error {
	return c.statusOnly(ctx, "update", http.MethodPut, id, bodyRequest{Body: body})
}

// Complete marks a todo completed. Success is any 2xx status.
func (c *Client) Complete(ctx context.Context, id string) error {
	return c.statusOnly(ctx, "complete", http.MethodPatch, id, nil)
}

// Delete removes a todo. Success is any 2xx status.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.statusOnly(ctx, "delete", http.MethodDelete, id, nil)
}

func (c *Client) statusOnly(ctx context.Context, op, method, id string, payload any) error {
	resp, raw, err := c.do(ctx, op, method, "/todos/"+url.PathEscape(id), payload)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			e.Message = env.Message
		}
		return e
	}
	return nil
}

// do sends one request and reads the whole response body. Only failures to
// talk to the server are returned as errors; status is left to the caller.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, &Error{Op: op, Kind: KindNetwork, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, &Error{Op: op, Kind: KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "path", path, "err", err)
		return nil, nil, &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug("request", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))
	return resp, raw, nil
}

func decodeEnvelope(op string, status int, raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, &Error{Op: op, Kind: KindEnvelope, Status: status, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	return env, nil
}

func envelopeFailure(op string, status int, env envelope) *Error {
	msg := env.Message
	if env.Error != "" {
		if msg != "" {
			msg += ": "
		}
		msg += env.Error
	}
	if msg == "" {
		msg = "server reported failure"
	}
	return &Error{Op: op, Kind: KindEnvelope, Status: status, Message: msg}
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
