package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultURL is where AnkiConnect listens unless configured otherwise.
const DefaultURL = "http://localhost:8765"

// apiVersion is the AnkiConnect protocol version this client speaks.
const apiVersion = 6

// Client talks to the AnkiConnect JSON-RPC endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport. Timeouts belong here; the client
// itself never imposes one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-action debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the store at url. An empty url selects DefaultURL.
func New(url string, opts ...Option) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client is bound to.
func (c *Client) URL() string {
	return c.url
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Invoke performs a single action and decodes the result into out, which
// may be nil when the caller does not need the result.
func (c *Client) Invoke(ctx context.Context, action string, params any, out any) error {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(request{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &ConnectionError{URL: c.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("anki request", "action", action, "url", c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ConnectionError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{Action: action, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{URL: c.url, Err: err}
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &ProtocolError{Action: action, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if envelope.Error != nil {
		c.logger.Debug("anki error", "action", action, "error", *envelope.Error)
		return &ProtocolError{Action: action, Message: *envelope.Error}
	}

	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &ProtocolError{Action: action, Message: fmt.Sprintf("unexpected result shape: %v", err)}
	}
	return nil
}
