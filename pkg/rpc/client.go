package rpc

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/ratelimit"

	"github.com/snehendu098/ghost/pkg/log"
)

var (
	// ErrTransport is returned when a request could not be delivered or its reply not read.
	ErrTransport = fmt.Errorf("rpc transport error")
	// ErrProtocol is returned for well-formed replies that violate the JSON-RPC contract
	// or carry a server error.
	ErrProtocol = fmt.Errorf("rpc protocol error")
	// ErrDecode is returned when a reply or its result cannot be decoded.
	ErrDecode = fmt.Errorf("rpc decode error")
)

const (
	jsonRPCVersion     = "2.0"
	defaultTimeout     = 30 * time.Second
	maxResponseSize    = 32 << 20
	maxIdleConnections = 16
)

// Error is an error object returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Is makes every server error match ErrProtocol.
func (e *Error) Is(target error) bool {
	return target == ErrProtocol
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Client is a JSON-RPC client bound to one endpoint. It is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    http.Header
	limiter    ratelimit.Limiter
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request, including reading the reply.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outgoing requests at rps per second. Callers over the limit block.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = ratelimit.New(rps)
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// NewClient returns a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = maxIdleConnections

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		headers: headers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string { return c.endpoint }

// Call invokes method with positional params and decodes the result into result.
// A nil result discards it.
func (c *Client) Call(ctx context.Context, method string, params []any, result any) (err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(method, err, started) }()

	if params == nil {
		params = []any{}
	}
	if c.limiter != nil {
		c.limiter.Take()
	}

	id := newRequestID()
	lg := log.FromContext(ctx).WithName("rpc").WithKV("method", method).WithKV("id", id)

	body, err := json.Marshal(request{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	raw, status, err := c.post(ctx, c.endpoint, body)
	if err != nil {
		lg.Debug("request failed", "error", err)
		return err
	}
	lg.Debug("received response", "status", status, "size", len(raw))

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		if status/100 != 2 {
			return fmt.Errorf("%w: unexpected status %d", ErrTransport, status)
		}
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	hasResult := len(resp.Result) > 0
	switch {
	case resp.Error != nil && hasResult:
		return fmt.Errorf("%w: response has both result and error", ErrProtocol)
	case resp.Error != nil:
		return resp.Error
	case !hasResult:
		if status/100 != 2 {
			return fmt.Errorf("%w: unexpected status %d", ErrTransport, status)
		}
		return fmt.Errorf("%w: response has neither result nor error", ErrProtocol)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("%w: %s result: %w", ErrDecode, method, err)
	}
	return nil
}

// post sends body and returns the raw reply with its status code.
func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}
	return raw, resp.StatusCode, nil
}

// newRequestID derives an id that stays exact in JavaScript number precision.
func newRequestID() uint64 {
	u := uuid.New()
	return binary.BigEndian.Uint64(u[:8]) & (1<<53 - 1)
}
