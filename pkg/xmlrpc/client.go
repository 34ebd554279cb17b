// Package xmlrpc implements a minimal XML-RPC client: method calls with
// positional parameters over HTTP, responses decoded into dynamic values,
// and faults surfaced as typed errors.
package xmlrpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout is the HTTP timeout used when no client is supplied.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a response body is read. XML-RPC DNS
// APIs return small documents; anything larger is a misbehaving endpoint.
const maxResponseSize = 1 << 20

// Fault is an XML-RPC fault response.
type Fault struct {
	Code    int64
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

// Client issues XML-RPC method calls against a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given endpoint URI.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Call invokes method with the given positional parameters and returns the
// single response value. Fault responses are returned as a *Fault error.
func (c *Client) Call(ctx context.Context, method string, args ...any) (Value, error) {
	body, err := marshalCall(method, args)
	if err != nil {
		return Value{}, fmt.Errorf("encoding %s call: %w", method, err)
	}

	c.logger.Debug("XML-RPC call",
		slog.String("method", method),
		slog.String("endpoint", c.endpoint),
		slog.Int("params", len(args)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Value{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Value{}, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Value{}, fmt.Errorf("reading %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Value{}, fmt.Errorf("%s: unexpected status code %d: %s", method, resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// parseResponse decodes a methodResponse document.
func parseResponse(data []byte) (Value, error) {
	var mr xmlMethodResponse
	if err := xml.Unmarshal(data, &mr); err != nil {
		return Value{}, fmt.Errorf("parsing response XML: %w", err)
	}

	if mr.Fault != nil {
		fv, err := convertValue(mr.Fault.Value)
		if err != nil {
			return Value{}, fmt.Errorf("parsing fault: %w", err)
		}
		return Value{}, &Fault{
			Code:    fv.IntMember("faultCode"),
			Message: fv.StringMember("faultString"),
		}
	}

	if mr.Params == nil || len(mr.Params.Params) == 0 {
		return Value{}, fmt.Errorf("response has no value")
	}
	if n := len(mr.Params.Params); n != 1 {
		return Value{}, fmt.Errorf("expected single response value, got %d", n)
	}

	return convertValue(mr.Params.Params[0].Value)
}
