// Package loopia implements a client for the Loopia-style XML-RPC DNS API:
// subdomain and zone record management under a single customer account.
// Credentials are passed as leading positional parameters on every call,
// which is how this API authenticates.
package loopia

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gitlab.bluewillows.net/root/subreg/pkg/xmlrpc"
)

// Client is a DNS API client bound to one set of credentials.
type Client struct {
	username   string
	password   string
	rpc        *xmlrpc.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for the underlying transport.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new API client for the given endpoint and credentials.
func NewClient(endpoint, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		username: username,
		password: password,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	rpcOpts := []xmlrpc.Option{xmlrpc.WithLogger(c.logger)}
	if c.httpClient != nil {
		rpcOpts = append(rpcOpts, xmlrpc.WithHTTPClient(c.httpClient))
	}
	c.rpc = xmlrpc.NewClient(endpoint, rpcOpts...)

	return c
}

// call invokes an API method with credentials prepended to the arguments.
func (c *Client) call(ctx context.Context, method string, args ...any) (xmlrpc.Value, error) {
	full := append([]any{c.username, c.password}, args...)
	return c.rpc.Call(ctx, method, full...)
}

// callStatus invokes a mutating method and checks its status string result.
func (c *Client) callStatus(ctx context.Context, method string, args ...any) error {
	v, err := c.call(ctx, method, args...)
	if err != nil {
		return err
	}
	if v.Kind != xmlrpc.KindString {
		return fmt.Errorf("%s: expected status string, got %s", method, v.Kind)
	}
	return statusError(method, v.Str)
}

// AddSubdomain registers a subdomain under the domain.
func (c *Client) AddSubdomain(ctx context.Context, domain, subdomain string) error {
	if err := c.callStatus(ctx, "addSubdomain", domain, subdomain); err != nil {
		return fmt.Errorf("adding subdomain %s.%s: %w", subdomain, domain, err)
	}

	c.logger.Info("added subdomain",
		slog.String("subdomain", subdomain),
		slog.String("domain", domain),
	)

	return nil
}

// AddZoneRecord creates a zone record under the subdomain.
func (c *Client) AddZoneRecord(ctx context.Context, domain, subdomain string, record ZoneRecord) error {
	if err := c.callStatus(ctx, "addZoneRecord", domain, subdomain, record.toStruct()); err != nil {
		return fmt.Errorf("adding %s record for %s.%s: %w", record.Type, subdomain, domain, err)
	}

	c.logger.Info("added zone record",
		slog.String("subdomain", subdomain),
		slog.String("domain", domain),
		slog.String("type", record.Type),
		slog.String("rdata", record.Rdata),
		slog.Int("ttl", record.TTL),
	)

	return nil
}

// RemoveZoneRecord deletes a zone record by its server-assigned id.
func (c *Client) RemoveZoneRecord(ctx context.Context, domain, subdomain string, recordID int) error {
	if err := c.callStatus(ctx, "removeZoneRecord", domain, subdomain, recordID); err != nil {
		return fmt.Errorf("removing record %d for %s.%s: %w", recordID, subdomain, domain, err)
	}

	c.logger.Info("removed zone record",
		slog.String("subdomain", subdomain),
		slog.String("domain", domain),
		slog.Int("record_id", recordID),
	)

	return nil
}

// RemoveSubdomain deletes a subdomain and everything under it.
func (c *Client) RemoveSubdomain(ctx context.Context, domain, subdomain string) error {
	if err := c.callStatus(ctx, "removeSubdomain", domain, subdomain); err != nil {
		return fmt.Errorf("removing subdomain %s.%s: %w", subdomain, domain, err)
	}

	c.logger.Info("removed subdomain",
		slog.String("subdomain", subdomain),
		slog.String("domain", domain),
	)

	return nil
}

// GetZoneRecords retrieves the zone records under a subdomain.
func (c *Client) GetZoneRecords(ctx context.Context, domain, subdomain string) ([]ZoneRecord, error) {
	v, err := c.call(ctx, "getZoneRecords", domain, subdomain)
	if err != nil {
		return nil, fmt.Errorf("getting records for %s.%s: %w", subdomain, domain, err)
	}
	if v.Kind != xmlrpc.KindArray {
		return nil, fmt.Errorf("getZoneRecords: expected array, got %s", v.Kind)
	}

	records := make([]ZoneRecord, 0, len(v.Array))
	for i, rv := range v.Array {
		rec, err := recordFromValue(rv)
		if err != nil {
			return nil, fmt.Errorf("getZoneRecords: record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	c.logger.Debug("retrieved zone records",
		slog.String("subdomain", subdomain),
		slog.String("domain", domain),
		slog.Int("count", len(records)),
	)

	return records, nil
}

// GetSubdomains lists the subdomains registered under the domain.
func (c *Client) GetSubdomains(ctx context.Context, domain string) ([]string, error) {
	v, err := c.call(ctx, "getSubdomains", domain)
	if err != nil {
		return nil, fmt.Errorf("getting subdomains of %s: %w", domain, err)
	}
	if v.Kind != xmlrpc.KindArray {
		return nil, fmt.Errorf("getSubdomains: expected array, got %s", v.Kind)
	}

	subdomains := make([]string, 0, len(v.Array))
	for i, sv := range v.Array {
		if sv.Kind != xmlrpc.KindString {
			return nil, fmt.Errorf("getSubdomains: element %d: expected string, got %s", i, sv.Kind)
		}
		subdomains = append(subdomains, sv.Str)
	}

	c.logger.Debug("retrieved subdomains",
		slog.String("domain", domain),
		slog.Int("count", len(subdomains)),
	)

	return subdomains, nil
}
