// Package dnscheck verifies that registered records are visible in DNS.
package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DefaultQueryTimeout bounds a single DNS exchange.
const DefaultQueryTimeout = 5 * time.Second

// DefaultPollInterval is the delay between verification attempts.
const DefaultPollInterval = 2 * time.Second

// ErrNoMatch indicates the wait ended before the name resolved to the
// expected address.
var ErrNoMatch = errors.New("record did not resolve to expected address")

// Checker queries a resolver for expected records.
type Checker struct {
	resolver  string
	dnsClient *dns.Client
	logger    *slog.Logger
}

// Option is a functional option for configuring the Checker.
type Option func(*Checker)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithQueryTimeout sets the per-query timeout.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		if timeout > 0 {
			c.dnsClient.Timeout = timeout
		}
	}
}

// NewChecker creates a checker against the given resolver address
// (host or host:port). An empty resolver falls back to the system
// configuration in /etc/resolv.conf.
func NewChecker(resolver string, opts ...Option) (*Checker, error) {
	if resolver == "" {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("reading system resolver config: %w", err)
		}
		if len(conf.Servers) == 0 {
			return nil, errors.New("no resolvers in system configuration")
		}
		resolver = net.JoinHostPort(conf.Servers[0], conf.Port)
	} else if _, _, err := net.SplitHostPort(resolver); err != nil {
		resolver = net.JoinHostPort(resolver, "53")
	}

	c := &Checker{
		resolver: resolver,
		dnsClient: &dns.Client{
			Timeout: DefaultQueryTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Resolver returns the resolver address queries are sent to.
func (c *Checker) Resolver() string {
	return c.resolver
}

// CheckA queries for the A record of name and reports whether it resolves
// to the expected address. A name that does not resolve yet returns
// (false, nil), so callers can poll.
func (c *Checker) CheckA(ctx context.Context, name, ip string) (bool, error) {
	want := net.ParseIP(ip)
	if want == nil || want.To4() == nil {
		return false, fmt.Errorf("invalid IPv4 address: %s", ip)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	in, _, err := c.dnsClient.ExchangeContext(ctx, msg, c.resolver)
	if err != nil {
		return false, fmt.Errorf("querying %s for %s: %w", c.resolver, name, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
		// Fall through to answer matching.
	case dns.RcodeNameError:
		// Not visible yet.
		return false, nil
	default:
		return false, fmt.Errorf("querying %s for %s: rcode %s", c.resolver, name, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok && a.A.Equal(want) {
			return true, nil
		}
	}

	c.logger.Debug("record not matched yet",
		slog.String("name", name),
		slog.String("resolver", c.resolver),
		slog.Int("answers", len(in.Answer)),
	)

	return false, nil
}

// WaitForA polls until the A record for name resolves to ip, the context
// is cancelled, or its deadline passes. Transient query errors are logged
// and retried.
func (c *Checker) WaitForA(ctx context.Context, name, ip string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for {
		ok, err := c.CheckA(ctx, name, ip)
		if ok {
			c.logger.Info("record verified",
				slog.String("name", name),
				slog.String("ip", ip),
				slog.String("resolver", c.resolver),
			)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("verifying %s: %w", name, ctx.Err())
			}
			c.logger.Debug("verification attempt failed",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("verifying %s: %w: %w", name, ErrNoMatch, ctx.Err())
		case <-time.After(interval):
		}
	}
}
