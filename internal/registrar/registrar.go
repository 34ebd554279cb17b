// Package registrar implements the subdomain registration workflows on top
// of the provider API client.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/subreg/providers/loopia"
)

// DefaultPropagationDelay is the pause between registering a subdomain and
// adding its first record. The provider applies subdomain creation
// asynchronously, and an immediate record write can race it.
const DefaultPropagationDelay = time.Second

// ZoneAPI is the slice of the provider API the registrar needs.
type ZoneAPI interface {
	AddSubdomain(ctx context.Context, domain, subdomain string) error
	AddZoneRecord(ctx context.Context, domain, subdomain string, record loopia.ZoneRecord) error
	RemoveSubdomain(ctx context.Context, domain, subdomain string) error
	RemoveZoneRecord(ctx context.Context, domain, subdomain string, recordID int) error
	GetZoneRecords(ctx context.Context, domain, subdomain string) ([]loopia.ZoneRecord, error)
	GetSubdomains(ctx context.Context, domain string) ([]string, error)
}

// Config holds registrar settings.
type Config struct {
	// Domain is the parent domain subdomains are registered under.
	Domain string

	// PropagationDelay is the wait between the two registration calls.
	// Zero means DefaultPropagationDelay.
	PropagationDelay time.Duration

	// DryRun logs planned operations without calling the API.
	DryRun bool
}

// Registrar drives subdomain registration against a ZoneAPI.
type Registrar struct {
	api    ZoneAPI
	domain string
	delay  time.Duration
	dryRun bool
	logger *slog.Logger
}

// Option is a functional option for configuring the Registrar.
type Option func(*Registrar)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Registrar for the configured domain.
func New(api ZoneAPI, cfg Config, opts ...Option) (*Registrar, error) {
	if api == nil {
		return nil, errors.New("zone API is required")
	}
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}

	delay := cfg.PropagationDelay
	if delay <= 0 {
		delay = DefaultPropagationDelay
	}

	r := &Registrar{
		api:    api,
		domain: cfg.Domain,
		delay:  delay,
		dryRun: cfg.DryRun,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// FQDN returns the fully qualified name of a subdomain under the
// configured domain.
func (r *Registrar) FQDN(subdomain string) string {
	return subdomain + "." + r.domain
}

// Register creates the subdomain and then its zone record, waiting the
// propagation delay in between. The two calls are issued strictly in
// order; a failed subdomain registration aborts the sequence.
func (r *Registrar) Register(ctx context.Context, subdomain string, record loopia.ZoneRecord) error {
	if err := ValidateSubdomain(subdomain); err != nil {
		return err
	}

	if r.dryRun {
		r.logger.Info("dry-run: would register subdomain",
			slog.String("fqdn", r.FQDN(subdomain)),
			slog.String("type", record.Type),
			slog.String("rdata", record.Rdata),
			slog.Int("ttl", record.TTL),
		)
		return nil
	}

	r.logger.Info("registering subdomain",
		slog.String("fqdn", r.FQDN(subdomain)),
	)

	if err := r.api.AddSubdomain(ctx, r.domain, subdomain); err != nil {
		return fmt.Errorf("registering %s: %w", r.FQDN(subdomain), err)
	}

	// Give the provider time to apply the subdomain before writing into it.
	if err := wait(ctx, r.delay); err != nil {
		return fmt.Errorf("waiting for propagation: %w", err)
	}

	if err := r.api.AddZoneRecord(ctx, r.domain, subdomain, record); err != nil {
		return fmt.Errorf("registering %s: %w", r.FQDN(subdomain), err)
	}

	return nil
}

// Deregister removes every zone record under the subdomain and then the
// subdomain itself.
func (r *Registrar) Deregister(ctx context.Context, subdomain string) error {
	if err := ValidateSubdomain(subdomain); err != nil {
		return err
	}

	if r.dryRun {
		r.logger.Info("dry-run: would deregister subdomain",
			slog.String("fqdn", r.FQDN(subdomain)),
		)
		return nil
	}

	records, err := r.api.GetZoneRecords(ctx, r.domain, subdomain)
	if err != nil {
		return fmt.Errorf("deregistering %s: %w", r.FQDN(subdomain), err)
	}

	for _, rec := range records {
		if err := r.api.RemoveZoneRecord(ctx, r.domain, subdomain, rec.RecordID); err != nil {
			return fmt.Errorf("deregistering %s: %w", r.FQDN(subdomain), err)
		}
	}

	if err := r.api.RemoveSubdomain(ctx, r.domain, subdomain); err != nil {
		return fmt.Errorf("deregistering %s: %w", r.FQDN(subdomain), err)
	}

	r.logger.Info("deregistered subdomain",
		slog.String("fqdn", r.FQDN(subdomain)),
		slog.Int("records_removed", len(records)),
	)

	return nil
}

// Records lists the zone records under a subdomain.
func (r *Registrar) Records(ctx context.Context, subdomain string) ([]loopia.ZoneRecord, error) {
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, err
	}
	return r.api.GetZoneRecords(ctx, r.domain, subdomain)
}

// Subdomains lists the subdomains of the configured domain.
func (r *Registrar) Subdomains(ctx context.Context) ([]string, error) {
	return r.api.GetSubdomains(ctx, r.domain)
}

// ValidateSubdomain checks that a name is usable as a subdomain: one or
// more DNS labels of letters, digits, and inner hyphens.
func ValidateSubdomain(name string) error {
	if name == "" {
		return errors.New("subdomain must not be empty")
	}
	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("subdomain %q must not end with a dot", name)
	}

	for _, label := range strings.Split(name, ".") {
		if err := validateLabel(label); err != nil {
			return fmt.Errorf("subdomain %q: %w", name, err)
		}
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return errors.New("empty label")
	}
	if len(label) > 63 {
		return fmt.Errorf("label %q exceeds 63 characters", label)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("label %q must not start or end with a hyphen", label)
	}
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return fmt.Errorf("label %q contains invalid character %q", label, c)
		}
	}
	return nil
}

// wait sleeps for d, honoring context cancellation.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
