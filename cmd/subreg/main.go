// subreg registers DNS subdomains with an XML-RPC DNS provider. It creates
// the subdomain, waits for the provider to apply it, adds the A record
// pointing at the configured address, and can verify the record in DNS.
// Configuration comes from environment variables (optionally via .env) and
// an optional YAML file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"gitlab.bluewillows.net/root/subreg/internal/config"
	"gitlab.bluewillows.net/root/subreg/internal/dnscheck"
	"gitlab.bluewillows.net/root/subreg/internal/registrar"
	"gitlab.bluewillows.net/root/subreg/pkg/httputil"
	"gitlab.bluewillows.net/root/subreg/providers/loopia"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-01-03"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// errUsage marks invocation errors. They exit with status 2; everything
// else exits with status 1.
var errUsage = errors.New("invalid usage")

func main() {
	if err := run(); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}

	// Load configuration first (fail fast)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Debug("subreg starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("go_version", runtime.Version()),
		slog.String("domain", cfg.DomainSuffix),
		slog.Bool("dry_run", cfg.DryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "register":
		return runRegister(ctx, cfg, logger, args[1:])
	case "remove":
		return runRemove(ctx, cfg, logger, args[1:])
	case "list":
		return runList(ctx, cfg, logger, args[1:])
	case "verify":
		return runVerify(ctx, cfg, logger, args[1:])
	default:
		// A bare subdomain argument is the historical invocation; treat it
		// as an implicit register.
		return runRegister(ctx, cfg, logger, args)
	}
}

func runRegister(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	ttl := fs.Int("ttl", cfg.TTL, "record TTL in seconds")
	priority := fs.Int("priority", cfg.Priority, "record priority")
	ip := fs.String("ip", cfg.TargetIP, "record target IPv4 address")
	verify := fs.Bool("verify", cfg.Verify, "wait until the record is visible in DNS")
	dryRun := fs.Bool("dry-run", cfg.DryRun, "log planned operations without calling the API")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: subreg register [flags] <subdomain>")
		return errUsage
	}
	subdomain := fs.Arg(0)

	if parsed := net.ParseIP(*ip); parsed == nil || parsed.To4() == nil {
		return fmt.Errorf("invalid IPv4 address %q", *ip)
	}

	reg, err := newRegistrar(cfg, logger, *dryRun)
	if err != nil {
		return err
	}

	record := loopia.ZoneRecord{
		Type:     "A",
		TTL:      *ttl,
		Priority: *priority,
		Rdata:    *ip,
	}
	if err := reg.Register(ctx, subdomain, record); err != nil {
		return err
	}

	if *verify && !*dryRun {
		checker, err := dnscheck.NewChecker(cfg.Resolver, dnscheck.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("setting up verification: %w", err)
		}

		logger.Info("waiting for record to appear in DNS",
			slog.String("fqdn", reg.FQDN(subdomain)),
			slog.Duration("timeout", cfg.VerifyTimeout),
		)

		vctx, cancel := context.WithTimeout(ctx, cfg.VerifyTimeout)
		defer cancel()
		if err := checker.WaitForA(vctx, reg.FQDN(subdomain), *ip, 0); err != nil {
			return err
		}
	}

	return nil
}

func runRemove(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", cfg.DryRun, "log planned operations without calling the API")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: subreg remove [flags] <subdomain>")
		return errUsage
	}

	reg, err := newRegistrar(cfg, logger, *dryRun)
	if err != nil {
		return err
	}

	return reg.Deregister(ctx, fs.Arg(0))
}

func runList(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "usage: subreg list [<subdomain>]")
		return errUsage
	}

	reg, err := newRegistrar(cfg, logger, false)
	if err != nil {
		return err
	}

	if fs.NArg() == 0 {
		subdomains, err := reg.Subdomains(ctx)
		if err != nil {
			return err
		}
		for _, sub := range subdomains {
			fmt.Println(sub)
		}
		return nil
	}

	subdomain := fs.Arg(0)
	records, err := reg.Records(ctx, subdomain)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%-6s %6d %4d %s (id %d)\n", rec.Type, rec.TTL, rec.Priority, rec.Rdata, rec.RecordID)
	}
	return nil
}

func runVerify(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	ip := fs.String("ip", cfg.TargetIP, "expected IPv4 address")
	timeout := fs.Duration("timeout", cfg.VerifyTimeout, "how long to wait for the record")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: subreg verify [flags] <subdomain>")
		return errUsage
	}
	subdomain := fs.Arg(0)

	if err := registrar.ValidateSubdomain(subdomain); err != nil {
		return err
	}

	checker, err := dnscheck.NewChecker(cfg.Resolver, dnscheck.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("setting up verification: %w", err)
	}

	fqdn := subdomain + "." + cfg.DomainSuffix
	vctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	return checker.WaitForA(vctx, fqdn, *ip, 0)
}

// newRegistrar wires the API client and registrar from configuration.
func newRegistrar(cfg *config.Config, logger *slog.Logger, dryRun bool) (*registrar.Registrar, error) {
	httpClient := httputil.NewClient(&httputil.ClientConfig{
		Timeout:       cfg.Timeout,
		TLSSkipVerify: cfg.TLSSkipVerify,
		Logger:        logger,
	})

	client := loopia.NewClient(cfg.APIEndpoint, cfg.APIUser, cfg.APIPassword,
		loopia.WithHTTPClient(httpClient),
		loopia.WithLogger(logger),
	)

	reg, err := registrar.New(client, registrar.Config{
		Domain:           cfg.DomainSuffix,
		PropagationDelay: cfg.PropagationDelay,
		DryRun:           dryRun,
	}, registrar.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating registrar: %w", err)
	}

	return reg, nil
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	// Logs go to stderr so command output (list) stays machine-readable.
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: subreg <command> [flags] [arguments]

Commands:
  register <subdomain>   register the subdomain and add its A record
  remove <subdomain>     remove the subdomain and all its zone records
  list [<subdomain>]     list subdomains, or the records of one subdomain
  verify <subdomain>     check that the A record is visible in DNS

Invoking subreg with a bare subdomain is equivalent to "register".

Required environment: DNS_API_USER, DNS_API_PASS (or DNS_API_PASS_FILE),
DNS_API_URI, DOMAIN_SUFFIX, SUBREG_TARGET_IP (or SCHOOL_IP_ADDRESS).
Optional settings use the SUBREG_ prefix; see SUBREG_CONFIG_FILE for the
YAML alternative. A .env file in the working directory is honored.
`)
}
