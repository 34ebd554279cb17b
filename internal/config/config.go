// Package config handles loading and validation of subreg configuration
// from environment variables, an optional .env file, and an optional YAML
// configuration file. Environment variables always win over file values.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configuration defaults.
const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultTTL              = 3600
	DefaultPriority         = 1
	DefaultPropagationDelay = time.Second
	DefaultTimeout          = 30 * time.Second
	DefaultVerifyTimeout    = 2 * time.Minute
)

// Config holds the complete application configuration.
type Config struct {
	// API credentials and endpoint. The variable names predate this tool
	// and are kept so existing deployments work unchanged: DNS_API_USER,
	// DNS_API_PASS (supports _FILE indirection), DNS_API_URI.
	APIUser     string
	APIPassword string
	APIEndpoint string

	// Zone settings. DOMAIN_SUFFIX is the parent domain; the record target
	// comes from SUBREG_TARGET_IP, falling back to the legacy
	// SCHOOL_IP_ADDRESS name.
	DomainSuffix string
	TargetIP     string

	// Record parameters.
	TTL      int
	Priority int

	// Behavior.
	PropagationDelay time.Duration
	Timeout          time.Duration
	TLSSkipVerify    bool
	DryRun           bool

	// Post-registration verification.
	Verify        bool
	VerifyTimeout time.Duration
	Resolver      string

	// Logging.
	LogLevel  string
	LogFormat string
}

// Load builds the configuration: defaults, then the YAML file named by
// SUBREG_CONFIG_FILE (if any), then environment variables. All validation
// problems are aggregated into a single ValidationError.
func Load() (*Config, error) {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	cfg := &Config{
		TTL:              DefaultTTL,
		Priority:         DefaultPriority,
		PropagationDelay: DefaultPropagationDelay,
		Timeout:          DefaultTimeout,
		VerifyTimeout:    DefaultVerifyTimeout,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
	}

	var errs []string

	if path := getEnv("SUBREG_CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			errs = append(errs, "SUBREG_CONFIG_FILE: "+err.Error())
		} else {
			errs = append(errs, applyFile(cfg, fileCfg)...)
		}
	}

	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, validate(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Returns parse errors.
func applyEnv(cfg *Config) []string {
	var errs []string

	if v := getEnv("DNS_API_USER"); v != "" {
		cfg.APIUser = v
	}
	if v := getEnvOrFile("DNS_API_PASS", "DNS_API_PASS_FILE"); v != "" {
		cfg.APIPassword = v
	}
	if v := getEnv("DNS_API_URI"); v != "" {
		cfg.APIEndpoint = v
	}
	if v := getEnv("DOMAIN_SUFFIX"); v != "" {
		cfg.DomainSuffix = v
	}

	if v := getEnv("SUBREG_TARGET_IP"); v != "" {
		cfg.TargetIP = v
	} else if v := getEnv("SCHOOL_IP_ADDRESS"); v != "" {
		cfg.TargetIP = v
	}

	if v := getEnv("SUBREG_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl >= 1 {
			cfg.TTL = ttl
		} else {
			errs = append(errs, fmt.Sprintf("SUBREG_TTL: invalid value %q (must be a positive integer)", v))
		}
	}

	if v := getEnv("SUBREG_PRIORITY"); v != "" {
		if prio, err := strconv.Atoi(v); err == nil && prio >= 0 {
			cfg.Priority = prio
		} else {
			errs = append(errs, fmt.Sprintf("SUBREG_PRIORITY: invalid value %q (must be a non-negative integer)", v))
		}
	}

	if v := getEnv("SUBREG_PROPAGATION_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.PropagationDelay = d
		} else {
			errs = append(errs, fmt.Sprintf("SUBREG_PROPAGATION_DELAY: invalid duration %q (use format like 1s, 500ms)", v))
		}
	}

	if v := getEnv("SUBREG_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			errs = append(errs, fmt.Sprintf("SUBREG_TIMEOUT: invalid duration %q", v))
		}
	}

	if v := getEnv("SUBREG_TLS_SKIP_VERIFY"); v != "" {
		cfg.TLSSkipVerify = parseBool(v, cfg.TLSSkipVerify)
	}
	if v := getEnv("SUBREG_DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, cfg.DryRun)
	}
	if v := getEnv("SUBREG_VERIFY"); v != "" {
		cfg.Verify = parseBool(v, cfg.Verify)
	}

	if v := getEnv("SUBREG_VERIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.VerifyTimeout = d
		} else {
			errs = append(errs, fmt.Sprintf("SUBREG_VERIFY_TIMEOUT: invalid duration %q", v))
		}
	}

	if v := getEnv("SUBREG_RESOLVER"); v != "" {
		cfg.Resolver = v
	}

	if v := getEnv("SUBREG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("SUBREG_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return errs
}

// validate performs cross-field validation after all sources are merged.
func validate(cfg *Config) []string {
	var errs []string

	if cfg.APIUser == "" {
		errs = append(errs, "DNS_API_USER is required")
	}
	if cfg.APIPassword == "" {
		errs = append(errs, "DNS_API_PASS is required")
	}

	if cfg.APIEndpoint == "" {
		errs = append(errs, "DNS_API_URI is required")
	} else if u, err := url.Parse(cfg.APIEndpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("DNS_API_URI: invalid endpoint %q (must be an http or https URL)", cfg.APIEndpoint))
	}

	if cfg.DomainSuffix == "" {
		errs = append(errs, "DOMAIN_SUFFIX is required")
	}

	if cfg.TargetIP == "" {
		errs = append(errs, "SUBREG_TARGET_IP (or SCHOOL_IP_ADDRESS) is required")
	} else if ip := net.ParseIP(cfg.TargetIP); ip == nil || ip.To4() == nil {
		errs = append(errs, fmt.Sprintf("SUBREG_TARGET_IP: invalid IPv4 address %q", cfg.TargetIP))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("SUBREG_LOG_LEVEL: invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("SUBREG_LOG_FORMAT: invalid value %q (must be json or text)", cfg.LogFormat))
	}

	return errs
}
