package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file structure. All sections are
// optional; environment variables override anything set here.
type FileConfig struct {
	API      *FileAPIConfig     `yaml:"api,omitempty"`
	Zone     *FileZoneConfig    `yaml:"zone,omitempty"`
	Register *FileRegisterConfig `yaml:"register,omitempty"`
	Verify   *FileVerifyConfig  `yaml:"verify,omitempty"`
	Logging  *FileLoggingConfig `yaml:"logging,omitempty"`
}

// FileAPIConfig holds API endpoint and credential settings.
type FileAPIConfig struct {
	User          string `yaml:"user,omitempty"`
	Password      string `yaml:"password,omitempty"`
	Endpoint      string `yaml:"endpoint,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`         // Go duration format
	TLSSkipVerify *bool  `yaml:"tls_skip_verify,omitempty"` // Pointer to distinguish unset from false
}

// FileZoneConfig holds zone and record settings.
type FileZoneConfig struct {
	Domain   string `yaml:"domain,omitempty"`
	TargetIP string `yaml:"target_ip,omitempty"`
	TTL      int    `yaml:"ttl,omitempty"`
	Priority *int   `yaml:"priority,omitempty"` // Pointer to distinguish unset from 0
}

// FileRegisterConfig holds registration behavior settings.
type FileRegisterConfig struct {
	PropagationDelay string `yaml:"propagation_delay,omitempty"` // Go duration format
	DryRun           *bool  `yaml:"dry_run,omitempty"`
}

// FileVerifyConfig holds post-registration verification settings.
type FileVerifyConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"` // Go duration format
	Resolver string `yaml:"resolver,omitempty"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // json, text
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// applyFile overlays file values onto cfg. Returns parse errors, each
// prefixed with its file location.
func applyFile(cfg *Config, fileCfg *FileConfig) []string {
	var errs []string

	if api := fileCfg.API; api != nil {
		if api.User != "" {
			cfg.APIUser = api.User
		}
		if api.Password != "" {
			cfg.APIPassword = api.Password
		}
		if api.Endpoint != "" {
			if u, err := url.Parse(api.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errs = append(errs, fmt.Sprintf("api.endpoint: invalid URL %q", api.Endpoint))
			} else {
				cfg.APIEndpoint = api.Endpoint
			}
		}
		if api.Timeout != "" {
			if d, err := time.ParseDuration(api.Timeout); err == nil && d > 0 {
				cfg.Timeout = d
			} else {
				errs = append(errs, fmt.Sprintf("api.timeout: invalid duration %q", api.Timeout))
			}
		}
		if api.TLSSkipVerify != nil {
			cfg.TLSSkipVerify = *api.TLSSkipVerify
		}
	}

	if zone := fileCfg.Zone; zone != nil {
		if zone.Domain != "" {
			cfg.DomainSuffix = strings.TrimSuffix(zone.Domain, ".")
		}
		if zone.TargetIP != "" {
			cfg.TargetIP = zone.TargetIP
		}
		if zone.TTL > 0 {
			cfg.TTL = zone.TTL
		}
		if zone.Priority != nil && *zone.Priority >= 0 {
			cfg.Priority = *zone.Priority
		}
	}

	if reg := fileCfg.Register; reg != nil {
		if reg.PropagationDelay != "" {
			if d, err := time.ParseDuration(reg.PropagationDelay); err == nil && d >= 0 {
				cfg.PropagationDelay = d
			} else {
				errs = append(errs, fmt.Sprintf("register.propagation_delay: invalid duration %q", reg.PropagationDelay))
			}
		}
		if reg.DryRun != nil {
			cfg.DryRun = *reg.DryRun
		}
	}

	if verify := fileCfg.Verify; verify != nil {
		if verify.Enabled != nil {
			cfg.Verify = *verify.Enabled
		}
		if verify.Timeout != "" {
			if d, err := time.ParseDuration(verify.Timeout); err == nil && d > 0 {
				cfg.VerifyTimeout = d
			} else {
				errs = append(errs, fmt.Sprintf("verify.timeout: invalid duration %q", verify.Timeout))
			}
		}
		if verify.Resolver != "" {
			cfg.Resolver = verify.Resolver
		}
	}

	if logging := fileCfg.Logging; logging != nil {
		if logging.Level != "" {
			cfg.LogLevel = strings.ToLower(logging.Level)
		}
		if logging.Format != "" {
			cfg.LogFormat = strings.ToLower(logging.Format)
		}
	}

	return errs
}
