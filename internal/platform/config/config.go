// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token codec) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the shortest HMAC secret accepted for token signing.
const MinSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the Gatehouse API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing and lifetimes
	JWTSecret             string `env:"JWT_SECRET,required"`
	AccessTokenTTLMinutes int    `env:"JWT_ACCESS_EXPIRY_MINUTES" envDefault:"15"`
	RefreshTokenTTLDays   int    `env:"JWT_REFRESH_EXPIRY_DAYS"   envDefault:"30"`

	// CookieDomain scopes the auth cookies (e.g. ".gatehouse.app"). Empty means host-only.
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// StrictSessions re-validates the session row and account status on every
	// authenticated request and every access-token rotation.
	StrictSessions bool `env:"AUTH_STRICT_SESSIONS" envDefault:"true"`

	// PublicPaths are matched exactly against the request path and bypass authentication.
	PublicPaths []string `env:"AUTH_PUBLIC_PATHS" envSeparator:"," envDefault:"/health,/ready,/api/v1/auth/signup,/api/v1/auth/verify-email,/api/v1/auth/signin,/api/v1/auth/refresh"`

	// EmailVerificationTTL bounds how long a pending signup waits for its code.
	EmailVerificationTTL time.Duration `env:"EMAIL_VERIFICATION_TTL" envDefault:"15m"`

	// Cross-Origin Resource Sharing
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX" envDefault:"gatehouse.app"`

	// TrustedProxies lists the CIDRs or addresses allowed to set X-Real-IP and X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values that would make the auth core unsafe or unusable.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	if c.AccessTokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRY_MINUTES must be positive"))
	}
	if c.RefreshTokenTTLDays <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRY_DAYS must be positive"))
	}
	if c.AccessTokenTTL() > c.RefreshTokenTTL() {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRY_MINUTES must not exceed JWT_REFRESH_EXPIRY_DAYS"))
	}
	if c.EmailVerificationTTL <= 0 {
		errs = append(errs, errors.New("EMAIL_VERIFICATION_TTL must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// AccessTokenTTL is the configured access-token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL is the configured refresh-token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR", raw)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOriginSuffix is the apex domain whose origins pass CORS outside development.
func (c *Config) AllowedOriginSuffix() string {
	return c.CORSOriginSuffix
}
