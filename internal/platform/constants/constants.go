// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer, cookie names and tenant headers.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "gatehouse-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds connecting to backing services at boot.
	StartupTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "gatehouse"

	// AccessTokenCookieName is the cookie carrying the access token.
	AccessTokenCookieName = "access_token"

	// RefreshTokenCookieName is the cookie carrying the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// AuthCookiePath scopes both auth cookies to the whole site.
	AuthCookiePath = "/"

	// RevokeReasonSignout is recorded when a user signs out.
	RevokeReasonSignout = "user_signout"

	// RevokeReasonUserRevoked is recorded when a user removes one of their own sessions.
	RevokeReasonUserRevoked = "user_revoked"
)

// # HTTP Headers

const (
	HeaderXRequestID        = "X-Request-ID"
	HeaderXRealIP           = "X-Real-IP"
	HeaderXForwardedFor     = "X-Forwarded-For"
	HeaderOrigin            = "Origin"
	HeaderXOrganizationSlug = "X-Organization-Slug"
	HeaderContentType       = "Content-Type"
	ContentTypeJSONUTF8     = "application/json; charset=utf-8"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers   = "users"
	SchemaTenancy = "tenancy"

	// TenantSettingKey is the transaction-local setting read by row-level security policies.
	TenantSettingKey = "app.current_organization_id"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRevokedSession    = "revoked:session:"
	RedisPrefixEmailVerification = "email_verification:"
)
