// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
//
// The request scope is populated progressively by the middleware chain:
// request ID and logger first, then [TenantContext] on tenant routes, then
// [Identity] once the caller is authenticated. Each value is strongly typed.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/gatehouse/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// Identity is the principal attached by the request authenticator.
type Identity struct {
	UserID    string
	SessionID string
	Email     string
	Username  string
}

// WithIdentity returns a new context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// GetIdentity retrieves the authenticated identity, reporting whether one is present.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxkey.KeyIdentity).(Identity)
	return identity, ok
}

// # Tenancy

// TenantContext identifies the organization a request is scoped to.
type TenantContext struct {
	OrganizationID string
	Slug           string
}

// WithTenant returns a new context carrying the resolved tenant.
func WithTenant(ctx context.Context, tenant TenantContext) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTenant, tenant)
}

// GetTenant retrieves the resolved tenant, reporting whether one is present.
func GetTenant(ctx context.Context) (TenantContext, bool) {
	tenant, ok := ctx.Value(ctxkey.KeyTenant).(TenantContext)
	return tenant, ok
}

// WithClientIP stores the caller address resolved from the socket and trusted proxies.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClientIP, ip)
}

// GetClientIP returns the resolved caller address, if any.
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ctxkey.KeyClientIP).(string)
	return ip, ok && ip != ""
}
