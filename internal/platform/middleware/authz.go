// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// RoleLookup resolves a caller's role inside an organization.
//
// Implementations return [dberr.ErrNotFound] when the user is not a member.
type RoleLookup interface {
	MemberRole(ctx context.Context, organizationID, userID string) (sec.MemberRole, error)
}

// RequireAuth blocks requests that carry no authenticated identity.
//
// The global authenticator already rejects them on non-public paths; this
// guards routes that must stay private even if the allowlist is widened.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, ok := ctxutil.GetIdentity(request.Context()); !ok {
			respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks callers whose role in the resolved tenant is below minimum.
//
// # Usage
//
// Must be mounted after both the authenticator and the tenant resolver.
//
// # Flow
//  1. Read [ctxutil.Identity] and [ctxutil.TenantContext] from the context.
//  2. Look up the caller's membership through [RoleLookup].
//  3. Abort with 403 when not a member or when the role is insufficient.
func RequireRole(lookup RoleLookup, minimum sec.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Preconditions ──────────────────────────────────────────────
			identity, ok := ctxutil.GetIdentity(ctx)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
				return
			}
			tenant, ok := ctxutil.GetTenant(ctx)
			if !ok {
				respond.Error(writer, request, apperr.NotFoundMessage("No organization found"))
				return
			}

			// ── 2. Membership ─────────────────────────────────────────────────
			role, err := lookup.MemberRole(ctx, tenant.OrganizationID, identity.UserID)
			if errors.Is(err, dberr.ErrNotFound) {
				respond.Error(writer, request, apperr.Forbidden("You are not a member of this organization."))
				return
			}
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			// ── 3. Hierarchy ──────────────────────────────────────────────────
			if !role.AtLeast(minimum) {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "authz_role_insufficient",
					slog.String("organization_id", tenant.OrganizationID),
					slog.String("role", string(role)),
					slog.String("required", string(minimum)),
				)
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
