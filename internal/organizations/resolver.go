// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
)

// Resolver attaches the request's organization as a [ctxutil.TenantContext].
type Resolver struct {
	service *Service
}

// NewResolver creates the tenant resolution middleware.
func NewResolver(service *Service) *Resolver {
	return &Resolver{service: service}
}

/*
SlugFromRequest extracts the tenant label a request is addressed to.

Description: A host with more than two labels yields its leftmost label
(acme.example.com gives acme). Otherwise, and for IP literals, the
X-Organization-Slug header is used. An empty result means no tenant.
*/
func SlugFromRequest(request *http.Request) string {
	host := request.Host
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		host = hostname
	}

	if net.ParseIP(host) == nil {
		if labels := strings.Split(host, "."); len(labels) > 2 && labels[0] != "" {
			return strings.ToLower(labels[0])
		}
	}

	return strings.ToLower(strings.TrimSpace(request.Header.Get(constants.HeaderXOrganizationSlug)))
}

/*
Middleware resolves the tenant or rejects the request.

# Flow
 1. Extract the slug from the host or header; none: 404.
 2. Look the organization up; miss: 404, storage failure: 500.
 3. Attach the tenant and enrich the request logger.
*/
func (resolver *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		// ── 1. Slug ───────────────────────────────────────────────────────────
		slug := SlugFromRequest(request)
		if slug == "" {
			respond.Error(writer, request, apperr.NotFoundMessage(MessageNoOrganization))
			return
		}

		// ── 2. Lookup ─────────────────────────────────────────────────────────
		organization, err := resolver.service.Resolve(ctx, slug)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		// ── 3. Attach ─────────────────────────────────────────────────────────
		ctx = ctxutil.WithTenant(ctx, ctxutil.TenantContext{
			OrganizationID: organization.ID,
			Slug:           organization.Subdomain,
		})
		logger := ctxutil.GetLogger(ctx).With(slog.String("organization_id", organization.ID))
		ctx = ctxutil.WithLogger(ctx, logger)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
