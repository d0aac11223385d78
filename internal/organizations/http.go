// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for organizations.
type Handler struct {
	service  *Service
	resolver *Resolver
}

// NewHandler constructs a new organization [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, resolver: NewResolver(service)}
}

// Routes returns the tenant-independent router, mounted at /organizations.
//
// # Endpoints
//   - POST / : Creates an organization owned by the caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.createOrganization)

	return router
}

// TenantRoutes returns the tenant-scoped router, mounted at /organization.
//
// # Endpoints
//   - GET  /         : Current organization (members only).
//   - GET  /members  : Paginated roster (members only).
//   - POST /members  : Adds a member (admin or owner only).
//
// The tenant is resolved before the caller is checked, so an unknown tenant is a 404.
func (handler *Handler) TenantRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(
		handler.resolver.Middleware,
		middleware.RequireAuth,
		middleware.RequireRole(handler.service, sec.RoleMember),
	)

	router.Get("/", handler.currentOrganization)
	router.Get("/members", handler.listMembers)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(handler.service, sec.RoleAdmin))
		r.Post("/members", handler.addMember)
	})

	return router
}

// # Request Payloads

type createOrganizationRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

type addMemberRequest struct {
	UserID string         `json:"user_id"`
	Role   sec.MemberRole `json:"role"`
}

// # Organization Endpoints

/*
POST /api/v1/organizations.

Description: Registers an organization with the caller as owner.
The subdomain defaults to a label derived from the name.

Response:
  - 201: Organization: Created object
  - 400: Validation failure
  - 409: Subdomain taken
*/
func (handler *Handler) createOrganization(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createOrganizationRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	organization, err := handler.service.CreateOrganization(request.Context(), CreateInput{
		Name:      input.Name,
		Subdomain: input.Subdomain,
	}, identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, organization)
}

/*
GET /api/v1/organization.

Response:
  - 200: Organization: the resolved tenant
  - 404: No organization
*/
func (handler *Handler) currentOrganization(writer http.ResponseWriter, request *http.Request) {
	tenant, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	organization, err := handler.service.GetOrganization(request.Context(), tenant.OrganizationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, organization)
}

// # Membership Endpoints

/*
GET /api/v1/organization/members.

Request:
  - page, limit: int

Response:
  - 200: []Member: Paginated roster
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	tenant, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	members, total, err := handler.service.ListMembers(request.Context(), tenant.OrganizationID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, members, pagination.NewMeta(params, total))
}

/*
POST /api/v1/organization/members.

Response:
  - 201: Member: Created membership
  - 400: Validation failure
  - 403: Caller below admin
  - 404: Unknown user
  - 409: Already a member
*/
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	tenant, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.AddMember(request.Context(), tenant.OrganizationID, input.UserID, input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, member)
}
