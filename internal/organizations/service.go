// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
	"github.com/taibuivan/gatehouse/pkg/slug"
)

// # Service Layer

// Service orchestrates business rules for organizations and memberships.
type Service struct {
	repo Repository
}

// NewService constructs a new organization [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// # Tenant Resolution

/*
Resolve maps a subdomain label onto its organization.

Returns:
  - *Organization: the tenant
  - error: 404 "No organization found" on a miss, storage errors otherwise
*/
func (service *Service) Resolve(ctx context.Context, subdomain string) (*Organization, error) {
	organization, err := service.repo.FindBySubdomain(ctx, strings.ToLower(subdomain))
	if errors.Is(err, ErrOrganizationNotFound) {
		return nil, apperr.NotFoundMessage(MessageOrganizationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return organization, nil
}

// # Organization Management

// CreateInput carries the fields accepted when creating an organization.
type CreateInput struct {
	Name      string
	Subdomain string // optional, derived from Name when empty
}

/*
CreateOrganization registers a tenant and makes the creator its owner.

Parameters:
  - ctx: context.Context
  - input: CreateInput
  - ownerID: string (authenticated caller)

Returns:
  - *Organization: the stored tenant
  - error: 400 validation, 409 taken subdomain
*/
func (service *Service) CreateOrganization(ctx context.Context, input CreateInput, ownerID string) (*Organization, error) {
	name := strings.TrimSpace(input.Name)

	subdomain := input.Subdomain
	if subdomain == "" {
		subdomain = name
	}
	subdomain = slug.Subdomain(subdomain)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MaxLen(FieldName, name, NameMaxLength).
		Subdomain(FieldSubdomain, subdomain)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	organization := &Organization{Name: name, Subdomain: subdomain}
	if err := service.repo.Create(ctx, organization, ownerID); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Subdomain is already taken")
		}
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("organization_created",
		slog.String("organization_id", organization.ID),
		slog.String("subdomain", organization.Subdomain),
		slog.String("owner_id", ownerID),
	)

	return organization, nil
}

// GetOrganization returns the organization by id.
func (service *Service) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	organization, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dberr.Wrap(err, "Organization")
	}
	return organization, nil
}

// # Membership Controls

// MemberRole satisfies middleware.RoleLookup.
func (service *Service) MemberRole(ctx context.Context, organizationID, userID string) (sec.MemberRole, error) {
	return service.repo.MemberRole(ctx, organizationID, userID)
}

// ListMembers returns a page of the organization's roster.
func (service *Service) ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]*Member, int, error) {
	return service.repo.ListMembers(ctx, organizationID, limit, offset)
}

/*
AddMember adds an existing user to the organization.

Description: Ownership is only ever granted at creation, so "owner" is not
an accepted role here.

Returns:
  - *Member: the stored membership
  - error: 400 validation, 404 unknown user, 409 existing member
*/
func (service *Service) AddMember(ctx context.Context, organizationID, userID string, role sec.MemberRole) (*Member, error) {
	if role == "" {
		role = sec.RoleMember
	}

	validator := &validate.Validator{}
	validator.UUID(FieldUserID, userID).
		OneOf(FieldRole, string(role), string(sec.RoleAdmin), string(sec.RoleMember))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	member := &Member{OrganizationID: organizationID, UserID: userID, Role: role}
	if err := service.repo.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, dberr.ErrDuplicate):
			return nil, apperr.Conflict("User is already a member")
		case errors.Is(err, dberr.ErrNotFound):
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("organization_member_added",
		slog.String("organization_id", organizationID),
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return member, nil
}
