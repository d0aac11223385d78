// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations

import (
	"context"
	"fmt"

	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// # Sentinels

var (
	// ErrOrganizationNotFound wraps [dberr.ErrNotFound] for organization lookups.
	ErrOrganizationNotFound = fmt.Errorf("organization not found: %w", dberr.ErrNotFound)

	// ErrMemberNotFound wraps [dberr.ErrNotFound] when a user holds no membership.
	ErrMemberNotFound = fmt.Errorf("member not found: %w", dberr.ErrNotFound)
)

// # Organization Data Access

// Repository defines the data access contract for organizations and memberships.
type Repository interface {

	/*
		FindBySubdomain retrieves an organization by its subdomain label.

		Parameters:
		  - ctx: context.Context
		  - subdomain: string (lowercase label)

		Returns:
		  - *Organization: Hydrated entity
		  - error: [ErrOrganizationNotFound] if missing
	*/
	FindBySubdomain(ctx context.Context, subdomain string) (*Organization, error)

	// FindByID retrieves an organization by primary key.
	FindByID(ctx context.Context, id string) (*Organization, error)

	/*
		Create persists a new organization and its owner membership atomically.

		Returns:
		  - error: wraps [dberr.ErrDuplicate] on a taken subdomain
	*/
	Create(ctx context.Context, organization *Organization, ownerID string) error

	// # Membership Management

	// MemberRole returns the user's role, or [ErrMemberNotFound].
	MemberRole(ctx context.Context, organizationID, userID string) (sec.MemberRole, error)

	/*
		ListMembers returns a page of members and the total count.

		Parameters:
		  - ctx: context.Context
		  - organizationID: string
		  - limit, offset: int

		Returns:
		  - []*Member: Members ordered by join date
		  - int: Total member count
		  - error: Retrieval failures
	*/
	ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]*Member, int, error)

	/*
		AddMember links a user to an organization.

		Returns:
		  - error: [dberr.ErrDuplicate] if already a member, [dberr.ErrNotFound] if the user does not exist
	*/
	AddMember(ctx context.Context, member *Member) error
}
