// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/postgres"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/pkg/uuid"
)

const organizationColumns = `organization_id::text, name, subdomain, created_at, updated_at`

// PostgresRepository implements [Repository] over the tenancy schema.
//
// tenancy.organization is readable without a tenant scope (the resolver needs
// it to find one). tenancy.member is only ever touched inside [postgres.WithTenant].
type PostgresRepository struct {
	db  postgres.Database
	now func() time.Time
}

// NewPostgresRepository constructs a PostgreSQL backed organization store.
func NewPostgresRepository(db postgres.Database, now func() time.Time) *PostgresRepository {
	return &PostgresRepository{db: db, now: now}
}

func scanOrganization(row pgx.Row) (*Organization, error) {
	organization := &Organization{}
	err := row.Scan(
		&organization.ID,
		&organization.Name,
		&organization.Subdomain,
		&organization.CreatedAt,
		&organization.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return organization, nil
}

// # Organization Retrieval

/*
FindBySubdomain retrieves an organization by its subdomain label.

Returns:
  - *Organization: Hydrated entity
  - error: [ErrOrganizationNotFound] or execution errors
*/
func (repository *PostgresRepository) FindBySubdomain(ctx context.Context, subdomain string) (*Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM tenancy.organization WHERE subdomain = $1`

	organization, err := scanOrganization(repository.db.QueryRow(ctx, query, subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("postgres_organization_repo_find_by_subdomain_failed: %w", err)
	}

	return organization, nil
}

// FindByID retrieves an organization by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM tenancy.organization WHERE organization_id = $1`

	organization, err := scanOrganization(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("postgres_organization_repo_find_by_id_failed: %w", err)
	}

	return organization, nil
}

// # Organization Mutation

/*
Create inserts the organization and its owner inside one tenant-scoped transaction.

Description: The tenant scope is the new organization's own id, so the
member insert satisfies the row-level-security policy.

Parameters:
  - ctx: context.Context
  - organization: *Organization (ID generated when empty)
  - ownerID: string (the creating user)

Returns:
  - error: wraps [dberr.ErrDuplicate] on a taken subdomain
*/
func (repository *PostgresRepository) Create(ctx context.Context, organization *Organization, ownerID string) error {
	const insertOrganization = `
		INSERT INTO tenancy.organization (organization_id, name, subdomain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)`

	const insertOwner = `
		INSERT INTO tenancy.member (organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`

	if organization.ID == "" {
		organization.ID = uuid.New()
	}
	now := repository.now()
	organization.CreatedAt = now
	organization.UpdatedAt = now

	return postgres.WithTenant(ctx, repository.db, organization.ID, func(tx postgres.DBTX) error {
		if _, err := tx.Exec(ctx, insertOrganization, organization.ID, organization.Name, organization.Subdomain, now); err != nil {
			return dberr.Classify(err, "postgres_organization_repo_create_failed")
		}

		if _, err := tx.Exec(ctx, insertOwner, organization.ID, ownerID, string(sec.RoleOwner), now); err != nil {
			return dberr.Classify(err, "postgres_organization_repo_add_owner_failed")
		}

		return nil
	})
}

// # Membership

// MemberRole reads the caller's role under the organization's tenant scope.
func (repository *PostgresRepository) MemberRole(ctx context.Context, organizationID, userID string) (sec.MemberRole, error) {
	const query = `SELECT role::text FROM tenancy.member WHERE organization_id = $1 AND user_id = $2`

	var role sec.MemberRole
	err := postgres.WithTenant(ctx, repository.db, organizationID, func(tx postgres.DBTX) error {
		return tx.QueryRow(ctx, query, organizationID, userID).Scan(&role)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrMemberNotFound
		}
		return "", fmt.Errorf("postgres_organization_repo_member_role_failed: %w", err)
	}

	return role, nil
}

/*
ListMembers returns a page of members joined with their usernames.

Description: Uses COUNT(*) OVER() so the total comes back with the page.
*/
func (repository *PostgresRepository) ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]*Member, int, error) {
	const query = `
		SELECT m.user_id::text, a.username, m.role::text, m.created_at, COUNT(*) OVER() AS total
		FROM tenancy.member m
		JOIN users.account a ON a.user_id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3`

	members := make([]*Member, 0)
	var total int

	err := postgres.WithTenant(ctx, repository.db, organizationID, func(tx postgres.DBTX) error {
		rows, err := tx.Query(ctx, query, organizationID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			member := &Member{OrganizationID: organizationID}
			if err := rows.Scan(&member.UserID, &member.Username, &member.Role, &member.JoinedAt, &total); err != nil {
				return err
			}
			members = append(members, member)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_organization_repo_list_members_failed: %w", err)
	}

	return members, total, nil
}

/*
AddMember links a user to the organization with the given role.

Returns:
  - error: [dberr.ErrDuplicate] for an existing membership, [dberr.ErrNotFound] for an unknown user
*/
func (repository *PostgresRepository) AddMember(ctx context.Context, member *Member) error {
	const query = `
		INSERT INTO tenancy.member (organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`

	member.JoinedAt = repository.now()

	return postgres.WithTenant(ctx, repository.db, member.OrganizationID, func(tx postgres.DBTX) error {
		_, err := tx.Exec(ctx, query, member.OrganizationID, member.UserID, string(member.Role), member.JoinedAt)
		return dberr.Classify(err, "postgres_organization_repo_add_member_failed")
	})
}
