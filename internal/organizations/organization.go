// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package organizations manages tenants and their memberships.

An organization is addressed by its subdomain label; every request below a
tenant route is resolved to exactly one organization before any handler runs.

# Core Responsibility

  - Tenancy: Defines the [Organization] entity and resolves it per request.
  - Membership: Manages [Member] rows and their [sec.MemberRole].

Membership rows are protected by row-level security, so every member query
runs inside [postgres.WithTenant].
*/
package organizations

import (
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// # Core Entities

// Organization is one tenant of the platform.
type Organization struct {
	ID        string    `json:"id"` // UUIDv7
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a user's affiliation with an organization.
type Member struct {
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	Username       string         `json:"username"` // Denormalized for list views
	Role           sec.MemberRole `json:"role"`
	JoinedAt       time.Time      `json:"joined_at"`
}

// # Field Identifiers

const (
	FieldName      = "name"
	FieldSubdomain = "subdomain"
	FieldUserID    = "user_id"
	FieldRole      = "role"
)

// NameMaxLength bounds organization display names.
const NameMaxLength = 200

// # Messages

const (
	// MessageNoOrganization is returned when neither the host nor the header names a tenant.
	MessageNoOrganization = "There is no organizations"

	// MessageOrganizationNotFound is returned when the named tenant does not exist.
	MessageOrganizationNotFound = "No organization found"
)
