// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Member Roles

// MemberRole is the authorization level a user holds inside one organization.
type MemberRole string

const (
	// RoleOwner created the organization and can do everything in it.
	RoleOwner MemberRole = "owner"

	// RoleAdmin manages members of the organization.
	RoleAdmin MemberRole = "admin"

	// RoleMember is the default role for invited users.
	RoleMember MemberRole = "member"
)

// # Role Hierarchy

// Valid reports whether r is one of the known roles.
func (r MemberRole) Valid() bool {
	return r.level() > 0
}

// AtLeast checks if the current role meets or exceeds the required target role.
func (r MemberRole) AtLeast(target MemberRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r MemberRole) level() int {
	switch r {
	case RoleOwner:
		return 30
	case RoleAdmin:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
