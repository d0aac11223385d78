// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements user identity and session management.

It owns the account and session entities, the service that creates and
revokes sessions, the cookie policy, and the request authenticator that
turns an access-token cookie into a typed identity on the request context.

# Architecture

Entities and their rules live in this file and depend on nothing but the
error taxonomy. Storage is reached through the interfaces in store.go.
*/
package auth

import (
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

// # User Account

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	UserPending     UserStatus = "pending"
	UserActive      UserStatus = "active"
	UserSuspended   UserStatus = "suspended"
	UserDeactivated UserStatus = "deactivated"
	UserBanned      UserStatus = "banned"
)

// User represents a registered account.
type User struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Status          UserStatus `json:"status"`
	DeactivatedAt   *time.Time `json:"deactivated_at,omitempty"`
	LockedUntil     *time.Time `json:"locked_until,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CanSignIn reports whether the account may open a new session with a password.
func (user *User) CanSignIn() bool {
	return user.Status == UserActive || user.Status == UserPending
}

/*
AccessError evaluates the account gate applied on every authenticated request.

The checks run in order and the first match wins:
 1. banned
 2. deactivated (status or a deactivation timestamp)
 3. suspended with a lock still in the future
 4. suspended without any lock
 5. otherwise allowed

Returns:
  - error: 403 [apperr.AppError] carrying the status message, or nil
*/
func (user *User) AccessError(now time.Time) error {
	switch {
	case user.Status == UserBanned:
		return apperr.Forbidden(MessageBanned)

	case user.Status == UserDeactivated || user.DeactivatedAt != nil:
		return apperr.Forbidden(MessageDeactivated)

	case user.Status == UserSuspended && user.LockedUntil != nil:
		if user.LockedUntil.After(now) {
			return apperr.Forbidden(MessageLocked)
		}
		return nil

	case user.Status == UserSuspended:
		return apperr.Forbidden(MessageSuspended)
	}

	return nil
}

// # Session

// SessionStatus is the lifecycle state of a session row.
type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionRevoked    SessionStatus = "revoked"
	SessionExpired    SessionStatus = "expired"
	SessionSuspicious SessionStatus = "suspicious"
)

// Session is one sign-in of a user on one device.
//
// Rows are never deleted; expiry is evaluated at read time against the
// two expiry columns.
type Session struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id"`
	UserAgent           string        `json:"user_agent"`
	IPAddress           string        `json:"ip_address,omitempty"`
	IPCountry           string        `json:"ip_country,omitempty"`
	DeviceType          string        `json:"device_type"`
	DeviceName          string        `json:"device_name"`
	OSName              string        `json:"os_name"`
	Status              SessionStatus `json:"status"`
	RevokedAt           *time.Time    `json:"revoked_at,omitempty"`
	RevokedReason       *string       `json:"revoked_reason,omitempty"`
	AccessExpiresAt     time.Time     `json:"access_expires_at"`
	RefreshExpiresAt    time.Time     `json:"refresh_expires_at"`
	LastActivityAt      *time.Time    `json:"last_activity_at,omitempty"`
	LastIP              string        `json:"last_ip,omitempty"`
	FailedLoginAttempts int32         `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// IsAccessValid reports whether an access token bound to this session may still be honoured.
func (session *Session) IsAccessValid(now time.Time) bool {
	return session.Status == SessionActive && !now.After(session.AccessExpiresAt)
}

// IsRefreshValid reports whether the session may still mint access tokens.
func (session *Session) IsRefreshValid(now time.Time) bool {
	return session.Status == SessionActive && !now.After(session.RefreshExpiresAt)
}

// RemainingRefresh is how long the session could still be refreshed, floored at zero.
func (session *Session) RemainingRefresh(now time.Time) time.Duration {
	return max(session.RefreshExpiresAt.Sub(now), 0)
}

// # Pending Signup

// PendingSignup is an unverified registration parked in Redis.
type PendingSignup struct {
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	VerificationCode string    `json:"verification_code"`
	CreatedAt        time.Time `json:"created_at"`
}
