// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/device"
)

// # Errors

// Lookup misses; all of them satisfy errors.Is(err, dberr.ErrNotFound).
var (
	ErrUserNotFound          = fmt.Errorf("auth: user %w", dberr.ErrNotFound)
	ErrSessionNotFound       = fmt.Errorf("auth: session %w", dberr.ErrNotFound)
	ErrPendingSignupNotFound = fmt.Errorf("auth: pending signup %w", dberr.ErrNotFound)
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or database failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email (case-insensitive).

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or database failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		Create persists a brand-new account. ID and timestamps are filled in.

		Returns:
		  - error: wraps [dberr.ErrDuplicate] when the email or username is taken
	*/
	Create(ctx context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for session rows.
type SessionRepository interface {

	/*
		Create persists a new active session with expiries computed from now.

		Parameters:
		  - ctx: context.Context
		  - userID: owner of the session
		  - client: device description stored with the row
		  - accessTTL, refreshTTL: lifetimes of the two bound tokens

		Returns:
		  - *Session: the stored row, with its freshly generated ID
		  - error: Persistence failures
	*/
	Create(ctx context.Context, userID string, client device.Info, accessTTL, refreshTTL time.Duration) (*Session, error)

	/*
		FindByID returns the session with the given ID regardless of status.

		Returns:
		  - error: [ErrSessionNotFound] or database failures
	*/
	FindByID(ctx context.Context, id string) (*Session, error)

	/*
		FindByUser returns every session of a user, newest first.
	*/
	FindByUser(ctx context.Context, userID string) ([]*Session, error)

	/*
		Revoke marks the session revoked with the given reason.

		Description: Idempotent. An already revoked session keeps the reason and
		timestamp of its first revocation, and an unknown ID is a no-op.
	*/
	Revoke(ctx context.Context, id, reason string) error

	// ExtendAccess moves an active session's access window to now+accessTTL,
	// capped at its refresh expiry.
	ExtendAccess(ctx context.Context, id string, accessTTL time.Duration) error
}

// # Volatile Data Access

// RevocationList records revoked sessions for validators that skip the session table.
type RevocationList interface {
	// MarkRevoked stores a marker that expires after ttl.
	MarkRevoked(ctx context.Context, sessionID string, ttl time.Duration) error

	// IsRevoked reports whether a marker exists for the session.
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// PendingSignupRepository parks unverified registrations until their code is confirmed.
type PendingSignupRepository interface {
	// Save stores the record under its email, replacing any previous attempt.
	Save(ctx context.Context, pending *PendingSignup, ttl time.Duration) error

	// Find returns [ErrPendingSignupNotFound] once the record is consumed or expired.
	Find(ctx context.Context, email string) (*PendingSignup, error)

	// Delete removes the record after a successful verification.
	Delete(ctx context.Context, email string) error
}
