// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/platform/postgres"
	"github.com/taibuivan/gatehouse/pkg/uuid"
)

// # User Repository

const userColumns = `
	user_id::text, username, email, password_hash, status::text,
	deactivated_at, locked_until, email_verified_at, created_at, updated_at`

// PostgresUserRepository implements [UserRepository] over users.account.
type PostgresUserRepository struct {
	db  postgres.DBTX
	now func() time.Time
}

// NewUserRepository creates a user repository running on db (pool or transaction).
func NewUserRepository(db postgres.DBTX, now func() time.Time) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, now: now}
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Status,
		&user.DeactivatedAt,
		&user.LockedUntil,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves an account by primary key.

Returns:
  - *User: Hydrated account entity
  - error: [ErrUserNotFound] or execution errors
*/
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE user_id = $1`

	user, err := scanUser(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves an account by email, compared case-insensitively.

Returns:
  - *User: Hydrated account entity
  - error: [ErrUserNotFound] or execution errors
*/
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE lower(email) = lower($1)`

	user, err := scanUser(repository.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
Create persists a new account row.

Description: Generates a time-sortable ID when missing and stamps both
timestamps with the repository clock.

Returns:
  - error: wraps [dberr.ErrDuplicate] on email/username collisions
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			user_id, username, email, password_hash, status, email_verified_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	if user.ID == "" {
		user.ID = uuid.New()
	}
	now := repository.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Status),
		user.EmailVerifiedAt,
		now,
	)
	if err != nil {
		return dberr.Classify(err, "postgres_user_repo_create_failed")
	}

	return nil
}

// # Session Repository

const sessionColumns = `
	session_id::text, user_id::text, user_agent,
	COALESCE(host(ip_address), ''), COALESCE(ip_country, ''),
	device_type, device_name, os_name, status::text,
	revoked_at, revoked_reason, access_expires_at, refresh_expires_at,
	last_activity_at, COALESCE(host(last_ip), ''), failed_login_attempts,
	created_at, updated_at`

// PostgresSessionRepository implements [SessionRepository] over users.session.
type PostgresSessionRepository struct {
	db  postgres.DBTX
	now func() time.Time
}

// NewSessionRepository creates a session repository running on db (pool or transaction).
func NewSessionRepository(db postgres.DBTX, now func() time.Time) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db, now: now}
}

func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.UserAgent,
		&session.IPAddress,
		&session.IPCountry,
		&session.DeviceType,
		&session.DeviceName,
		&session.OSName,
		&session.Status,
		&session.RevokedAt,
		&session.RevokedReason,
		&session.AccessExpiresAt,
		&session.RefreshExpiresAt,
		&session.LastActivityAt,
		&session.LastIP,
		&session.FailedLoginAttempts,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

/*
Create inserts an active session bound to userID.

Description: Expiries are computed from the repository clock; the client IP,
when present, is also recorded as the last seen IP.

Returns:
  - *Session: the stored row
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) Create(ctx context.Context, userID string, client device.Info, accessTTL, refreshTTL time.Duration) (*Session, error) {
	const query = `
		INSERT INTO users.session (
			session_id, user_id, user_agent, ip_address, ip_country,
			device_type, device_name, os_name, status,
			access_expires_at, refresh_expires_at, last_activity_at, last_ip,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, NULLIF($4, '')::inet, NULLIF($5, ''),
			$6, $7, $8, 'active',
			$9, $10, $11, NULLIF($4, '')::inet,
			$11, $11
		)`

	now := repository.now()
	session := &Session{
		ID:               uuid.New(),
		UserID:           userID,
		UserAgent:        client.UserAgent,
		IPAddress:        client.IP,
		IPCountry:        client.IPCountry,
		DeviceType:       client.DeviceType,
		DeviceName:       client.DeviceName,
		OSName:           client.OSName,
		Status:           SessionActive,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
		LastActivityAt:   &now,
		LastIP:           client.IP,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := repository.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.UserAgent,
		session.IPAddress,
		session.IPCountry,
		session.DeviceType,
		session.DeviceName,
		session.OSName,
		session.AccessExpiresAt,
		session.RefreshExpiresAt,
		now,
	)
	if err != nil {
		return nil, dberr.Classify(err, "postgres_session_repo_create_failed")
	}

	return session, nil
}

/*
FindByID retrieves a session by primary key, whatever its status.

Returns:
  - *Session: Hydrated row
  - error: [ErrSessionNotFound] or execution errors
*/
func (repository *PostgresSessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM users.session WHERE session_id = $1`

	session, err := scanSession(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("postgres_session_repo_find_by_id_failed: %w", err)
	}

	return session, nil
}

/*
FindByUser lists every session of a user, newest first.
*/
func (repository *PostgresSessionRepository) FindByUser(ctx context.Context, userID string) ([]*Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM users.session WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := repository.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_find_by_user_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_rows_failed: %w", err)
	}

	return sessions, nil
}

/*
Revoke flips an active (or expired/suspicious) session to revoked.

Description: The status guard makes the statement idempotent, so the first
revocation's timestamp and reason are never overwritten.
*/
func (repository *PostgresSessionRepository) Revoke(ctx context.Context, id, reason string) error {
	const query = `
		UPDATE users.session
		SET status = 'revoked', revoked_at = $2, revoked_reason = $3, updated_at = $2
		WHERE session_id = $1 AND status <> 'revoked'`

	if _, err := repository.db.Exec(ctx, query, id, repository.now(), reason); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}

	return nil
}

// ExtendAccess is issued on refresh so the row stays in step with the new access token.
func (repository *PostgresSessionRepository) ExtendAccess(ctx context.Context, id string, accessTTL time.Duration) error {
	const query = `
		UPDATE users.session
		SET access_expires_at = LEAST($2, refresh_expires_at), last_activity_at = $3, updated_at = $3
		WHERE session_id = $1 AND status = 'active'`

	now := repository.now()
	if _, err := repository.db.Exec(ctx, query, id, now.Add(accessTTL), now); err != nil {
		return fmt.Errorf("postgres_session_repo_extend_failed: %w", err)
	}

	return nil
}
