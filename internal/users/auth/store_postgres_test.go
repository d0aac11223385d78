// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clockAt(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

var userColumnNames = []string{
	"user_id", "username", "email", "password_hash", "status",
	"deactivated_at", "locked_until", "email_verified_at", "created_at", "updated_at",
}

var sessionColumnNames = []string{
	"session_id", "user_id", "user_agent", "ip_address", "ip_country",
	"device_type", "device_name", "os_name", "status",
	"revoked_at", "revoked_reason", "access_expires_at", "refresh_expires_at",
	"last_activity_at", "last_ip", "failed_login_attempts", "created_at", "updated_at",
}

func sessionRow(id string, createdAt time.Time) []any {
	return []any{
		id, "user-1", "curl/8.0", "203.0.113.9", "",
		"desktop", "Chrome", "Linux", auth.SessionActive,
		(*time.Time)(nil), (*string)(nil), createdAt.Add(15 * time.Minute), createdAt.Add(720 * time.Hour),
		&createdAt, "203.0.113.9", int32(0), createdAt, createdAt,
	}
}

/*
TestUserRepository_FindByEmail verifies hydration and the not-found mapping.
*/
func TestUserRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repository := auth.NewUserRepository(mock, clockAt(fixedNow))
	query := regexp.QuoteMeta("FROM users.account WHERE lower(email) = lower($1)")
	lockedUntil := fixedNow.Add(time.Hour)

	mock.ExpectQuery(query).WithArgs("ada@example.com").WillReturnRows(
		pgxmock.NewRows(userColumnNames).AddRow(
			"user-1", "ada", "ada@example.com", "$2a$10$hash", auth.UserSuspended,
			(*time.Time)(nil), &lockedUntil, (*time.Time)(nil), fixedNow, fixedNow,
		),
	)
	mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	user, err := repository.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, auth.UserSuspended, user.Status)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, lockedUntil.Equal(*user.LockedUntil))
	assert.Nil(t, user.DeactivatedAt)

	_, err = repository.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestUserRepository_Create verifies the insert and the duplicate classification.
*/
func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repository := auth.NewUserRepository(mock, clockAt(fixedNow))
	query := regexp.QuoteMeta("INSERT INTO users.account")

	mock.ExpectExec(query).
		WithArgs(pgxmock.AnyArg(), "ada", "ada@example.com", "hash", "active", pgxmock.AnyArg(), fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(query).
		WithArgs(pgxmock.AnyArg(), "ada", "ada@example.com", "hash", "active", pgxmock.AnyArg(), fixedNow).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_email_key"})

	user := &auth.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash", Status: auth.UserActive}
	require.NoError(t, repository.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, fixedNow, user.CreatedAt)

	duplicate := &auth.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash", Status: auth.UserActive}
	err = repository.Create(context.Background(), duplicate)
	assert.ErrorIs(t, err, dberr.ErrDuplicate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestSessionRepository_Create verifies expiries are computed from the repository clock.
*/
func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repository := auth.NewSessionRepository(mock, clockAt(fixedNow))
	client := device.Info{
		UserAgent:  "curl/8.0",
		IP:         "203.0.113.9",
		DeviceType: device.TypeUnknown,
		DeviceName: device.TypeUnknown,
		OSName:     device.TypeUnknown,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users.session")).
		WithArgs(
			pgxmock.AnyArg(), "user-1", "curl/8.0", "203.0.113.9", "",
			"unknown", "unknown", "unknown",
			fixedNow.Add(15*time.Minute), fixedNow.Add(720*time.Hour), fixedNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session, err := repository.Create(context.Background(), "user-1", client, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, auth.SessionActive, session.Status)
	assert.Equal(t, fixedNow.Add(15*time.Minute), session.AccessExpiresAt)
	assert.Equal(t, fixedNow.Add(720*time.Hour), session.RefreshExpiresAt)
	assert.Nil(t, session.RevokedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestSessionRepository_Find verifies single and list reads.
*/
func TestSessionRepository_Find(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repository := auth.NewSessionRepository(mock, clockAt(fixedNow))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users.session WHERE session_id = $1")).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumnNames).AddRow(sessionRow("session-1", fixedNow)...))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users.session WHERE session_id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users.session WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(sessionColumnNames).
			AddRow(sessionRow("session-2", fixedNow.Add(time.Hour))...).
			AddRow(sessionRow("session-1", fixedNow)...))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users.session WHERE user_id = $1")).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows(sessionColumnNames))

	session, err := repository.FindByID(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", session.IPAddress)
	assert.True(t, session.IsAccessValid(fixedNow))

	_, err = repository.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	sessions, err := repository.FindByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "session-2", sessions[0].ID)

	none, err := repository.FindByUser(context.Background(), "user-2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestSessionRepository_Writes verifies the revoke guard and the access window extension.
*/
func TestSessionRepository_Writes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repository := auth.NewSessionRepository(mock, clockAt(fixedNow))

	mock.ExpectExec(regexp.QuoteMeta("WHERE session_id = $1 AND status <> 'revoked'")).
		WithArgs("session-1", fixedNow, "user_signout").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET access_expires_at = LEAST($2, refresh_expires_at)")).
		WithArgs("session-1", fixedNow.Add(15*time.Minute), fixedNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users.session")).
		WithArgs("session-2", fixedNow, "user_revoked").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repository.Revoke(context.Background(), "session-1", "user_signout"))
	require.NoError(t, repository.ExtendAccess(context.Background(), "session-1", 15*time.Minute))

	err = repository.Revoke(context.Background(), "session-2", "user_revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres_session_repo_revoke_failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}
