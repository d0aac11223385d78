// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// # Contracts & Types

// TokenCodec signs and verifies the two session-bound tokens. [*sec.TokenCodec] satisfies it.
type TokenCodec interface {
	Issue(subjectID, sessionID string, tokenType sec.TokenType, ttl time.Duration) (string, error)
	Verify(token string, expected sec.TokenType) (*sec.Claims, error)
}

// CodeSender delivers a verification code to the owner of an email address.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogCodeSender records code issuance in the request log instead of delivering it.
//
// The code itself is only logged at debug level.
type LogCodeSender struct{}

// SendVerificationCode implements [CodeSender].
func (LogCodeSender) SendVerificationCode(ctx context.Context, email, code string) error {
	logger := ctxutil.GetLogger(ctx)
	logger.InfoContext(ctx, "verification_code_issued", slog.String("email", email))
	logger.DebugContext(ctx, "verification_code_value", slog.String("email", email), slog.String("code", code))
	return nil
}

// Settings carries the session lifetimes and the validation mode.
type Settings struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration

	// StrictSessions re-reads the session row and account on every request
	// and refresh. When false only the signature and the revocation list are
	// consulted.
	StrictSessions bool
}

// Service implements the session lifecycle: signup, signin, rotation and revocation.
//
// StartSession is the only way a session row comes into existence.
type Service struct {
	users       UserRepository
	sessions    SessionRepository
	pending     PendingSignupRepository
	revocations RevocationList
	tokens      TokenCodec
	sender      CodeSender
	settings    Settings
	now         func() time.Time
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithClock replaces the wall clock used for expiry decisions.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *Service) {
		service.now = now
	}
}

// WithCodeSender replaces the default [LogCodeSender].
func WithCodeSender(sender CodeSender) ServiceOption {
	return func(service *Service) {
		service.sender = sender
	}
}

// NewService constructs a [Service] with its storage and token dependencies.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	pending PendingSignupRepository,
	revocations RevocationList,
	tokens TokenCodec,
	settings Settings,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		users:       users,
		sessions:    sessions,
		pending:     pending,
		revocations: revocations,
		tokens:      tokens,
		sender:      LogCodeSender{},
		settings:    settings,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Settings returns the lifetimes and mode the service was configured with.
func (service *Service) Settings() Settings {
	return service.settings
}

// # Session Creation

// IssuedSession is a freshly created session and its two signed tokens.
type IssuedSession struct {
	Session      *Session
	User         *User
	AccessToken  string
	RefreshToken string
}

/*
StartSession creates a session row and issues the token pair bound to it.

Description: Every call creates a brand new session; nothing is reused.

Parameters:
  - ctx: context.Context
  - userID: owner of the new session
  - client: device description stored with the row

Returns:
  - *IssuedSession: session plus access and refresh tokens
  - error: storage or signing failures
*/
func (service *Service) StartSession(ctx context.Context, userID string, client device.Info) (*IssuedSession, error) {

	// ── 1. Persist ────────────────────────────────────────────────────────────
	session, err := service.sessions.Create(ctx, userID, client, service.settings.AccessTTL, service.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_create_failed: %w", err)
	}

	// ── 2. Bind tokens ────────────────────────────────────────────────────────
	accessToken, err := service.tokens.Issue(userID, session.ID, sec.TokenAccess, service.settings.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_access_failed: %w", err)
	}

	refreshToken, err := service.tokens.Issue(userID, session.ID, sec.TokenRefresh, service.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_refresh_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_started",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
		slog.String("device_type", session.DeviceType),
	)

	return &IssuedSession{
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// # Signin

// SigninInput holds the credentials of a password signin.
type SigninInput struct {
	Email    string
	Password string
	Client   device.Info
}

/*
Signin checks a password and opens a new session.

Returns:
  - *IssuedSession: session, user and tokens
  - error: 401 on unknown email or wrong password, 403 when the account may not sign in
*/
func (service *Service) Signin(ctx context.Context, input SigninInput) (*IssuedSession, error) {
	user, err := service.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Unauthorized(MessageAuthenticationFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_signin_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MessageAuthenticationFailed)
	}

	if !user.CanSignIn() {
		return nil, apperr.Forbidden(MessageCannotLogin)
	}

	issued, err := service.StartSession(ctx, user.ID, input.Client)
	if err != nil {
		return nil, err
	}
	issued.User = user

	return issued, nil
}

// # Signup & Verification

// SignupInput holds a registration request.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// SignupReceipt acknowledges that a verification code is pending.
type SignupReceipt struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Signup parks a registration in Redis and hands out a verification code.

Description: No account row is written until the code is confirmed by
[Service.VerifyEmail]. A second signup for the same email replaces the
pending record and its code.

Returns:
  - *SignupReceipt: normalized email and code expiry
  - error: 409 when the email belongs to an account, or infrastructure failures
*/
func (service *Service) Signup(ctx context.Context, input SignupInput) (*SignupReceipt, error) {
	email := normalizeEmail(input.Email)

	// ── 1. Uniqueness ─────────────────────────────────────────────────────────
	_, err := service.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict(MessageEmailTaken)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	// ── 2. Secrets ────────────────────────────────────────────────────────────
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	code, err := sec.GenerateVerificationCode(sec.VerificationCodeDigits)
	if err != nil {
		return nil, fmt.Errorf("auth_service_code_failed: %w", err)
	}

	// ── 3. Park & notify ──────────────────────────────────────────────────────
	now := service.now()
	pending := &PendingSignup{
		Username:         strings.TrimSpace(input.Username),
		Email:            email,
		PasswordHash:     passwordHash,
		VerificationCode: code,
		CreatedAt:        now,
	}

	if err := service.pending.Save(ctx, pending, service.settings.VerificationTTL); err != nil {
		return nil, fmt.Errorf("auth_service_signup_park_failed: %w", err)
	}

	if err := service.sender.SendVerificationCode(ctx, email, code); err != nil {
		return nil, fmt.Errorf("auth_service_send_code_failed: %w", err)
	}

	return &SignupReceipt{Email: email, ExpiresAt: now.Add(service.settings.VerificationTTL)}, nil
}

// VerifyEmailInput confirms a pending signup.
type VerifyEmailInput struct {
	Email  string
	Code   string
	Client device.Info
}

/*
VerifyEmail turns a pending signup into an active account and signs it in.

Returns:
  - *IssuedSession: the new user's first session
  - error: 400 when nothing is pending, 401 on a wrong code, 409 if the email was taken meanwhile
*/
func (service *Service) VerifyEmail(ctx context.Context, input VerifyEmailInput) (*IssuedSession, error) {
	email := normalizeEmail(input.Email)
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Pending record ─────────────────────────────────────────────────────
	pending, err := service.pending.Find(ctx, email)
	if errors.Is(err, ErrPendingSignupNotFound) {
		return nil, apperr.BadRequest(MessageVerificationFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}

	if !sec.EqualCodes(pending.VerificationCode, input.Code) {
		return nil, apperr.Unauthorized(MessageInvalidCode)
	}

	if err := service.pending.Delete(ctx, email); err != nil {
		logger.WarnContext(ctx, "pending_signup_delete_failed", slog.Any("error", err))
	}

	// ── 2. Account ────────────────────────────────────────────────────────────
	verifiedAt := service.now()
	user := &User{
		Username:        pending.Username,
		Email:           pending.Email,
		PasswordHash:    pending.PasswordHash,
		Status:          UserActive,
		EmailVerifiedAt: &verifiedAt,
	}

	if err := service.users.Create(ctx, user); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict(MessageEmailTaken)
		}
		return nil, fmt.Errorf("auth_service_user_create_failed: %w", err)
	}

	logger.InfoContext(ctx, "user_signed_up", slog.String("user_id", user.ID))

	// ── 3. First session ──────────────────────────────────────────────────────
	issued, err := service.StartSession(ctx, user.ID, input.Client)
	if err != nil {
		return nil, err
	}
	issued.User = user

	return issued, nil
}

// # Rotation

/*
RotateAccess exchanges a refresh token for a new access token on the same session.

Description: In strict mode the session must be active and refreshable and
its owner must pass the account gate; the row's access window is then moved
forward so the new token passes the authenticator. In lenient mode only the
revocation list is consulted.

Returns:
  - string: the new access token
  - *sec.Claims: the verified refresh claims
  - error: 401 for any credential problem, 403 from the account gate
*/
func (service *Service) RotateAccess(ctx context.Context, refreshToken string) (string, *sec.Claims, error) {
	claims, err := service.tokens.Verify(refreshToken, sec.TokenRefresh)
	if err != nil {
		return "", nil, apperr.Unauthorized(MessageUnauthorized).WithCause(err)
	}

	if service.settings.StrictSessions {
		if err := service.checkRefreshable(ctx, claims); err != nil {
			return "", nil, err
		}
		if err := service.sessions.ExtendAccess(ctx, claims.SessionID, service.settings.AccessTTL); err != nil {
			return "", nil, fmt.Errorf("auth_service_extend_access_failed: %w", err)
		}
	} else {
		revoked, err := service.revocations.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return "", nil, fmt.Errorf("auth_service_revocation_lookup_failed: %w", err)
		}
		if revoked {
			return "", nil, apperr.Unauthorized(MessageUnauthorized)
		}
	}

	accessToken, err := service.tokens.Issue(claims.Subject, claims.SessionID, sec.TokenAccess, service.settings.AccessTTL)
	if err != nil {
		return "", nil, fmt.Errorf("auth_service_issue_access_failed: %w", err)
	}

	return accessToken, claims, nil
}

func (service *Service) checkRefreshable(ctx context.Context, claims *sec.Claims) error {
	now := service.now()

	session, err := service.sessions.FindByID(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return apperr.Unauthorized(MessageUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	if session.UserID != claims.Subject || !session.IsRefreshValid(now) {
		return apperr.Unauthorized(MessageUnauthorized)
	}

	user, err := service.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return apperr.Unauthorized(MessageUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("auth_service_user_lookup_failed: %w", err)
	}

	return user.AccessError(now)
}

// # Revocation

/*
RevokeSession marks a session revoked and publishes it to the revocation list.

Description: Unknown and already revoked sessions are a no-op. A failed
revocation-list write is only logged in strict mode, where the session row
is authoritative; in lenient mode it is returned.

Parameters:
  - ctx: context.Context
  - sessionID: session to revoke
  - reason: e.g. constants.RevokeReasonSignout
*/
func (service *Service) RevokeSession(ctx context.Context, sessionID, reason string) error {
	session, err := service.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	return service.revoke(ctx, session, reason)
}

/*
RevokeUserSession revokes one of the caller's own sessions.

Returns:
  - error: 404 when the session does not exist or belongs to another user
*/
func (service *Service) RevokeUserSession(ctx context.Context, userID, sessionID string) error {
	session, err := service.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) || (err == nil && session.UserID != userID) {
		return apperr.NotFound("Session")
	}
	if err != nil {
		return fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	return service.revoke(ctx, session, constants.RevokeReasonUserRevoked)
}

func (service *Service) revoke(ctx context.Context, session *Session, reason string) error {
	if err := service.sessions.Revoke(ctx, session.ID, reason); err != nil {
		return fmt.Errorf("auth_service_session_revoke_failed: %w", err)
	}

	logger := ctxutil.GetLogger(ctx)
	ttl := session.RemainingRefresh(service.now())

	if err := service.revocations.MarkRevoked(ctx, session.ID, ttl); err != nil {
		if !service.settings.StrictSessions {
			return fmt.Errorf("auth_service_revocation_mark_failed: %w", err)
		}
		logger.WarnContext(ctx, "revocation_marker_failed",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}

	logger.InfoContext(ctx, "session_revoked",
		slog.String("session_id", session.ID),
		slog.String("reason", reason),
	)

	return nil
}

// # Queries

// ListSessions returns every session of a user, newest first.
func (service *Service) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	sessions, err := service.sessions.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_sessions_failed: %w", err)
	}
	return sessions, nil
}

// CurrentUser loads the account behind an authenticated identity.
func (service *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Unauthorized(MessageUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_user_lookup_failed: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
