// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxkey"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// # Session Context

// WithSession returns a new context carrying the session row loaded by the authenticator.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, session)
}

// SessionFromContext returns the session attached in strict mode, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(ctxkey.KeySession).(*Session)
	return session, ok && session != nil
}

// # Authenticator

// Authenticator turns the access-token cookie into a [ctxutil.Identity].
//
// It is mounted globally; requests whose path is on the public allowlist
// pass through untouched.
type Authenticator struct {
	service *Service
	public  map[string]struct{}
}

// NewAuthenticator creates the middleware with an exact-match public path allowlist.
func NewAuthenticator(service *Service, publicPaths []string) *Authenticator {
	public := make(map[string]struct{}, len(publicPaths))
	for _, path := range publicPaths {
		public[path] = struct{}{}
	}
	return &Authenticator{service: service, public: public}
}

// IsPublic reports whether path bypasses authentication.
func (authenticator *Authenticator) IsPublic(path string) bool {
	_, ok := authenticator.public[path]
	return ok
}

/*
Middleware validates the caller on every non-public request.

# Flow
 1. Public path: proceed, nothing is read.
 2. Missing access_token cookie: 401.
 3. Signature, expiry or type failure: 401.
 4. Strict: the session must exist and be active within its access window.
    Lenient: the session must not be on the revocation list.
 5. Missing user: 401.
 6. Account gate: 403 with the status message.
 7. Attach identity (and the session in strict mode); enrich the request logger.

Storage failures yield 500. The middleware never writes.
*/
func (authenticator *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		// ── 1. Public allowlist ───────────────────────────────────────────────
		if authenticator.IsPublic(request.URL.Path) {
			next.ServeHTTP(writer, request)
			return
		}

		ctx := request.Context()
		logger := ctxutil.GetLogger(ctx)
		service := authenticator.service

		reject := func(reason string, err error) {
			logger.DebugContext(ctx, "auth_rejected", slog.String("reason", reason), slog.Any("error", err))
			respond.Error(writer, request, apperr.Unauthorized(MessageUnauthorized))
		}

		// ── 2. Credential ─────────────────────────────────────────────────────
		cookie, err := request.Cookie(constants.AccessTokenCookieName)
		if err != nil || cookie.Value == "" {
			reject("missing_access_cookie", err)
			return
		}

		// ── 3. Token ──────────────────────────────────────────────────────────
		claims, err := service.tokens.Verify(cookie.Value, sec.TokenAccess)
		if err != nil {
			reject("invalid_access_token", err)
			return
		}

		now := service.now()

		// ── 4. Session ────────────────────────────────────────────────────────
		var session *Session
		if service.settings.StrictSessions {
			session, err = service.sessions.FindByID(ctx, claims.SessionID)
			if errors.Is(err, ErrSessionNotFound) {
				reject("session_not_found", err)
				return
			}
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if session.UserID != claims.Subject || !session.IsAccessValid(now) {
				reject("session_not_valid", nil)
				return
			}
		} else {
			revoked, err := service.revocations.IsRevoked(ctx, claims.SessionID)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if revoked {
				reject("session_revoked", nil)
				return
			}
		}

		// ── 5. User ───────────────────────────────────────────────────────────
		user, err := service.users.FindByID(ctx, claims.Subject)
		if errors.Is(err, ErrUserNotFound) {
			reject("user_not_found", err)
			return
		}
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}

		// ── 6. Account gate ───────────────────────────────────────────────────
		if err := user.AccessError(now); err != nil {
			respond.Error(writer, request, err)
			return
		}

		// ── 7. Context ────────────────────────────────────────────────────────
		ctx = ctxutil.WithIdentity(ctx, ctxutil.Identity{
			UserID:    user.ID,
			SessionID: claims.SessionID,
			Email:     user.Email,
			Username:  user.Username,
		})
		if session != nil {
			ctx = WithSession(ctx, session)
		}
		ctx = ctxutil.WithLogger(ctx, logger.With(
			slog.String("user_id", user.ID),
			slog.String("session_id", claims.SessionID),
		))

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
