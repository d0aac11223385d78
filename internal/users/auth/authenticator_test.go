// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

var publicPaths = []string{"/health", "/api/v1/auth/signin"}

// capture records what the authenticator attached to the request context.
type capture struct {
	called   bool
	identity ctxutil.Identity
	hasID    bool
	session  *auth.Session
}

func (p *capture) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		p.called = true
		p.identity, p.hasID = ctxutil.GetIdentity(request.Context())
		p.session, _ = auth.SessionFromContext(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func serve(t *testing.T, f *fixture, path, accessToken string) (*httptest.ResponseRecorder, *capture) {
	t.Helper()

	p := &capture{}
	middleware := auth.NewAuthenticator(f.service, publicPaths).Middleware(p.handler())

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if accessToken != "" {
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: accessToken})
	}
	recorder := httptest.NewRecorder()
	middleware.ServeHTTP(recorder, request)

	return recorder, p
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	message, _ := body[constants.FieldError].(string)
	return message
}

/*
TestAuthenticator_PublicPath verifies allowlisted paths pass without any lookup.
*/
func TestAuthenticator_PublicPath(t *testing.T) {
	f := newFixture(t, true)

	recorder, p := serve(t, f, "/health", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, p.called)
	assert.False(t, p.hasID)
	assert.Zero(t, f.users.calls())
	assert.Zero(t, f.sessions.calls())

	t.Run("prefix_is_not_public", func(t *testing.T) {
		recorder, p := serve(t, f, "/health/deep", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, p.called)
	})
}

/*
TestAuthenticator_Credentials verifies the 401 paths for missing and bad tokens.
*/
func TestAuthenticator_Credentials(t *testing.T) {
	f := newFixture(t, true)
	user := f.activeUser(t, "ada@example.com", "correcthorse9")
	issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
	require.NoError(t, err)

	expired, err := f.codec.Issue(user.ID, issued.Session.ID, sec.TokenAccess, 0)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing_cookie":    "",
		"garbage":           "not-a-token",
		"refresh_as_access": issued.RefreshToken,
		"expired":           expired,
	} {
		t.Run(name, func(t *testing.T) {
			recorder, p := serve(t, f, "/api/v1/auth/me", token)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, auth.MessageUnauthorized, errorMessage(t, recorder))
			assert.False(t, p.called)
		})
	}
}

/*
TestAuthenticator_AttachesIdentity verifies a valid access token yields the typed identity and session.
*/
func TestAuthenticator_AttachesIdentity(t *testing.T) {
	f := newFixture(t, true)
	user := f.activeUser(t, "ada@example.com", "correcthorse9")
	issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
	require.NoError(t, err)

	recorder, p := serve(t, f, "/api/v1/auth/me", issued.AccessToken)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, p.hasID)
	assert.Equal(t, ctxutil.Identity{
		UserID:    user.ID,
		SessionID: issued.Session.ID,
		Email:     "ada@example.com",
		Username:  "ada",
	}, p.identity)
	require.NotNil(t, p.session)
	assert.Equal(t, issued.Session.ID, p.session.ID)
}

/*
TestAuthenticator_RevocationVisibility verifies a revoked session is rejected on the very next request.
*/
func TestAuthenticator_RevocationVisibility(t *testing.T) {
	for _, strict := range []bool{true, false} {
		f := newFixture(t, strict)
		user := f.activeUser(t, "ada@example.com", "correcthorse9")
		issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
		require.NoError(t, err)

		recorder, _ := serve(t, f, "/api/v1/auth/me", issued.AccessToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		require.NoError(t, f.service.RevokeSession(context.Background(), issued.Session.ID, constants.RevokeReasonSignout))

		recorder, p := serve(t, f, "/api/v1/auth/me", issued.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "strict=%v", strict)
		assert.False(t, p.called)
	}
}

/*
TestAuthenticator_StrictAccessWindow verifies the session row's access expiry is enforced.
*/
func TestAuthenticator_StrictAccessWindow(t *testing.T) {
	f := newFixture(t, true)
	user := f.activeUser(t, "ada@example.com", "correcthorse9")
	issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
	require.NoError(t, err)

	f.sessions.get(issued.Session.ID).AccessExpiresAt = f.clock.Now().Add(-time.Second)

	recorder, _ := serve(t, f, "/api/v1/auth/me", issued.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestAuthenticator_AccountGate verifies status-based 403s, including both sides of the lock.
*/
func TestAuthenticator_AccountGate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(user *auth.User, now time.Time)
		status  int
		message string
	}{
		{"banned", func(u *auth.User, _ time.Time) { u.Status = auth.UserBanned }, http.StatusForbidden, auth.MessageBanned},
		{"deactivated", func(u *auth.User, now time.Time) { u.DeactivatedAt = &now }, http.StatusForbidden, auth.MessageDeactivated},
		{"locked", func(u *auth.User, now time.Time) {
			until := now.Add(time.Hour)
			u.Status, u.LockedUntil = auth.UserSuspended, &until
		}, http.StatusForbidden, auth.MessageLocked},
		{"lock_passed", func(u *auth.User, now time.Time) {
			until := now.Add(-time.Hour)
			u.Status, u.LockedUntil = auth.UserSuspended, &until
		}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			user := f.activeUser(t, "ada@example.com", "correcthorse9")
			issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
			require.NoError(t, err)

			tt.mutate(user, f.clock.Now())

			recorder, p := serve(t, f, "/api/v1/auth/me", issued.AccessToken)
			assert.Equal(t, tt.status, recorder.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, recorder))
				assert.False(t, p.called)
			}
		})
	}
}

/*
TestAuthenticator_MissingUser verifies a token for a deleted account is a 401.
*/
func TestAuthenticator_MissingUser(t *testing.T) {
	f := newFixture(t, false)
	token, err := f.codec.Issue("ghost", "session-1", sec.TokenAccess, time.Minute)
	require.NoError(t, err)

	recorder, _ := serve(t, f, "/api/v1/auth/me", token)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestAuthenticator_StorageFailure verifies repository errors surface as 500.
*/
func TestAuthenticator_StorageFailure(t *testing.T) {
	f := newFixture(t, true)
	user := f.activeUser(t, "ada@example.com", "correcthorse9")
	issued, err := f.service.StartSession(context.Background(), user.ID, device.Info{})
	require.NoError(t, err)

	f.sessions.err = errStorage

	recorder, _ := serve(t, f, "/api/v1/auth/me", issued.AccessToken)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
