// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

const authPrefix = "/api/v1/auth"

func newRouter(f *fixture) http.Handler {
	authenticator := auth.NewAuthenticator(f.service, []string{
		authPrefix + "/signup",
		authPrefix + "/verify-email",
		authPrefix + "/signin",
		authPrefix + "/refresh",
	})
	handler := auth.NewHandler(f.service, auth.CookiePolicy{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	})

	router := chi.NewRouter()
	router.Use(authenticator.Middleware)
	router.Mount(authPrefix, handler.Routes())
	return router
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func cookiesByName(recorder *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, cookie := range recorder.Result().Cookies() {
		cookies[cookie.Name] = cookie
	}
	return cookies
}

func message(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	text, _ := body["message"].(string)
	return text
}

/*
TestHandler_SigninSetsCookies verifies cookie attributes and the session row written on signin.
*/
func TestHandler_SigninSetsCookies(t *testing.T) {
	f := newFixture(t, true)
	user := f.activeUser(t, "ada@example.com", "correcthorse9")
	router := newRouter(f)

	recorder := do(router, http.MethodPost, authPrefix+"/signin", `{"email":"ada@example.com","password":"correcthorse9"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, auth.MessageSignedIn, message(t, recorder))

	cookies := cookiesByName(recorder)
	access := cookies[constants.AccessTokenCookieName]
	refresh := cookies[constants.RefreshTokenCookieName]
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	for _, cookie := range []*http.Cookie{access, refresh} {
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.False(t, cookie.Secure)
	}
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, 2592000, refresh.MaxAge)

	claims, err := f.codec.Verify(access.Value, "access")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	session := f.sessions.get(claims.SessionID)
	require.NotNil(t, session)
	assert.Equal(t, auth.SessionActive, session.Status)
	assert.Equal(t, "192.0.2.1", session.IPAddress)
	assert.Equal(t, "desktop", session.DeviceType)

	t.Run("wrong_password", func(t *testing.T) {
		recorder := do(router, http.MethodPost, authPrefix+"/signin", `{"email":"ada@example.com","password":"nope12345"}`)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, recorder.Result().Cookies())
	})

	t.Run("unknown_field", func(t *testing.T) {
		recorder := do(router, http.MethodPost, authPrefix+"/signin", `{"email":"ada@example.com","password":"x","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

/*
TestHandler_SignupFlow verifies signup parks a registration and verify-email signs the user in.
*/
func TestHandler_SignupFlow(t *testing.T) {
	f := newFixture(t, true)
	router := newRouter(f)

	recorder := do(router, http.MethodPost, authPrefix+"/signup", `{"username":"grace","email":"Grace@Example.com","password":"hopper1906"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, auth.MessageCodeSent, message(t, recorder))

	code := f.sender.code("grace@example.com")
	require.Len(t, code, 6)

	t.Run("wrong_code", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		recorder := do(router, http.MethodPost, authPrefix+"/verify-email", `{"email":"grace@example.com","verification_code":"`+wrong+`"}`)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	recorder = do(router, http.MethodPost, authPrefix+"/verify-email", `{"email":"grace@example.com","verification_code":"`+code+`"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, auth.MessageSignedUp, message(t, recorder))
	assert.Contains(t, cookiesByName(recorder), constants.AccessTokenCookieName)

	t.Run("validation", func(t *testing.T) {
		recorder := do(router, http.MethodPost, authPrefix+"/signup", `{"username":"g","email":"not-an-email","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

/*
TestHandler_Signout verifies cookies are cleared and the session row is revoked.
*/
func TestHandler_Signout(t *testing.T) {
	f := newFixture(t, true)
	f.activeUser(t, "ada@example.com", "correcthorse9")
	router := newRouter(f)

	signin := cookiesByName(do(router, http.MethodPost, authPrefix+"/signin", `{"email":"ada@example.com","password":"correcthorse9"}`))
	access := signin[constants.AccessTokenCookieName]
	claims, err := f.codec.Verify(access.Value, "access")
	require.NoError(t, err)

	recorder := do(router, http.MethodPost, authPrefix+"/signout", "", access)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, auth.MessageSignedOut, message(t, recorder))

	cleared := cookiesByName(recorder)
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		require.Contains(t, cleared, name)
		assert.Equal(t, -1, cleared[name].MaxAge)
		assert.Empty(t, cleared[name].Value)
	}

	session := f.sessions.get(claims.SessionID)
	assert.Equal(t, auth.SessionRevoked, session.Status)
	require.NotNil(t, session.RevokedReason)
	assert.Equal(t, constants.RevokeReasonSignout, *session.RevokedReason)

	again := do(router, http.MethodGet, authPrefix+"/me", "", access)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

/*
TestHandler_Refresh verifies a refresh cookie yields a new access cookie only.
*/
func TestHandler_Refresh(t *testing.T) {
	f := newFixture(t, true)
	f.activeUser(t, "ada@example.com", "correcthorse9")
	router := newRouter(f)

	signin := cookiesByName(do(router, http.MethodPost, authPrefix+"/signin", `{"email":"ada@example.com","password":"correcthorse9"}`))

	f.clock.Advance(20 * time.Minute)

	recorder := do(router, http.MethodPost, authPrefix+"/refresh", "", signin[constants.RefreshTokenCookieName])
	require.Equal(t, http.StatusOK, recorder.Code)

	cookies := cookiesByName(recorder)
	require.Contains(t, cookies, constants.AccessTokenCookieName)
	assert.NotContains(t, cookies, constants.RefreshTokenCookieName)

	me := do(router, http.MethodGet, authPrefix+"/me", "", cookies[constants.AccessTokenCookieName])
	assert.Equal(t, http.StatusOK, me.Code)

	t.Run("missing_cookie", func(t *testing.T) {
		recorder := do(router, http.MethodPost, authPrefix+"/refresh", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

/*
TestHandler_Sessions verifies listing and revoking the caller's own sessions.
*/
func TestHandler_Sessions(t *testing.T) {
	f := newFixture(t, true)
	f.activeUser(t, "ada@example.com", "correcthorse9")
	router := newRouter(f)

	credentials := `{"email":"ada@example.com","password":"correcthorse9"}`
	first := cookiesByName(do(router, http.MethodPost, authPrefix+"/signin", credentials))[constants.AccessTokenCookieName]
	second := cookiesByName(do(router, http.MethodPost, authPrefix+"/signin", credentials))[constants.AccessTokenCookieName]

	firstClaims, err := f.codec.Verify(first.Value, "access")
	require.NoError(t, err)

	recorder := do(router, http.MethodGet, authPrefix+"/sessions", "", second)
	require.Equal(t, http.StatusOK, recorder.Code)

	var listed struct {
		Data []struct {
			ID      string `json:"id"`
			Current bool   `json:"current"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 2)

	current := 0
	for _, view := range listed.Data {
		if view.Current {
			current++
			assert.NotEqual(t, firstClaims.SessionID, view.ID)
		}
	}
	assert.Equal(t, 1, current)

	t.Run("malformed_id", func(t *testing.T) {
		recorder := do(router, http.MethodDelete, authPrefix+"/sessions/not-a-uuid", "", second)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown_id", func(t *testing.T) {
		recorder := do(router, http.MethodDelete, authPrefix+"/sessions/9b2f8c1e-4a57-4e0b-9f0a-2a8d7f6c1b3e", "", second)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	recorder = do(router, http.MethodDelete, authPrefix+"/sessions/"+firstClaims.SessionID, "", second)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Result().Cookies())

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, authPrefix+"/me", "", first).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, authPrefix+"/me", "", second).Code)
}
