// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// CookiePolicy renders the access and refresh cookies with identical attributes.
type CookiePolicy struct {
	// Domain is optional; empty produces host-only cookies.
	Domain string

	// Secure is enabled in production so cookies never travel over plain HTTP.
	Secure bool

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (policy CookiePolicy) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.AuthCookiePath,
		Domain:   policy.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetTokens writes both token cookies with Max-Age equal to their lifetimes.
func (policy CookiePolicy) SetTokens(writer http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(writer, policy.cookie(constants.AccessTokenCookieName, accessToken, int(policy.AccessTTL.Seconds())))
	http.SetCookie(writer, policy.cookie(constants.RefreshTokenCookieName, refreshToken, int(policy.RefreshTTL.Seconds())))
}

// SetAccess rewrites only the access cookie, used after a refresh.
func (policy CookiePolicy) SetAccess(writer http.ResponseWriter, accessToken string) {
	http.SetCookie(writer, policy.cookie(constants.AccessTokenCookieName, accessToken, int(policy.AccessTTL.Seconds())))
}

// Clear expires both cookies immediately (emitted as Max-Age=0).
func (policy CookiePolicy) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, policy.cookie(constants.AccessTokenCookieName, "", -1))
	http.SetCookie(writer, policy.cookie(constants.RefreshTokenCookieName, "", -1))
}
