// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Session lifecycle only: signup/verification, signin, refresh, signout and
// the caller's own session list. Tokens travel exclusively in cookies.
type Handler struct {
	authService *Service
	cookies     CookiePolicy
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, cookies CookiePolicy) *Handler {
	return &Handler{authService: service, cookies: cookies}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST   /signup                 : Parks a registration, sends a code.
//   - POST   /verify-email           : Confirms the code, creates the account, signs in.
//   - POST   /signin                 : Password signin.
//   - POST   /refresh                : New access token from the refresh cookie.
//   - POST   /signout                : Revokes the current session.
//   - GET    /me                     : Current account.
//   - GET    /sessions               : Caller's sessions.
//   - DELETE /sessions/{sessionID}   : Revokes one of the caller's sessions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints (also listed in AUTH_PUBLIC_PATHS)
	router.Post("/signup", handler.signup)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/signin", handler.signin)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/signout", handler.signout)
		r.Get("/me", handler.me)
		r.Get("/sessions", handler.listSessions)
		r.Delete("/sessions/{sessionID}", handler.revokeSession)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verification_code"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionView marks which listed session belongs to the current request.
type sessionView struct {
	*Session
	Current bool `json:"current"`
}

func clientInfo(request *http.Request) device.Info {
	return device.FromRequest(request, middleware.RealIP(request))
}

/*
Signup parks a registration and sends the verification code.

POST /api/v1/auth/signup

Response:
  - 200: Message: Code sent
  - 400: Validation failure
  - 409: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageCodeSent)
}

/*
VerifyEmail confirms a pending signup and opens the first session.

POST /api/v1/auth/verify-email

Response:
  - 201: Message + auth cookies
  - 400: Nothing pending for this email
  - 401: Wrong code
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, input.Email).
		Digits(FieldVerificationCode, input.VerificationCode, sec.VerificationCodeDigits)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.VerifyEmail(request.Context(), VerifyEmailInput{
		Email:  input.Email,
		Code:   input.VerificationCode,
		Client: clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.SetTokens(writer, issued.AccessToken, issued.RefreshToken)
	respond.Message(writer, http.StatusCreated, MessageSignedUp)
}

/*
Signin authenticates with email and password.

POST /api/v1/auth/signin

Response:
  - 200: Message + auth cookies
  - 401: Authentication failed
  - 403: User cannot login
*/
func (handler *Handler) signin(writer http.ResponseWriter, request *http.Request) {
	var input signinRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.Signin(request.Context(), SigninInput{
		Email:    input.Email,
		Password: input.Password,
		Client:   clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.SetTokens(writer, issued.AccessToken, issued.RefreshToken)
	respond.Message(writer, http.StatusOK, MessageSignedIn)
}

/*
Refresh re-issues the access cookie from the refresh cookie.

POST /api/v1/auth/refresh

Response:
  - 200: Message + new access cookie
  - 401: Missing, invalid or revoked refresh credential
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized(MessageUnauthorized))
		return
	}

	accessToken, _, err := handler.authService.RotateAccess(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.SetAccess(writer, accessToken)
	respond.Message(writer, http.StatusOK, MessageRefreshed)
}

/*
Signout revokes the current session and clears both cookies.

POST /api/v1/auth/signout
*/
func (handler *Handler) signout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RevokeSession(request.Context(), identity.SessionID, constants.RevokeReasonSignout); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.Clear(writer)
	respond.Message(writer, http.StatusOK, MessageSignedOut)
}

/*
Me returns the authenticated account.

GET /api/v1/auth/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ListSessions returns the caller's sessions, newest first.

GET /api/v1/auth/sessions
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.authService.ListSessions(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView{Session: session, Current: session.ID == identity.SessionID})
	}

	respond.OK(writer, views)
}

/*
RevokeSession revokes one of the caller's sessions.

DELETE /api/v1/auth/sessions/{sessionID}

Description: Revoking the current session also clears the cookies.

Response:
  - 200: Message
  - 400: Malformed session id
  - 404: Unknown session or owned by someone else
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "sessionID")
	if err := (&validate.Validator{}).UUID(FieldSessionID, sessionID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RevokeUserSession(request.Context(), identity.UserID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if sessionID == identity.SessionID {
		handler.cookies.Clear(writer)
	}
	respond.Message(writer, http.StatusOK, MessageSessionRevoked)
}
