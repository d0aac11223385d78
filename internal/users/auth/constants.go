// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Identifiers

// Field names used in validation errors and request payloads.
const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldVerificationCode = "verification_code"
	FieldSessionID        = "session_id"
)

// Username bounds enforced at signup.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
)

// # Client Messages

// Account gate messages, returned with 403.
const (
	MessageBanned      = "Your account has been permanently banned."
	MessageDeactivated = "Your account has been deactivated."
	MessageLocked      = "Account is temporarily locked."
	MessageSuspended   = "Your account has been suspended."
	MessageCannotLogin = "User cannot login."
)

// Credential and flow messages.
const (
	MessageUnauthorized         = "Unauthorized"
	MessageAuthenticationFailed = "Authentication failed"
	MessageEmailTaken           = "Email is already registered"
	MessageVerificationFailed   = "Email verification failed, sign up again"
	MessageInvalidCode          = "Invalid verification code, try again"

	MessageCodeSent       = "Email verification code has been sent"
	MessageSignedUp       = "Signed up successfully"
	MessageSignedIn       = "Signed in successfully"
	MessageSignedOut      = "Signed out successfully"
	MessageRefreshed      = "Access token refreshed"
	MessageSessionRevoked = "Session revoked"
)
