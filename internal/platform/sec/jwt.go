// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. The auth service and the request authenticator consume
// [TokenCodec] through narrow interfaces of their own.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/gatehouse/pkg/uuid"
)

// MinSecretLength is the shortest HMAC-SHA256 key the codec accepts.
const MinSecretLength = 32

// # Token Types

// TokenType distinguishes the two credentials bound to a session.
type TokenType string

const (
	// TokenAccess is the short-lived credential sent on every protected request.
	TokenAccess TokenType = "access"

	// TokenRefresh is the long-lived credential used only to mint access tokens.
	TokenRefresh TokenType = "refresh"
)

// # Errors

var (
	// ErrInvalidSignature covers tampered, malformed and wrongly-signed tokens.
	ErrInvalidSignature = errors.New("sec: token signature is invalid")

	// ErrTokenExpired is returned once now >= exp.
	ErrTokenExpired = errors.New("sec: token has expired")

	// ErrWrongTokenType is returned when a refresh token is presented as access or vice versa.
	ErrWrongTokenType = errors.New("sec: unexpected token type")

	// ErrSigning signals a codec misconfiguration while producing a token.
	ErrSigning = errors.New("sec: failed to sign token")
)

// # Claims

// Claims is the payload of every token issued by [TokenCodec].
//
// Wire shape: {"sub","sid","typ","iat","exp","jti"}; timestamps are epoch seconds.
type Claims struct {
	SessionID string    `json:"sid"`
	Type      TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// # Codec

// TokenCodec signs and verifies HS256 tokens bound to a user and a session.
//
// It holds only immutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// CodecOption customizes a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for iat/exp and for validation.
func WithClock(now func() time.Time) CodecOption {
	return func(codec *TokenCodec) {
		codec.now = now
	}
}

// WithIssuer sets the 'iss' claim written into issued tokens.
func WithIssuer(issuer string) CodecOption {
	return func(codec *TokenCodec) {
		codec.issuer = issuer
	}
}

// NewTokenCodec creates a codec for the given HMAC secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("sec: secret must be at least %d bytes", MinSecretLength)
	}

	codec := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

/*
Issue signs a new token of the given type.

Parameters:
  - subjectID: user id written to 'sub'
  - sessionID: session id written to 'sid'
  - tokenType: [TokenAccess] or [TokenRefresh]
  - ttl: lifetime added to the issuance instant

Returns:
  - string: compact JWS
  - error: wraps [ErrSigning]
*/
func (codec *TokenCodec) Issue(subjectID, sessionID string, tokenType TokenType, ttl time.Duration) (string, error) {
	issuedAt := codec.now().Truncate(time.Second)

	claims := Claims{
		SessionID: sessionID,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    codec.issuer,
			ID:        uuid.Random(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return signed, nil
}

/*
Verify parses and checks a token against the expected type.

Returns:
  - *Claims: the decoded payload
  - error: [ErrInvalidSignature], [ErrTokenExpired] or [ErrWrongTokenType]
*/
func (codec *TokenCodec) Verify(tokenString string, expected TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(codec.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return codec.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if claims.Type != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.Type, expected)
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing subject or session", ErrInvalidSignature)
	}

	return claims, nil
}
